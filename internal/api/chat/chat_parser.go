package chat

import (
	"encoding/json"
	"strings"
)

// tripPlan is the machine-readable block trip-planning replies embed.
type tripPlan struct {
	Front  string   `json:"front"`
	Second string   `json:"second"`
	Daily  []string `json:"daily"`
}

// flattenTripPlan finds the first embedded JSON object in a model
// reply, parses it as a trip plan, and replaces it with a readable
// summary. Returns the input unchanged and false when no well-formed
// plan is present.
func flattenTripPlan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return text, false
	}

	var plan tripPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &plan); err != nil {
		return text, false
	}
	if plan.Front == "" && plan.Second == "" && len(plan.Daily) == 0 {
		return text, false
	}

	flattened := text[:start] + renderTripPlan(plan) + text[end+1:]
	return strings.TrimSpace(flattened), true
}

func renderTripPlan(plan tripPlan) string {
	var sb strings.Builder
	if plan.Front != "" {
		sb.WriteString("**" + plan.Front + "**")
	}
	if plan.Second != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(plan.Second)
	}
	for i, day := range plan.Daily {
		if i == 0 && sb.Len() > 0 {
			sb.WriteString("\n\n")
		} else if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + day)
	}
	return sb.String()
}
