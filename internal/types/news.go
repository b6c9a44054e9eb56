package types

// Article is one news item as returned by the news provider.
type Article struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Source      ArticleSource `json:"source"`
}

type ArticleSource struct {
	Name string `json:"name"`
}

// NewsEnvelope is the provider's top-level response. Status is "ok" on
// success, "error" otherwise (with Code/Message populated).
type NewsEnvelope struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// CachedNews is the stored cache entry for one (location, daysBack) pair.
type CachedNews struct {
	Articles  []Article `json:"articles"`
	Timestamp int64     `json:"timestamp"`
}

// NewsRequestTracker enforces the rolling daily request quota. Timestamp
// is the epoch-ms start of the current 24h window.
type NewsRequestTracker struct {
	Count     int   `json:"count"`
	Timestamp int64 `json:"timestamp"`
}
