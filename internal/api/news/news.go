package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/viatorai/viator-assistant/app/observability/metrics"
	"github.com/viatorai/viator-assistant/internal/kvstore"
	"github.com/viatorai/viator-assistant/internal/types"
)

const (
	quotaKey       = "news_requests"
	cacheKeyPrefix = "news_"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service fetches recent articles for a place, caching results for 24h
// per (location, daysBack) pair and tracking a rolling daily request
// quota in the injected store. The quota is read-modify-write without
// atomicity; concurrent turns can under- or over-count, which is
// accepted.
type Service interface {
	ForLocation(ctx context.Context, location string, pageSize, daysBack int) ([]types.Article, error)
	QuotaAvailable(ctx context.Context) bool
	RecordRequest(ctx context.Context)
	DailyLimit() int
}

type ServiceImpl struct {
	logger     *slog.Logger
	client     *http.Client
	store      kvstore.Store
	baseURL    string
	apiKey     string
	dailyLimit int
	cacheTTL   time.Duration
	now        func() time.Time
}

func NewService(baseURL, apiKey string, dailyLimit int, cacheTTL, timeout time.Duration, store kvstore.Store, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		client:     &http.Client{Timeout: timeout},
		store:      store,
		baseURL:    baseURL,
		apiKey:     apiKey,
		dailyLimit: dailyLimit,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

func (s *ServiceImpl) DailyLimit() int {
	return s.dailyLimit
}

// ForLocation returns cached articles when the cache entry is younger
// than 24h, otherwise queries the provider. Empty provider results are
// not cached. Returns (nil, nil) when the provider declines the query.
func (s *ServiceImpl) ForLocation(ctx context.Context, location string, pageSize, daysBack int) ([]types.Article, error) {
	key := cacheKey(location, daysBack)

	var cached types.CachedNews
	found, err := s.store.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WarnContext(ctx, "News cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if found && s.now().UnixMilli()-cached.Timestamp < s.cacheTTL.Milliseconds() {
		return cached.Articles, nil
	}

	articles, err := s.fetch(ctx, location, pageSize, daysBack)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		return nil, nil
	}

	if len(articles) > 0 {
		entry := types.CachedNews{Articles: articles, Timestamp: s.now().UnixMilli()}
		if err := s.store.Set(ctx, key, entry, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "News cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return articles, nil
}

// QuotaAvailable reports whether another news request fits in the
// current 24h window, resetting the window if it has elapsed.
func (s *ServiceImpl) QuotaAvailable(ctx context.Context) bool {
	now := s.now().UnixMilli()
	tracker := s.loadTracker(ctx, now)

	if now-tracker.Timestamp >= 24*time.Hour.Milliseconds() {
		tracker = types.NewsRequestTracker{Count: 0, Timestamp: now}
		if err := s.store.Set(ctx, quotaKey, tracker, 0); err != nil {
			s.logger.WarnContext(ctx, "News quota reset failed", slog.Any("error", err))
		}
	}

	if tracker.Count >= s.dailyLimit {
		metrics.Get().NewsQuotaExceededTotal.Add(ctx, 1)
		return false
	}
	return true
}

// RecordRequest counts one successful news fetch against the quota.
func (s *ServiceImpl) RecordRequest(ctx context.Context) {
	now := s.now().UnixMilli()
	tracker := s.loadTracker(ctx, now)

	if now-tracker.Timestamp >= 24*time.Hour.Milliseconds() {
		tracker = types.NewsRequestTracker{Count: 0, Timestamp: now}
	}
	tracker.Count++
	tracker.Timestamp = now

	if err := s.store.Set(ctx, quotaKey, tracker, 0); err != nil {
		s.logger.WarnContext(ctx, "News quota write failed", slog.Any("error", err))
	}
}

func (s *ServiceImpl) loadTracker(ctx context.Context, now int64) types.NewsRequestTracker {
	var tracker types.NewsRequestTracker
	found, err := s.store.Get(ctx, quotaKey, &tracker)
	if err != nil {
		s.logger.WarnContext(ctx, "News quota read failed", slog.Any("error", err))
	}
	if !found {
		tracker = types.NewsRequestTracker{Count: 0, Timestamp: now}
	}
	return tracker
}

func (s *ServiceImpl) fetch(ctx context.Context, location string, pageSize, daysBack int) ([]types.Article, error) {
	from := s.now().AddDate(0, 0, -daysBack).Format("2006-01-02")

	query := url.Values{}
	query.Set("q", location)
	query.Set("from", from)
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("sortBy", "popularity")
	query.Set("language", "en")
	query.Set("apiKey", s.apiKey)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/everything?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordUpstream(ctx, "news", "error", time.Since(start))
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream(ctx, "news", "error", time.Since(start))
		return nil, fmt.Errorf("news provider returned status %d", resp.StatusCode)
	}

	var envelope types.NewsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.RecordUpstream(ctx, "news", "error", time.Since(start))
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}
	metrics.RecordUpstream(ctx, "news", "ok", time.Since(start))

	if envelope.Status != "ok" || envelope.Articles == nil {
		s.logger.WarnContext(ctx, "News provider declined query",
			slog.String("status", envelope.Status),
			slog.String("message", envelope.Message))
		return nil, nil
	}
	return envelope.Articles, nil
}

func cacheKey(location string, daysBack int) string {
	normalized := strings.ReplaceAll(strings.ToLower(location), " ", "_")
	return fmt.Sprintf("%s%s_%d", cacheKeyPrefix, normalized, daysBack)
}
