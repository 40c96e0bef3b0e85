// Package search is the boundary the rest of the application talks to. It
// exposes exactly two operations: index a post (fire-and-forget) and run a
// search returning one page of ranked results. Both tolerate partially
// invalid input and degrade to no-constraint or empty-result behavior
// instead of failing.
package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/campusqa/forumsearch/internal/events"
	"github.com/campusqa/forumsearch/internal/forum"
	"github.com/campusqa/forumsearch/internal/index"
	"github.com/campusqa/forumsearch/internal/query"
	"github.com/campusqa/forumsearch/internal/rank"
	"github.com/campusqa/forumsearch/pkg/config"
	"github.com/campusqa/forumsearch/pkg/metrics"
	"github.com/campusqa/forumsearch/pkg/resilience"
)

// Service composes the planner, ranker, and index writer behind the two
// public operations.
type Service struct {
	writer       *index.Writer
	ranker       *rank.Ranker
	pool         *ants.Pool
	cache        *Cache
	collector    *events.Collector
	metrics      *metrics.Metrics
	breaker      *resilience.CircuitBreaker
	queryTimeout time.Duration
	taskTimeout  time.Duration
	logger       *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithCache enables the Redis result-page cache.
func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithCollector enables search-event telemetry.
func WithCollector(c *events.Collector) Option {
	return func(s *Service) { s.collector = c }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service over the given index store. The indexing worker pool
// is bounded and non-blocking: submissions past capacity are dropped, per the
// best-effort indexing contract.
func New(store index.Store, searchCfg config.SearchConfig, indexerCfg config.IndexerConfig, opts ...Option) (*Service, error) {
	perPage := searchCfg.ResultsPerPage
	if perPage < 1 {
		perPage = 10
	}
	maxResults := searchCfg.MaxNumResults
	if maxResults < 1 {
		maxResults = 300
	}
	workers := indexerCfg.Workers
	if workers < 1 {
		workers = 1
	}
	taskTimeout := indexerCfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = 10 * time.Second
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	s := &Service{
		writer:       index.NewWriter(store),
		ranker:       rank.New(store, perPage, maxResults),
		pool:         pool,
		breaker:      resilience.NewCircuitBreaker("search-store", resilience.CircuitBreakerConfig{}),
		queryTimeout: searchCfg.QueryTimeout,
		taskTimeout:  taskTimeout,
		logger:       slog.Default().With("component", "search-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IndexPost submits an indexing task for the post and returns immediately.
// The caller never learns whether indexing succeeded; persistence failures
// and pool overflow are logged and counted, nothing more.
func (s *Service) IndexPost(postID int64, title, body string) {
	err := s.pool.Submit(func() {
		s.runIndexTask(postID, title, body)
	})
	if err != nil {
		s.logger.Warn("index task dropped", "post_id", postID, "error", err)
		s.countIndexError("queue_full")
	}
}

// Search plans and executes a search, returning one page of results. It
// never returns an error: an internal failure yields an empty page that is
// indistinguishable from a search with zero genuine matches.
func (s *Service) Search(ctx context.Context, rawQuery string, f forum.Filters, page int) *forum.ResultPage {
	start := time.Now()
	page = rank.CoercePage(page)
	pred, f := query.Parse(rawQuery, f)

	compute := func() (*forum.ResultPage, error) {
		var result *forum.ResultPage
		err := s.breaker.Execute(func() error {
			return resilience.WithTimeout(ctx, s.queryTimeout, "search-query", func(ctx context.Context) error {
				var rankErr error
				result, rankErr = s.ranker.Search(ctx, pred, f, page)
				return rankErr
			})
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	var (
		result   *forum.ResultPage
		cacheHit bool
		err      error
	)
	if s.cache != nil {
		result, cacheHit, err = s.cache.GetOrCompute(ctx, cacheKey(pred, f, page), compute)
	} else {
		result, err = compute()
	}
	if err != nil {
		s.logger.Error("search failed, rendering empty page", "query", rawQuery, "error", err)
		result = forum.EmptyPage(page)
	}

	s.observeSearch(rawQuery, pred, result, cacheHit, err, time.Since(start))
	return result
}

// Close drains the indexing pool, waiting briefly for in-flight tasks.
func (s *Service) Close() {
	if err := s.pool.ReleaseTimeout(5 * time.Second); err != nil {
		s.logger.Warn("index pool released with tasks still running", "error", err)
	}
}

func (s *Service) runIndexTask(postID int64, title, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
	defer cancel()
	if err := s.writer.Index(ctx, postID, title, body); err != nil {
		reason := "store"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		s.logger.Error("index write dropped", "post_id", postID, "error", err)
		s.countIndexError(reason)
		return
	}
	if s.metrics != nil {
		s.metrics.PostsIndexedTotal.Inc()
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Error("cache invalidation after index write failed", "error", err)
		}
	}
}

func (s *Service) countIndexError(reason string) {
	if s.metrics != nil {
		s.metrics.IndexErrorsTotal.WithLabelValues(reason).Inc()
	}
}

func (s *Service) observeSearch(rawQuery string, pred *query.Predicate, result *forum.ResultPage, cacheHit bool, err error, elapsed time.Duration) {
	if s.metrics != nil {
		resultType := "results"
		switch {
		case err != nil:
			resultType = "error"
		case pred == nil:
			resultType = "filters_only"
		case result.TotalMatches == 0:
			resultType = "zero_result"
		}
		s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		s.metrics.SearchResultsCount.Observe(float64(result.OnThisPage))

		cacheStatus := "bypass"
		if s.cache != nil {
			if cacheHit {
				cacheStatus = "hit"
				s.metrics.CacheHitsTotal.Inc()
			} else {
				cacheStatus = "miss"
				s.metrics.CacheMissesTotal.Inc()
			}
		}
		s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
		s.metrics.IndexQueueDepth.Set(float64(s.pool.Running()))
	}

	s.logger.Info("search completed",
		"query", rawQuery,
		"total_matches", result.TotalMatches,
		"on_this_page", result.OnThisPage,
		"page", result.Page,
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)

	if s.collector != nil {
		event := events.SearchEvent{
			Query:        rawQuery,
			FiltersOnly:  pred == nil,
			TotalMatches: result.TotalMatches,
			OnThisPage:   result.OnThisPage,
			Page:         result.Page,
			CacheHit:     cacheHit,
			LatencyMs:    elapsed.Milliseconds(),
			Timestamp:    time.Now().UTC(),
		}
		if pred != nil {
			event.Stems = pred.Stems
		}
		s.collector.Track(event)
	}
}
