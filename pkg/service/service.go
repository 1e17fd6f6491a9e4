// Package service implements the prize data facade: it turns a filter into a
// cache signature, serves cached results, and on a miss fetches, normalizes
// and stores the upstream payload.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/nobel-prize-cache/pkg/cache"
	"github.com/Sternrassler/nobel-prize-cache/pkg/client"
	"github.com/Sternrassler/nobel-prize-cache/pkg/logging"
	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
	"github.com/Sternrassler/nobel-prize-cache/pkg/stats"
)

const (
	// EndpointPrizes is the upstream prize listing.
	EndpointPrizes = "nobelPrizes"

	// EndpointLaureates is the upstream laureate listing.
	EndpointLaureates = "laureates"

	// DefaultStatsSampleSize is the limit applied to Statistics when the
	// caller gives none.
	DefaultStatsSampleSize = 100

	// countEndpoint namespaces count entries so they never share a
	// signature with a prize listing.
	countEndpoint = EndpointPrizes + "/count"
)

var (
	// ErrNotInitialized is returned by queries issued before Init.
	ErrNotInitialized = errors.New("prize service not initialized")

	// ErrClosed is returned by queries issued after Close.
	ErrClosed = errors.New("prize service closed")
)

var (
	upstreamFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nobel_service_upstream_fetches_total",
		Help: "Upstream fetches triggered by cache misses, by endpoint and result",
	}, []string{"endpoint", "result"})

	coalescedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nobel_service_coalesced_total",
		Help: "Cache misses answered by another caller's in-flight fetch",
	}, []string{"endpoint"})
)

// Fetcher retrieves raw upstream payloads. *client.Client implements it.
type Fetcher interface {
	FetchRaw(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

// Config wires the service's collaborators.
type Config struct {
	// Fetcher is the upstream client (required)
	Fetcher Fetcher

	// PrizeCache holds normalized prize lists (required)
	PrizeCache cache.Store[[]prize.Prize]

	// LaureateCache holds raw laureate payloads (default: in-memory, DefaultTTL)
	LaureateCache cache.Store[json.RawMessage]

	// CountCache holds the size of filtered prize sets (default: in-memory, DefaultTTL)
	CountCache cache.Store[int]

	// StatsSampleSize is the limit Statistics applies when none is given
	StatsSampleSize int

	// Coalesce merges concurrent misses on one signature into a single
	// upstream fetch. Off by default: concurrent misses each fetch and the
	// last write wins.
	Coalesce bool
}

const (
	stateNew int32 = iota
	stateRunning
	stateClosed
)

// Service is the prize data facade. It is safe for concurrent use.
type Service struct {
	fetcher    Fetcher
	prizes     cache.Store[[]prize.Prize]
	laureates  cache.Store[json.RawMessage]
	counts     cache.Store[int]
	sampleSize int
	coalesce   bool

	group     singleflight.Group
	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
	logger    zerolog.Logger
}

// New creates a Service. Call Init before issuing queries.
func New(cfg Config) (*Service, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.PrizeCache == nil {
		return nil, fmt.Errorf("prize cache is required")
	}
	if cfg.LaureateCache == nil {
		cfg.LaureateCache = cache.NewMemory[json.RawMessage](cache.DefaultTTL)
	}
	if cfg.CountCache == nil {
		cfg.CountCache = cache.NewMemory[int](cache.DefaultTTL)
	}
	if cfg.StatsSampleSize <= 0 {
		cfg.StatsSampleSize = DefaultStatsSampleSize
	}

	return &Service{
		fetcher:    cfg.Fetcher,
		prizes:     cfg.PrizeCache,
		laureates:  cfg.LaureateCache,
		counts:     cfg.CountCache,
		sampleSize: cfg.StatsSampleSize,
		coalesce:   cfg.Coalesce,
		logger:     logging.NewLogger(logging.ComponentService),
	}, nil
}

// Init starts the service. It fails once the service has been closed.
func (s *Service) Init(_ context.Context) error {
	if !s.state.CompareAndSwap(stateNew, stateRunning) {
		if s.state.Load() == stateClosed {
			return ErrClosed
		}
		return nil
	}
	s.logger.Info().
		Int("stats_sample_size", s.sampleSize).
		Bool("coalesce", s.coalesce).
		Msg("Prize service initialized")
	return nil
}

// Close flushes and releases every store. Later calls return the first
// result.
func (s *Service) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.state.Store(stateClosed)

		var errs []error
		if err := s.prizes.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush prize cache: %w", err))
		}
		if err := s.laureates.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush laureate cache: %w", err))
		}
		if err := s.counts.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush count cache: %w", err))
		}
		for _, c := range []interface{ Close() error }{s.prizes, s.laureates, s.counts} {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close cache: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
		s.logger.Info().Err(s.closeErr).Msg("Prize service closed")
	})
	return s.closeErr
}

func (s *Service) ready() error {
	switch s.state.Load() {
	case stateRunning:
		return nil
	case stateClosed:
		return ErrClosed
	default:
		return ErrNotInitialized
	}
}

// Prizes returns the normalized prizes matching params. Results are cached
// per signature; failures are never cached. No matches yields an empty,
// non-nil slice.
func (s *Service) Prizes(ctx context.Context, params url.Values) ([]prize.Prize, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	sig := cache.Key{Endpoint: EndpointPrizes, Params: params}.Signature()
	if prizes, ok := lookup(ctx, s.prizes, sig, s.logger); ok {
		return prizes, nil
	}

	res, err := load(s, EndpointPrizes, sig, func() (pageResult, error) {
		return s.fetchPrizes(ctx, sig, params)
	})
	if err != nil {
		return nil, err
	}
	return res.prizes, nil
}

// pageResult is one decoded upstream page.
type pageResult struct {
	prizes []prize.Prize
	count  int
}

func (s *Service) fetchPrizes(ctx context.Context, sig cache.Signature, params url.Values) (pageResult, error) {
	body, err := s.fetcher.FetchRaw(ctx, EndpointPrizes, params)
	if err != nil {
		upstreamFetchesTotal.WithLabelValues(EndpointPrizes, "error").Inc()
		return pageResult{}, fmt.Errorf("fetch prizes: %w", err)
	}

	page, err := prize.DecodePrizes(body)
	if err != nil {
		upstreamFetchesTotal.WithLabelValues(EndpointPrizes, "error").Inc()
		return pageResult{}, fmt.Errorf("fetch prizes: %w", decodeError(body, err))
	}
	upstreamFetchesTotal.WithLabelValues(EndpointPrizes, "ok").Inc()

	prizes := prize.NormalizeAll(page.Prizes)
	if err := s.prizes.Set(ctx, sig, prizes); err != nil {
		s.logger.Warn().Err(err).Str("signature", string(sig)).Msg("Failed to cache prizes")
	}

	// Every page reports the size of the whole filtered set.
	countSig := countSignature(params)
	if err := s.counts.Set(ctx, countSig, page.Meta.Count.Int()); err != nil {
		s.logger.Warn().Err(err).Str("signature", string(countSig)).Msg("Failed to cache count")
	}

	s.logger.Debug().
		Str("signature", string(sig)).
		Int("prizes", len(prizes)).
		Int("count", page.Meta.Count.Int()).
		Msg("Prizes fetched and cached")

	return pageResult{prizes: prizes, count: page.Meta.Count.Int()}, nil
}

// Laureates returns the raw upstream laureate payload for params. The payload
// is cached as received and never normalized.
func (s *Service) Laureates(ctx context.Context, params url.Values) (json.RawMessage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	sig := cache.Key{Endpoint: EndpointLaureates, Params: params}.Signature()
	if payload, ok := lookup(ctx, s.laureates, sig, s.logger); ok {
		return payload, nil
	}

	return load(s, EndpointLaureates, sig, func() (json.RawMessage, error) {
		body, err := s.fetcher.FetchRaw(ctx, EndpointLaureates, params)
		if err != nil {
			upstreamFetchesTotal.WithLabelValues(EndpointLaureates, "error").Inc()
			return nil, fmt.Errorf("fetch laureates: %w", err)
		}
		if !json.Valid(body) {
			upstreamFetchesTotal.WithLabelValues(EndpointLaureates, "error").Inc()
			return nil, fmt.Errorf("fetch laureates: %w",
				decodeError(body, errors.New("response is not valid JSON")))
		}
		upstreamFetchesTotal.WithLabelValues(EndpointLaureates, "ok").Inc()

		payload := json.RawMessage(body)
		if err := s.laureates.Set(ctx, sig, payload); err != nil {
			s.logger.Warn().Err(err).Str("signature", string(sig)).Msg("Failed to cache laureates")
		}
		return payload, nil
	})
}

// Statistics aggregates the prizes matching params. When params carry no
// limit, the configured sample size is applied.
func (s *Service) Statistics(ctx context.Context, params url.Values) (stats.Statistics, error) {
	p := cloneValues(params)
	if p.Get("limit") == "" {
		p.Set("limit", fmt.Sprint(s.sampleSize))
	}

	prizes, err := s.Prizes(ctx, p)
	if err != nil {
		return stats.Statistics{}, fmt.Errorf("statistics: %w", err)
	}
	return stats.Aggregate(prizes), nil
}

// Count returns the number of prizes the upstream reports for the filter in
// params. Offset and limit are ignored.
func (s *Service) Count(ctx context.Context, params url.Values) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	sig := countSignature(params)
	if n, ok := lookup(ctx, s.counts, sig, s.logger); ok {
		return n, nil
	}

	// The probe is an ordinary one-prize page, so it also lands in the
	// prize cache.
	probe := filterOnly(params)
	probe.Set("offset", "0")
	probe.Set("limit", "1")
	probeSig := cache.Key{Endpoint: EndpointPrizes, Params: probe}.Signature()

	res, err := load(s, EndpointPrizes, probeSig, func() (pageResult, error) {
		return s.fetchPrizes(ctx, probeSig, probe)
	})
	if err != nil {
		return 0, fmt.Errorf("count prizes: %w", err)
	}
	return res.count, nil
}

// FetchPage returns one page of the prizes matching params.
func (s *Service) FetchPage(ctx context.Context, params url.Values, offset, limit int) ([]prize.Prize, error) {
	p := cloneValues(params)
	p.Set("offset", fmt.Sprint(offset))
	p.Set("limit", fmt.Sprint(limit))
	return s.Prizes(ctx, p)
}

// lookup reads sig from store. Store failures other than a miss are logged
// and treated as a miss.
func lookup[V any](ctx context.Context, store cache.Store[V], sig cache.Signature, logger zerolog.Logger) (V, bool) {
	v, err := store.Get(ctx, sig)
	if err == nil {
		logger.Debug().Str("signature", string(sig)).Msg("Cache hit")
		return v, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Str("signature", string(sig)).Msg("Cache read failed, fetching upstream")
	}
	var zero V
	return zero, false
}

// load runs fetch, merging concurrent calls for sig when coalescing is on.
func load[V any](s *Service, endpoint string, sig cache.Signature, fetch func() (V, error)) (V, error) {
	if !s.coalesce {
		return fetch()
	}

	v, err, shared := s.group.Do(endpoint+"|"+string(sig), func() (any, error) {
		return fetch()
	})
	if shared {
		coalescedTotal.WithLabelValues(endpoint).Inc()
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func decodeError(body []byte, err error) *client.UpstreamError {
	return &client.UpstreamError{
		Class:   client.ErrorClassDecode,
		Message: "undecodable upstream payload",
		Body:    body,
		Err:     err,
	}
}

func countSignature(params url.Values) cache.Signature {
	return cache.Key{Endpoint: countEndpoint, Params: filterOnly(params)}.Signature()
}

// filterOnly copies params without paging keys.
func filterOnly(params url.Values) url.Values {
	p := cloneValues(params)
	p.Del("offset")
	p.Del("limit")
	return p
}

func cloneValues(params url.Values) url.Values {
	p := make(url.Values, len(params))
	for k, v := range params {
		p[k] = append([]string(nil), v...)
	}
	return p
}
