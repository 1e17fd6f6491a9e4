package pagination

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/nobel-prize-cache/pkg/logging"
	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
)

// Config holds batch fetcher configuration
type Config struct {
	// PageSize is the limit requested per page
	PageSize int

	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int

	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultConfig returns a configuration that stays polite to the public API.
func DefaultConfig() Config {
	return Config{
		PageSize:       100,
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher is implemented by *service.Service.
type PageFetcher interface {
	// FetchPage returns the prizes at [offset, offset+limit) of the filtered set
	FetchPage(ctx context.Context, params url.Values, offset, limit int) ([]prize.Prize, error)

	// Count returns the size of the filtered set
	Count(ctx context.Context, params url.Values) (int, error)
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	defaults := DefaultConfig()
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger(logging.ComponentPagination),
	}
}

// FetchAll returns every prize matching params, in upstream order. Paging
// keys in params are replaced. Any failed page fails the whole call.
func (bf *BatchFetcher) FetchAll(ctx context.Context, params url.Values) ([]prize.Prize, error) {
	start := time.Now()
	size := bf.config.PageSize

	first, err := bf.fetchPage(ctx, params, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	total, err := bf.fetcher.Count(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("count prizes: %w", err)
	}

	pages := (total + size - 1) / size
	bf.logger.Info().
		Int("total", total).
		Int("pages", pages).
		Msg("Starting parallel page fetch")

	if pages <= 1 {
		bf.logger.Info().
			Int("prizes", len(first)).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return first, nil
	}

	results := make([][]prize.Prize, pages)
	results[0] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bf.config.MaxConcurrency)

	for page := 1; page < pages; page++ {
		g.Go(func() error {
			data, err := bf.fetchPage(gctx, params, page*size)
			if err != nil {
				bf.logger.Warn().
					Err(err).
					Int("page", page).
					Msg("Page fetch failed")
				return fmt.Errorf("fetch page %d: %w", page, err)
			}
			// Each goroutine owns its slot.
			results[page] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]prize.Prize, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}

	bf.logger.Info().
		Int("pages", pages).
		Int("prizes", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return all, nil
}

func (bf *BatchFetcher) fetchPage(ctx context.Context, params url.Values, offset int) ([]prize.Prize, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()
	return bf.fetcher.FetchPage(pageCtx, params, offset, bf.config.PageSize)
}
