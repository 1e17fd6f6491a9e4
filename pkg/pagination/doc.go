// Package pagination fetches every page of a filtered prize set in parallel.
//
// The upstream API pages with offset/limit and reports the size of the whole
// filtered set in meta.count. BatchFetcher reads the first page, derives the
// number of remaining pages from the count, and fetches them concurrently
// with a bounded number of in-flight requests.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(svc, pagination.DefaultConfig())
//	prizes, err := fetcher.FetchAll(ctx, url.Values{"nobelPrizeCategory": {"phy"}})
//
// The batch fetcher:
//   - Fetches the first page and the set size
//   - Fans the remaining pages out to at most MaxConcurrency goroutines
//   - Returns prizes in upstream order
//   - Fails the whole fetch when any page fails (no partial results)
package pagination
