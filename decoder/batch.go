package decoder

import (
	"context"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// BatchOptions controls DecodeAll.
type BatchOptions struct {
	// Workers bounds concurrent decodes. Zero uses GOMAXPROCS.
	Workers int
	// FailFast stops the batch at the first decode failure and returns it.
	FailFast bool
}

// BatchResult is the outcome for one code of a batch, in input order.
type BatchResult struct {
	Code   string
	Record *Record
	Err    error
}

// DecodeAll decodes codes concurrently. Results keep input order. Without
// FailFast, decode failures are kept per code and only configuration errors or
// cancellation abort the batch.
func DecodeAll(ctx context.Context, d Decoder, kind string, year int, codes []string, opts BatchOptions) ([]BatchResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]BatchResult, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, code := range codes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := d.Decode(kind, year, code)
			results[i] = BatchResult{Code: code, Record: rec, Err: err}
			if err == nil {
				return nil
			}
			if IsConfigError(err) || opts.FailFast {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

type cacheKey struct {
	kind string
	year int
	code string
}

type cacheEntry struct {
	rec *Record
	err error
}

// CachedPipeline memoises decodes. The same column code appears in the campus,
// district, region and state extracts of a year. Returned records are shared
// and must not be modified.
type CachedPipeline struct {
	next  Decoder
	cache *lru.Cache[cacheKey, cacheEntry]
}

// NewCachedPipeline wraps next with an LRU cache holding up to size decodes.
func NewCachedPipeline(next Decoder, size int) (*CachedPipeline, error) {
	cache, err := lru.New[cacheKey, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachedPipeline{next: next, cache: cache}, nil
}

// Decode returns the cached outcome or decodes and caches it. Configuration
// errors are not cached.
func (c *CachedPipeline) Decode(kind string, year int, code string) (*Record, error) {
	key := cacheKey{kind: kind, year: year, code: code}
	if e, ok := c.cache.Get(key); ok {
		return e.rec, e.err
	}

	rec, err := c.next.Decode(kind, year, code)
	if err != nil && !IsDecodeFailure(err) {
		return nil, err
	}
	c.cache.Add(key, cacheEntry{rec: rec, err: err})
	return rec, err
}

// Len returns the number of cached decodes.
func (c *CachedPipeline) Len() int {
	return c.cache.Len()
}
