// Package slideshow implements the asset pool and slideshow session: a
// de-duplicated, continuously refilled buffer of photo metadata, and the
// stateful holder of the currently loaded source images that renders them at
// arbitrary resolutions.
package slideshow

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"immich-slideshow/internal/immich"
)

// Pool management constants.
const (
	// MaxPoolSize is the maximum number of assets kept in the pool.
	MaxPoolSize = 200
	// RefillThreshold is the pool size below which the session refills
	// before popping.
	RefillThreshold = 20
	// PoolFetchSize is the number of assets requested per refill.
	PoolFetchSize = 100
	// enrichLimit caps the number of concurrent detail fetches during a
	// refill so the server is not overwhelmed.
	enrichLimit = 5
)

// AssetSource provides candidate assets and their detail records.
type AssetSource interface {
	SearchRandomRecent(ctx context.Context, days, count int, filter immich.FavoritesFilter) ([]immich.AssetRecord, error)
	MemoryAssets(ctx context.Context, forDate time.Time, maxYears int) ([]immich.AssetRecord, error)
	AssetDetail(ctx context.Context, id immich.AssetID) (*immich.AssetRecord, error)
}

// PoolConfig holds the configuration that shapes what a refill requests.
type PoolConfig struct {
	// Days limits how far back the recent search looks. 0 means unlimited.
	Days int
	// MemoryYears limits how far back memories may reach. 0 means
	// unlimited.
	MemoryYears int
	// MixRatio is the percentage (0-100) of refill slots allocated to
	// memories; the rest are recent random photos.
	MixRatio int
	// FavoritesFilter restricts the recent search.
	FavoritesFilter immich.FavoritesFilter
}

// Pool is an in-memory buffer of enriched, not-yet-shown asset records. It is
// not safe for concurrent use on its own; the Session serializes all access
// under its refresh lock.
type Pool struct {
	source AssetSource
	conf   PoolConfig
	rng    *rand.Rand
	assets []immich.AssetRecord
}

// poolOpt is used for configuring the [Pool].
type poolOpt func(*Pool)

// WithRand injects a seeded random source so shuffles (and therefore
// truncation on overflow) are deterministic. Without it the shared global
// source is used.
func WithRand(rng *rand.Rand) poolOpt {
	return func(p *Pool) { p.rng = rng }
}

// NewPool initializes an empty pool drawing from the given source.
func NewPool(source AssetSource, conf PoolConfig, opts ...poolOpt) *Pool {
	p := &Pool{source: source, conf: conf}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Len returns the number of records currently buffered.
func (p *Pool) Len() int { return len(p.assets) }

// IsLow reports whether the pool has dropped below the refill threshold.
func (p *Pool) IsLow() bool { return len(p.assets) < RefillThreshold }

// Refill requests a new batch of candidates, enriches them with per-asset
// detail, and appends them to the pool. The batch is split between memories
// and recent random photos according to the configured mix ratio. Failures
// are logged and surfaced only as a pool that stays small; callers must
// tolerate an empty pool.
func (p *Pool) Refill(ctx context.Context) {
	space := MaxPoolSize - len(p.assets)
	fetchCount := min(PoolFetchSize, space)
	if fetchCount <= 0 {
		return
	}

	memoryCount := p.conf.MixRatio * fetchCount / 100
	var memories []immich.AssetRecord
	if memoryCount > 0 {
		assets, err := p.source.MemoryAssets(ctx, time.Now(), p.conf.MemoryYears)
		if err != nil {
			slog.Warn("failed to fetch memories", "error", err)
		}
		p.shuffle(assets)
		if len(assets) > memoryCount {
			assets = assets[:memoryCount]
		}
		memories = assets
	}

	// Recent photos fill whatever the memories did not.
	recentCount := fetchCount - len(memories)
	var recent []immich.AssetRecord
	if recentCount > 0 {
		assets, err := p.source.SearchRandomRecent(ctx, p.conf.Days, recentCount, p.conf.FavoritesFilter)
		if err != nil {
			slog.Warn("failed to search recent assets", "error", err)
		}
		recent = assets
	}

	candidates := append(memories, recent...)
	if len(candidates) == 0 {
		slog.Warn("no assets found",
			"mix_ratio", p.conf.MixRatio,
			"days", p.conf.Days,
		)
		return
	}
	p.shuffle(candidates)

	enriched := p.enrich(ctx, candidates)
	p.shuffle(enriched)
	p.assets = append(p.assets, enriched...)
	if len(p.assets) > MaxPoolSize {
		p.assets = p.assets[:MaxPoolSize]
	}
	slog.Debug("refilled pool",
		"candidates", len(candidates),
		"enriched", len(enriched),
		"pool_size", len(p.assets),
	)
}

// enrich fetches the full detail for each candidate under a bounded
// concurrency gate. Candidates whose detail fetch fails are dropped silently;
// the memory year tag survives enrichment.
func (p *Pool) enrich(ctx context.Context, candidates []immich.AssetRecord) []immich.AssetRecord {
	results := make([]*immich.AssetRecord, len(candidates))
	var g errgroup.Group
	g.SetLimit(enrichLimit)
	for i, cand := range candidates {
		g.Go(func() error {
			detail, err := p.source.AssetDetail(ctx, cand.ID)
			if err != nil || detail == nil {
				slog.Debug("dropping asset without detail", "id", cand.ID, "error", err)
				return nil
			}
			detail.MemoryYear = cand.MemoryYear
			results[i] = detail
			return nil
		})
	}
	// Errors are swallowed per candidate, so Wait never fails.
	_ = g.Wait()

	var enriched []immich.AssetRecord
	for _, r := range results {
		if r != nil {
			enriched = append(enriched, *r)
		}
	}
	return enriched
}

// Pop removes up to count records satisfying pred (nil means any) and returns
// them, preserving the order of whatever remains. A predicate that matches
// nothing yields an empty result; it never blocks.
func (p *Pool) Pop(count int, pred func(immich.AssetRecord) bool) []immich.AssetRecord {
	var result, remaining []immich.AssetRecord
	for _, rec := range p.assets {
		if len(result) < count && (pred == nil || pred(rec)) {
			result = append(result, rec)
		} else {
			remaining = append(remaining, rec)
		}
	}
	p.assets = remaining
	return result
}

// shuffle is a helper method to shuffle the contents of the assets slice.
func (p *Pool) shuffle(assets []immich.AssetRecord) {
	swap := func(i, j int) {
		assets[i], assets[j] = assets[j], assets[i]
	}
	if p.rng != nil {
		p.rng.Shuffle(len(assets), swap)
		return
	}
	rand.Shuffle(len(assets), swap)
}
