// Package searcher runs the progressive-fallback search pipeline: classify
// the query, walk the fallback tiers until one produces candidates, then
// score and rank the survivors. Engine complexity errors degrade to simpler
// tiers and never reach the caller; an exhausted search returns a structured
// empty outcome with a suggestion, not an error.
package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/voyagehq/tripsearch-mcp/internal/config"
	"github.com/voyagehq/tripsearch-mcp/internal/terms"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// cacheSize bounds the query-result cache.
const cacheSize = 1000

// DefaultCacheTTL is used when a request enables caching without a TTL.
const DefaultCacheTTL = time.Minute

// Request contains parameters for one search.
type Request struct {
	Query    string
	Limit    int
	UseCache bool
	CacheTTL time.Duration
}

// cacheEntry is a cached outcome with its expiry.
type cacheEntry struct {
	outcome   *types.SearchOutcome
	expiresAt time.Time
}

// Searcher coordinates classification, tier fallback, and ranking.
type Searcher struct {
	store   Store
	cfg     *config.Config
	scorer  *Scorer
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewSearcher creates a Searcher with the given store and configuration.
func NewSearcher(store Store, cfg *config.Config) *Searcher {
	if cfg == nil {
		cfg = config.Default()
	}
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// Only reachable with an invalid size constant.
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Searcher{
		store:  store,
		cfg:    cfg,
		scorer: NewScorer(cfg.Scoring),
		cache:  cache,
	}
}

// Search runs the full pipeline and always returns a structured outcome on
// the happy path; the error return carries only data errors.
func (s *Searcher) Search(ctx context.Context, req Request) (*types.SearchOutcome, error) {
	start := time.Now()

	if req.Query == "" {
		return nil, types.ErrEmptyQuery
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit %d: %w", req.Limit, types.ErrInvalidLimit)
	}
	if req.Limit == 0 {
		req.Limit = s.cfg.Limits.DefaultResults
	}
	if req.Limit > s.cfg.Limits.MaxResults {
		req.Limit = s.cfg.Limits.MaxResults
	}

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(start)
			return cached, nil
		}
	}

	classification := terms.ClassifyWithLimit(req.Query, s.cfg.Limits.MaxTerms)
	ex := &executor{
		store:    s.store,
		pool:     s.cfg.Limits.CandidatePool,
		tierWarn: s.cfg.Budgets.TierWarn,
	}
	candidates, tier, err := ex.run(ctx, req.Query, classification)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", req.Query, err)
	}

	outcome := &types.SearchOutcome{
		Query: req.Query,
		Tier:  tier,
	}
	if tier == types.TierExhausted {
		outcome.Suggestion = suggestion(req.Query)
	} else {
		outcome.Matches = s.scorer.Rank(req.Query, candidates, req.Limit)
		if len(outcome.Matches) == 0 {
			outcome.Tier = types.TierExhausted
			outcome.Suggestion = suggestion(req.Query)
		}
	}
	outcome.Duration = time.Since(start)

	if req.UseCache && !outcome.Empty() {
		s.storeInCache(req, outcome)
	}
	return outcome, nil
}

func cacheKey(req Request) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d", req.Query, req.Limit)))
}

func (s *Searcher) checkCache(req Request) *types.SearchOutcome {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	entry, ok := s.cache.Get(cacheKey(req))
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	out := *entry.outcome
	return &out
}

func (s *Searcher) storeInCache(req Request, outcome *types.SearchOutcome) {
	ttl := req.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	out := *outcome

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache.Add(cacheKey(req), &cacheEntry{outcome: &out, expiresAt: time.Now().Add(ttl)})
}
