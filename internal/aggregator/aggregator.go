// SPDX-License-Identifier: AGPL-3.0-only
package aggregator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tarun-khatri/competitor-metrics/internal/cache"
	"github.com/tarun-khatri/competitor-metrics/internal/fetcher"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
	"github.com/tarun-khatri/competitor-metrics/internal/stats"
)

// historyDays bounds how much follower history is loaded per slot; a month
// of deltas only needs ~30 points plus slack for gaps.
const historyDays = 90

// History is the follower-snapshot collaborator (the registry in
// production, a fake in tests). A nil History disables enrichment.
type History interface {
	RecordFollowerSnapshot(ctx context.Context, companyID uuid.UUID, platform string, followers int) error
	FollowerHistory(ctx context.Context, companyID uuid.UUID, platform string, days int) ([]model.HistoryPoint, error)
}

// TTLFunc maps a platform to its cache expiration.
type TTLFunc func(platform string) time.Duration

// Slot is one platform's settled outcome. A failed platform carries its
// reason here instead of aborting siblings.
type Slot struct {
	Data  *model.SocialMediaData `json:"data"`
	Error string                 `json:"error,omitempty"`
}

// Result is the four-slot aggregate for one company. Superseded marks
// results whose generation was overtaken by a newer call for the same
// company while fetches were in flight; callers must discard those instead
// of rendering or broadcasting them.
type Result struct {
	CompanyName string `json:"companyName"`
	Twitter     Slot   `json:"twitter"`
	LinkedIn    Slot   `json:"linkedIn"`
	Medium      Slot   `json:"medium"`
	Onchain     Slot   `json:"onchain"`

	Generation uint64 `json:"-"`
	Superseded bool   `json:"-"`
}

func (r *Result) slot(platform string) *Slot {
	switch platform {
	case model.PlatformTwitter:
		return &r.Twitter
	case model.PlatformLinkedIn:
		return &r.LinkedIn
	case model.PlatformMedium:
		return &r.Medium
	case model.PlatformOnchain:
		return &r.Onchain
	}
	return nil
}

// Aggregator fans one company out to every configured platform adapter
// through the cache and settles all slots independently. The cache store is
// injected, never a package singleton, so tests swap in a memory store.
type Aggregator struct {
	store    cache.Store
	adapters map[string]fetcher.Adapter
	ttl      TTLFunc
	history  History

	gen    atomic.Uint64
	mu     sync.Mutex
	latest map[uuid.UUID]uint64
}

func New(store cache.Store, adapters []fetcher.Adapter, ttl TTLFunc, history History) *Aggregator {
	byPlatform := make(map[string]fetcher.Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &Aggregator{
		store:    store,
		adapters: byPlatform,
		ttl:      ttl,
		history:  history,
		latest:   make(map[uuid.UUID]uint64),
	}
}

// Aggregate fetches every platform the company has an identifier for,
// concurrently and cache-first. Platforms without an identifier stay nil
// without touching adapter or cache. One platform failing never blanks the
// others.
func (a *Aggregator) Aggregate(ctx context.Context, company model.Company) *Result {
	gen := a.gen.Add(1)
	a.mu.Lock()
	a.latest[company.ID] = gen
	a.mu.Unlock()

	result := &Result{CompanyName: company.Name, Generation: gen}

	var wg sync.WaitGroup
	var resMu sync.Mutex

	for _, platform := range model.Platforms {
		identifier := company.Identifiers.ForPlatform(platform)
		if identifier == "" {
			continue
		}
		adapter, ok := a.adapters[platform]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(platform, identifier string, adapter fetcher.Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Aggregator: panic fetching %s for %s: %v", platform, company.Name, r)
					resMu.Lock()
					result.slot(platform).Error = fmt.Sprintf("internal error: %v", r)
					resMu.Unlock()
				}
			}()

			key := cache.Key(company.Name, platform, identifier)
			data, err := cache.WithCache(ctx, a.store, key, func(ctx context.Context) (*model.SocialMediaData, error) {
				return adapter.Fetch(ctx, identifier, company.Name)
			}, cache.Options{TTL: a.ttl(platform), UseStaleData: true})

			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				log.Printf("Aggregator: %s fetch failed for %s: %v", platform, company.Name, err)
				result.slot(platform).Error = err.Error()
				return
			}
			result.slot(platform).Data = a.enrich(ctx, company, platform, data)
		}(platform, identifier, adapter)
	}

	wg.Wait()

	a.mu.Lock()
	result.Superseded = a.latest[company.ID] != gen
	a.mu.Unlock()
	if result.Superseded {
		log.Printf("Aggregator: discarding superseded result for %s (generation %d)", company.Name, gen)
	}

	return result
}

// RefreshPlatform force-refreshes exactly one slot, leaving sibling cache
// entries untouched.
func (a *Aggregator) RefreshPlatform(ctx context.Context, company model.Company, platform string) (*model.SocialMediaData, error) {
	identifier := company.Identifiers.ForPlatform(platform)
	if identifier == "" {
		return nil, nil
	}
	adapter, ok := a.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}

	key := cache.Key(company.Name, platform, identifier)
	data, err := cache.ForceRefresh(ctx, a.store, key, func(ctx context.Context) (*model.SocialMediaData, error) {
		return adapter.Fetch(ctx, identifier, company.Name)
	}, a.ttl(platform))
	if err != nil {
		return nil, err
	}

	return a.enrich(ctx, company, platform, data), nil
}

// FetchPlatform serves one slot cache-first, for the single-platform read
// endpoint.
func (a *Aggregator) FetchPlatform(ctx context.Context, company model.Company, platform string) (*model.SocialMediaData, error) {
	identifier := company.Identifiers.ForPlatform(platform)
	if identifier == "" {
		return nil, nil
	}
	adapter, ok := a.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}

	key := cache.Key(company.Name, platform, identifier)
	data, err := cache.WithCache(ctx, a.store, key, func(ctx context.Context) (*model.SocialMediaData, error) {
		return adapter.Fetch(ctx, identifier, company.Name)
	}, cache.Options{TTL: a.ttl(platform), UseStaleData: true})
	if err != nil {
		return nil, err
	}

	return a.enrich(ctx, company, platform, data), nil
}

// enrich records today's follower snapshot for freshly fetched data and
// fills the named deltas from stored history. Platforms without follower
// counts (onchain, the medium stub) pass through untouched.
func (a *Aggregator) enrich(ctx context.Context, company model.Company, platform string, data *model.SocialMediaData) *model.SocialMediaData {
	if data == nil || a.history == nil || data.Profile.FollowersCount <= 0 {
		return data
	}
	// Transient lookups (unregistered companies) have no history rows.
	if company.ID == uuid.Nil {
		return data
	}

	if data.Source == model.SourceAPI {
		if err := a.history.RecordFollowerSnapshot(ctx, company.ID, platform, data.Profile.FollowersCount); err != nil {
			log.Printf("Aggregator: failed to record follower snapshot for %s/%s: %v", company.Name, platform, err)
		}
	}

	history, err := a.history.FollowerHistory(ctx, company.ID, platform, historyDays)
	if err != nil {
		log.Printf("Aggregator: failed to load follower history for %s/%s: %v", company.Name, platform, err)
		return data
	}
	if len(history) == 0 {
		return data
	}

	data.FollowerStats = stats.FollowerDeltas(history, data.Profile.FollowersCount, time.Now())
	return data
}
