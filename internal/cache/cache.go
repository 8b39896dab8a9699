// SPDX-License-Identifier: AGPL-3.0-only
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// ErrMiss is returned by Store.Get when no entry exists under the key.
var ErrMiss = errors.New("cache miss")

// Entry is one cached payload. Entries are never mutated in place: every
// refresh writes a new entry with a new timestamp under the same key.
type Entry struct {
	Key        string                 `json:"key"`
	Data       *model.SocialMediaData `json:"data"`
	Timestamp  time.Time              `json:"timestamp"`
	Expiration time.Duration          `json:"expiration"`
}

// Fresh reports whether the entry is still inside its TTL at the given
// instant. The boundary now-timestamp == expiration counts as fresh.
func (e Entry) Fresh(now time.Time) bool {
	return now.Sub(e.Timestamp) <= e.Expiration
}

// Store is the key/value backend. Implementations must be safe for
// concurrent use; writes are last-write-wins per key.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, data *model.SocialMediaData, expiration time.Duration) (Entry, error)
}

// Options control one WithCache read.
type Options struct {
	TTL          time.Duration
	UseStaleData bool
}

// Key builds the stable composite key for a (company, platform, identifier)
// triple. Company names are case-folded so "Acme" and "acme" share entries.
func Key(companyName, platform, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", strings.ToLower(strings.TrimSpace(companyName)), platform, identifier)
}

// FetchFunc produces a fresh payload when the cache cannot serve the read.
type FetchFunc func(ctx context.Context) (*model.SocialMediaData, error)

// WithCache serves a read through the store. Fresh hits return the cached
// payload without fetching; expired hits return the stale payload when
// stale-serving is on (a background refresh is the worker's job, not the
// read path's); everything else fetches exactly once and stores the result.
// Store failures degrade to a direct fetch: the cache is an optimization,
// not a correctness dependency.
func WithCache(ctx context.Context, store Store, key string, fetch FetchFunc, opts Options) (*model.SocialMediaData, error) {
	entry, err := store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrMiss) {
		log.Printf("Cache: store get failed for %s, falling back to direct fetch: %v", key, err)
		return fetch(ctx)
	}

	if err == nil {
		now := time.Now()
		if entry.Fresh(now) {
			return served(entry), nil
		}
		if opts.UseStaleData {
			log.Printf("Cache: serving stale data for %s (age %s)", key, now.Sub(entry.Timestamp).Round(time.Second))
			return served(entry), nil
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := store.Put(ctx, key, data, opts.TTL)
	if err != nil {
		log.Printf("Cache: store put failed for %s: %v", key, err)
		return fetched(data, time.Now(), opts.TTL), nil
	}

	return fetched(stored.Data, stored.Timestamp, stored.Expiration), nil
}

// ForceRefresh bypasses freshness entirely: it always fetches and always
// overwrites the entry, whatever its age.
func ForceRefresh(ctx context.Context, store Store, key string, fetch FetchFunc, ttl time.Duration) (*model.SocialMediaData, error) {
	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := store.Put(ctx, key, data, ttl)
	if err != nil {
		log.Printf("Cache: store put failed for %s after forced refresh: %v", key, err)
		return fetched(data, time.Now(), ttl), nil
	}

	return fetched(stored.Data, stored.Timestamp, stored.Expiration), nil
}

func served(entry Entry) *model.SocialMediaData {
	if entry.Data == nil {
		return nil
	}
	out := *entry.Data
	out.Source = model.SourceCache
	out.LastUpdated = entry.Timestamp
	out.ExpiresAt = entry.Timestamp.Add(entry.Expiration)
	return &out
}

func fetched(data *model.SocialMediaData, ts time.Time, ttl time.Duration) *model.SocialMediaData {
	if data == nil {
		return nil
	}
	out := *data
	out.Source = model.SourceAPI
	out.LastUpdated = ts
	out.ExpiresAt = ts.Add(ttl)
	return &out
}
