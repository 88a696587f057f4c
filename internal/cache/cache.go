// Package cache keeps recently built profile summaries in memory.
//
// A lookup costs one GitHub call per repository README, so repeated requests
// for the same user within a short window are answered from a bounded LRU.
// Entries expire after a TTL. Only successful lookups are stored: a user who
// was missing a minute ago may exist now, and an outage should not outlive
// itself.
//
// Concurrent misses for the same username share a single upstream lookup.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/sakif/devprofile/internal/metrics"
	"github.com/sakif/devprofile/internal/model"
	"github.com/sakif/devprofile/internal/service"
)

// Defaults used when Config fields are zero.
const (
	DefaultSize = 256
	DefaultTTL  = 5 * time.Minute
)

// Fetcher builds a profile summary. *service.ProfileService implements it.
type Fetcher interface {
	FetchProfile(ctx context.Context, input string, opts ...service.FetchOption) (*model.ProfileSummary, error)
}

// Config sizes the cache.
type Config struct {
	Size int
	TTL  time.Duration
}

type cacheEntry struct {
	summary     *model.ProfileSummary
	lastUpdated time.Time
}

// Profiles is a Fetcher that answers from memory when it can.
// Returned summaries are shared between callers and must not be modified.
type Profiles struct {
	next    Fetcher
	cache   *lru.Cache[string, *cacheEntry]
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group
	now     func() time.Time

	gcMu sync.Mutex
}

var _ Fetcher = (*Profiles)(nil)

// New wraps next with a cache. m may be nil.
func New(next Fetcher, cfg Config, m *metrics.Metrics) (*Profiles, error) {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	c, err := lru.New[string, *cacheEntry](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Profiles{
		next:    next,
		cache:   c,
		ttl:     cfg.TTL,
		metrics: m,
		now:     time.Now,
	}, nil
}

// FetchProfile returns a cached summary for input or looks it up.
//
// Inputs that do not normalise to a valid username go straight to the wrapped
// Fetcher so it can report the error. Only the caller that performs the
// upstream lookup sees every phase. Cache hits and callers that joined an
// in-flight lookup see PhaseDone alone.
func (p *Profiles) FetchProfile(ctx context.Context, input string, opts ...service.FetchOption) (*model.ProfileSummary, error) {
	key, err := service.NormalizeUsername(input)
	if err != nil {
		return p.next.FetchProfile(ctx, input, opts...)
	}

	if summary, ok := p.get(key); ok {
		p.metrics.ObserveCache(true)
		service.ReportDone(opts...)
		return summary, nil
	}
	p.metrics.ObserveCache(false)

	// The shared lookup must not die with whichever caller started it, so
	// it runs detached and each caller waits on its own context.
	var leader bool
	ch := p.group.DoChan(key, func() (any, error) {
		leader = true
		summary, err := p.next.FetchProfile(context.WithoutCancel(ctx), key, opts...)
		if err != nil {
			return nil, err
		}
		p.cache.Add(key, &cacheEntry{summary: summary, lastUpdated: p.now()})
		return summary, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if !leader {
			service.ReportDone(opts...)
		}
		return res.Val.(*model.ProfileSummary), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the number of stored entries, expired ones included.
func (p *Profiles) Len() int {
	return p.cache.Len()
}

// Purge drops every entry.
func (p *Profiles) Purge() {
	p.cache.Purge()
}

func (p *Profiles) get(key string) (*model.ProfileSummary, bool) {
	entry, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}
	if p.now().Sub(entry.lastUpdated) > p.ttl {
		p.cache.Remove(key)
		p.GC()
		return nil, false
	}
	return entry.summary, true
}

// GC removes expired entries, oldest first.
func (p *Profiles) GC() {
	p.gcMu.Lock()
	defer p.gcMu.Unlock()

	now := p.now()
	for {
		key, entry, ok := p.cache.GetOldest()
		if !ok || now.Sub(entry.lastUpdated) <= p.ttl {
			return
		}
		p.cache.Remove(key)
	}
}
