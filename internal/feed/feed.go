// Package feed fetches payloads from the backend and falls back to the
// local snapshot cache when the backend cannot be reached. Every attempt
// is written to the store's fetch history.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sadopc/mirror/internal/backend"
	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/config"
	"github.com/sadopc/mirror/internal/goals"
	"github.com/sadopc/mirror/internal/mirror"
	"github.com/sadopc/mirror/internal/store"
)

// RangeResult is a range payload and where it came from. When Offline is
// set, Payload is the cached copy and Err says why the fetch failed.
type RangeResult struct {
	Payload   mirror.RangePayload
	FetchedAt time.Time
	Offline   bool
	Err       error
}

type TodayResult struct {
	Payload   mirror.TodayPayload
	FetchedAt time.Time
	Offline   bool
	Err       error
}

// Feed combines the backend client with the store.
type Feed struct {
	mu      sync.RWMutex
	client  *backend.Client // nil when no backend is configured
	timeout time.Duration

	store *store.Store
	log   *log.Logger
	now   func() time.Time
}

// New resolves the backend from cfg, letting URL and token saved in the
// store take precedence. A missing URL is not an error: the feed then
// serves only cached data.
func New(cfg config.Config, st *store.Store, logger *log.Logger) (*Feed, error) {
	url, token := cfg.BackendURL, cfg.Token
	if u, t := st.Backend(); u != "" {
		url = u
		if t != "" {
			token = t
		}
	}

	f := &Feed{store: st, log: logger, now: time.Now, timeout: cfg.Timeout()}
	if err := f.connect(url, token); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Feed) connect(url, token string) error {
	c, err := backend.New(url, token, f.timeout, backend.WithLogger(f.log))
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		f.log.Info("no backend configured, serving cache only")
		c = nil
	case err != nil:
		return err
	}
	f.mu.Lock()
	f.client = c
	f.mu.Unlock()
	return nil
}

// Reconfigure saves a new backend URL and token and switches to it.
func (f *Feed) Reconfigure(url, token string) error {
	if err := f.connect(url, token); err != nil {
		return err
	}
	return f.store.SetBackend(url, token)
}

func (f *Feed) current() *backend.Client {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.client
}

// Configured reports whether a backend is set.
func (f *Feed) Configured() bool { return f.current() != nil }

func (f *Feed) BaseURL() string {
	c := f.current()
	if c == nil {
		return ""
	}
	return c.BaseURL()
}

// Range fetches r, caching the result. On failure it returns the cached
// copy flagged Offline, or the error alone when nothing is cached.
func (f *Feed) Range(ctx context.Context, r calendar.Range) (RangeResult, error) {
	var p mirror.RangePayload
	err := f.attempt(store.FetchRange, r, func() error {
		c := f.current()
		if c == nil {
			return backend.ErrNotConfigured
		}
		var err error
		p, err = c.Range(ctx, r)
		return err
	})
	if err == nil {
		now := f.now()
		if serr := f.store.SaveRange(r, p, now); serr != nil {
			f.log.Warn("cache range", "err", serr)
		}
		return RangeResult{Payload: p, FetchedAt: now}, nil
	}
	if errors.Is(err, context.Canceled) {
		return RangeResult{}, err
	}

	cached, cerr := f.store.LoadRange(r)
	if cerr != nil {
		if !errors.Is(cerr, store.ErrNoSnapshot) {
			f.log.Warn("load cached range", "range", r, "err", cerr)
		}
		return RangeResult{}, err
	}
	f.log.Info("serving cached range", "range", r, "fetched_at", cached.FetchedAt)
	return RangeResult{Payload: cached.Payload, FetchedAt: cached.FetchedAt, Offline: true, Err: err}, nil
}

// Today fetches the today payload with the same fallback as Range.
func (f *Feed) Today(ctx context.Context, today calendar.Date) (TodayResult, error) {
	var p mirror.TodayPayload
	err := f.attempt(store.FetchToday, calendar.DayRange(today), func() error {
		c := f.current()
		if c == nil {
			return backend.ErrNotConfigured
		}
		var err error
		p, err = c.Today(ctx)
		return err
	})
	if err == nil {
		now := f.now()
		if serr := f.store.SaveToday(p, now); serr != nil {
			f.log.Warn("cache today", "err", serr)
		}
		return TodayResult{Payload: p, FetchedAt: now}, nil
	}
	if errors.Is(err, context.Canceled) {
		return TodayResult{}, err
	}

	cached, cerr := f.store.LoadToday(today)
	if cerr != nil {
		return TodayResult{}, err
	}
	return TodayResult{Payload: cached.Payload, FetchedAt: cached.FetchedAt, Offline: true, Err: err}, nil
}

// Goals fetches goals. They are not cached.
func (f *Feed) Goals(ctx context.Context) ([]goals.Goal, error) {
	var gs []goals.Goal
	err := f.attempt(store.FetchGoals, calendar.Range{}, func() error {
		c := f.current()
		if c == nil {
			return backend.ErrNotConfigured
		}
		var err error
		gs, err = c.Goals(ctx)
		return err
	})
	return gs, err
}

// Prune trims the snapshot cache to the configured size.
func (f *Feed) Prune(today calendar.Date) {
	n, err := f.store.PruneSnapshots(f.store.CacheKeep(), today)
	if err != nil {
		f.log.Warn("prune snapshots", "err", err)
		return
	}
	if n > 0 {
		f.log.Debug("pruned snapshots", "rows", n)
	}
}

// attempt runs fn and records it in the fetch history. Attempts without a
// configured backend are not recorded.
func (f *Feed) attempt(kind string, r calendar.Range, fn func() error) error {
	start := f.now()
	err := fn()
	if errors.Is(err, backend.ErrNotConfigured) {
		return err
	}

	rec := store.Fetch{Kind: kind, StartedAt: start, Duration: f.now().Sub(start), Status: 200}
	if !r.Start.IsZero() {
		rec.RangeStart, rec.RangeEnd = r.Start.String(), r.End.String()
	}
	if err != nil {
		rec.Error = err.Error()
		rec.Status = 0
		var fe *backend.FetchError
		if errors.As(err, &fe) {
			rec.Status = fe.Status
		}
	}
	if _, rerr := f.store.RecordFetch(rec); rerr != nil {
		f.log.Warn("record fetch", "err", rerr)
	}
	return err
}
