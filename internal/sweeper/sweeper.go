// Package sweeper removes blobs that no catalog record references.
//
// Uploads write the blob before the catalog row, and a failed insert is
// compensated with a delete, but a crash between the two steps can strand a
// blob. The sweeper reconciles storage against the catalog in the
// background. A blob must stay orphaned across a grace period before it is
// deleted, so an upload that is mid-flight during a scan is never touched.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bookstagram/internal/storage"
	"bookstagram/internal/store"

	"golang.org/x/sync/errgroup"
)

// Summary reports one reconciliation pass.
type Summary struct {
	Blobs      int // keys listed in storage
	Referenced int // keys with at least one catalog record
	Orphaned   int // keys with no record, still inside the grace period
	Deleted    int // orphans removed this pass
	Failed     int // removals that errored
}

type Options struct {
	Catalog store.Catalog
	Blobs   storage.BlobStorage
	Logger  *slog.Logger

	// Grace is how long a key must remain orphaned before deletion.
	Grace time.Duration
	// Delete enables removal. When false the runner only reports.
	Delete bool
	// Workers bounds concurrent removals.
	Workers int

	now func() time.Time
}

// Runner performs reconciliation passes. It remembers when each orphan was
// first seen, so Run must be called repeatedly on the same Runner for the
// grace period to elapse.
type Runner struct {
	opts Options

	mu        sync.Mutex
	firstSeen map[string]time.Time
}

func NewRunner(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Runner{
		opts:      opts,
		firstSeen: make(map[string]time.Time),
	}
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	keys, err := r.opts.Blobs.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	referenced, err := r.opts.Catalog.ListBlobKeys(ctx)
	if err != nil {
		return Summary{}, err
	}
	refSet := make(map[string]struct{}, len(referenced))
	for _, k := range referenced {
		refSet[k] = struct{}{}
	}

	now := r.opts.now()
	summary := Summary{Blobs: len(keys)}
	var expired []string

	r.mu.Lock()
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		seen[key] = struct{}{}
		if _, ok := refSet[key]; ok {
			summary.Referenced++
			delete(r.firstSeen, key)
			continue
		}
		first, ok := r.firstSeen[key]
		if !ok {
			r.firstSeen[key] = now
			summary.Orphaned++
			continue
		}
		if now.Sub(first) < r.opts.Grace {
			summary.Orphaned++
			continue
		}
		expired = append(expired, key)
	}
	// Forget keys that disappeared between passes.
	for key := range r.firstSeen {
		if _, ok := seen[key]; !ok {
			delete(r.firstSeen, key)
		}
	}
	r.mu.Unlock()

	if !r.opts.Delete {
		summary.Orphaned += len(expired)
		return summary, nil
	}

	var deleted, failed int
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, key := range expired {
		g.Go(func() error {
			if err := r.opts.Blobs.Remove(gctx, key); err != nil {
				r.opts.Logger.Warn("orphan blob removal failed", "key", key, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			r.opts.Logger.Info("removed orphan blob", "key", key)
			mu.Lock()
			deleted++
			mu.Unlock()
			r.forget(key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	summary.Deleted = deleted
	summary.Failed = failed
	return summary, nil
}

func (r *Runner) forget(key string) {
	r.mu.Lock()
	delete(r.firstSeen, key)
	r.mu.Unlock()
}
