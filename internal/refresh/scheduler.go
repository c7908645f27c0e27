// Package refresh rebuilds the virtual tree from the remote listing on
// a fixed interval.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ebrainte/rd-dav-server/internal/debrid"
	"github.com/ebrainte/rd-dav-server/internal/log"
	"github.com/ebrainte/rd-dav-server/internal/vfs"
)

// Lister is the slice of the debrid client the scheduler needs.
type Lister interface {
	ListTorrents(ctx context.Context) ([]debrid.Torrent, error)
}

// Builder builds a snapshot from a torrent listing.
type Builder interface {
	Build(ctx context.Context, torrents []debrid.Torrent) *vfs.Snapshot
}

// Scheduler periodically lists the remote collection, rebuilds the
// tree, and publishes the result. A failed refresh keeps the previous
// snapshot in service.
type Scheduler struct {
	lister   Lister
	builder  Builder
	store    *vfs.Store
	interval time.Duration
	cron     *cron.Cron
}

// NewScheduler creates a scheduler. Call RunOnce for the initial build,
// then Start for the periodic cycle.
func NewScheduler(lister Lister, builder Builder, store *vfs.Store, interval time.Duration) *Scheduler {
	return &Scheduler{
		lister:   lister,
		builder:  builder,
		store:    store,
		interval: interval,
	}
}

// RunOnce performs one list-build-publish cycle. On listing failure the
// store is left untouched and the error returned.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	torrents, err := s.lister.ListTorrents(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	snapshot := s.builder.Build(ctx, torrents)
	s.store.Publish(snapshot)

	log.Info("refresh complete",
		"torrents", len(torrents),
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return nil
}

// Start launches the periodic refresh. Cycles run strictly one at a
// time: if a refresh is still running when the next tick fires, the
// tick is skipped.
func (s *Scheduler) Start() {
	s.cron = cron.New()

	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		if err := s.RunOnce(context.Background()); err != nil {
			log.Error("scheduled refresh failed", "error", err)
		}
	}))
	s.cron.Schedule(cron.Every(s.interval), job)

	s.cron.Start()
	log.Info("refresh scheduler started", "interval", s.interval.String())
}

// Stop halts the periodic refresh. A cycle already in flight finishes.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
