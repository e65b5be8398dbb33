package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-ops-backend/config"
	"hotel-ops-backend/internal/filestore"
	"hotel-ops-backend/internal/store"
)

// Result summarizes one sweep.
type Result struct {
	Scanned  int
	Orphaned int
	Deleted  int
	Failed   int
}

// Service deletes stored photos that no room references. Files younger than the
// configured minimum age are skipped so uploads whose row has not committed yet survive.
type Service struct {
	cfg   config.SweeperConfig
	store store.Store
	files filestore.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewService creates a sweeper over the given stores.
func NewService(cfg config.SweeperConfig, s store.Store, files filestore.Store, log logrus.FieldLogger) *Service {
	log = log.WithField("component", "sweeper")
	return &Service{
		cfg:   cfg,
		store: s,
		files: files,
		log:   log,
		now:   time.Now,
	}
}

// Run sweeps once immediately and then on every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("Sweeper is disabled. Not starting.")
		return
	}
	s.log.Info("Starting sweeper service...")

	s.sweep(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper service shutting down.")
			return
		case <-timer.C:
			s.sweep(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	res, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.WithError(err).Error("sweep failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"scanned":  res.Scanned,
		"orphaned": res.Orphaned,
		"deleted":  res.Deleted,
		"failed":   res.Failed,
	}).Info("sweep finished")
}

// SweepOnce deletes every unreferenced file older than the minimum age and waits for
// the deletions to finish.
func (s *Service) SweepOnce(ctx context.Context) (Result, error) {
	var res Result

	// Files are listed before references are loaded, so a file committed in between is
	// seen as referenced.
	entries, err := s.files.List(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list stored photos: %w", err)
	}
	res.Scanned = len(entries)

	paths, err := s.store.PhotoPaths(ctx)
	if err != nil {
		return res, err
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	pool := NewWorkerPool(s.cfg.Workers, s.files, s.log)
	pool.Start(ctx)

	cutoff := s.now().Add(-s.cfg.MinAge)
	var mu sync.Mutex
	for _, e := range entries {
		if _, ok := referenced[e.Ref]; ok {
			continue
		}
		if e.Info.ModTime().After(cutoff) {
			continue
		}
		res.Orphaned++

		err := pool.Dispatch(ctx, e.Ref, func(err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
			} else {
				res.Deleted++
			}
		})
		if err != nil {
			pool.Stop()
			return snapshot(&mu, &res), err
		}
	}

	pool.Stop()
	return snapshot(&mu, &res), ctx.Err()
}

func snapshot(mu *sync.Mutex, res *Result) Result {
	mu.Lock()
	defer mu.Unlock()
	return *res
}
