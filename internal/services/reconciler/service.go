package reconciler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/northlane/feedsync/internal/reconcile"
	"golang.org/x/sync/errgroup"
)

// Config holds scheduling settings for the reconciler service.
type Config struct {
	Interval      time.Duration // time between dispatch runs
	MaxConcurrent int           // cap on parallel per-source jobs
}

// Status is a point-in-time snapshot of the service for the admin API.
type Status struct {
	Running        bool       `json:"running"`
	LastDispatchAt *time.Time `json:"last_dispatch_at,omitempty"`
	LastDispatchOK *bool      `json:"last_dispatch_ok,omitempty"`
	SourcesActive  int        `json:"sources_active"`
}

// Service schedules reconciliation runs: one hourly dispatch enumerating
// active data sources, each reconciled as an independent job under a
// concurrency cap. The cap is advisory backpressure for feed hosts and the
// database; it does not mutually exclude overlapping runs for one source —
// the mapping unique constraint resolves that race.
type Service struct {
	store  reconcile.Store
	runner *reconcile.Runner
	cfg    Config
	stop   chan struct{}

	mu     sync.Mutex
	status Status
}

// New creates the reconciler service.
func New(store reconcile.Store, runner *reconcile.Runner, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	return &Service{
		store:  store,
		runner: runner,
		cfg:    cfg,
		stop:   make(chan struct{}),
	}
}

// Start begins the background dispatch loop.
func (s *Service) Start() {
	go func() {
		log.Println("📡 Feed Reconciler started")

		s.mu.Lock()
		s.status.Running = true
		s.mu.Unlock()

		// Initial dispatch delay to let startup settle
		select {
		case <-time.After(5 * time.Second):
		case <-s.stop:
			return
		}

		if err := s.Dispatch(context.Background()); err != nil {
			log.Printf("❌ Reconciler: dispatch failed: %v", err)
		}

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Dispatch(context.Background()); err != nil {
					log.Printf("❌ Reconciler: dispatch failed: %v", err)
				}
			case <-s.stop:
				log.Println("🛑 Feed Reconciler stopped")
				return
			}
		}
	}()
}

// Stop halts the service.
func (s *Service) Stop() {
	close(s.stop)
	s.mu.Lock()
	s.status.Running = false
	s.mu.Unlock()
}

// Dispatch enumerates active data sources and reconciles each of them. A
// failing active-source query fails the whole dispatch; zero active sources
// is a no-op success. Per-source run errors are logged but do not fail the
// dispatch, since each source is an independent job.
func (s *Service) Dispatch(ctx context.Context) error {
	sources, err := s.store.ActiveSources(ctx)
	s.recordDispatch(len(sources), err == nil)
	if err != nil {
		return fmt.Errorf("query active sources: %w", err)
	}

	if len(sources) == 0 {
		log.Println("💤 Reconciler: no active data sources")
		return nil
	}

	log.Printf("🔄 Reconciler: dispatching %d source(s)", len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)

	for _, source := range sources {
		source := source
		g.Go(func() error {
			if _, err := s.runner.Run(ctx, source); err != nil {
				log.Printf("⚠️  Reconciler: source %s finished with error: %v", source.Identifier, err)
			}
			// Run errors are recorded on the source row, not propagated.
			return nil
		})
	}

	return g.Wait()
}

// TriggerSource reconciles one source immediately, regardless of its status.
// Used by the admin sync endpoint.
func (s *Service) TriggerSource(ctx context.Context, id uuid.UUID) (reconcile.Report, error) {
	source, err := s.store.SourceByID(ctx, id)
	if err != nil {
		return reconcile.Report{}, fmt.Errorf("load source: %w", err)
	}
	return s.runner.Run(ctx, *source)
}

// Status returns a snapshot of the service state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) recordDispatch(active int, ok bool) {
	now := time.Now().UTC()
	s.mu.Lock()
	s.status.LastDispatchAt = &now
	s.status.LastDispatchOK = &ok
	s.status.SourcesActive = active
	s.mu.Unlock()
}
