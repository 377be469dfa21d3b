package worker

import (
	"context"
	"errors"
	"time"

	"github.com/talowa-app/internal/config"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/queue"

	"github.com/hibiken/asynq"
)

// orphanSweepInterval spaces the periodic sweeps that pick up members
// still waiting for a referrer.
const orphanSweepInterval = 10 * time.Minute

// Service is the queue consumer process.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the queue consumer.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer until the server stops.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.OrphanService != nil {
		go s.runOrphanSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runOrphanSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrphanService == nil {
		return
	}
	runOnce := func() {
		assignments, err := s.consumer.OrphanService.ResolveAll(0)
		if err != nil {
			logger.Warnw("worker_orphan_sweep_loop_failed", "error", err)
			return
		}
		if len(assignments) > 0 {
			logger.Infow("worker_orphan_sweep_loop_done", "assigned", len(assignments))
		}
	}
	runOnce()

	ticker := time.NewTicker(orphanSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
