package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCronSpec refreshes prices daily at 06:00.
const DefaultCronSpec = "0 6 * * *"

// Scheduler runs the refresh service on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	svc    *Service
	spec   string
	logger *slog.Logger
}

// NewScheduler wires the service to a cron expression. An empty spec means
// DefaultCronSpec.
func NewScheduler(svc *Service, spec string, logger *slog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultCronSpec
	}
	return &Scheduler{
		cron:   cron.New(),
		svc:    svc,
		spec:   spec,
		logger: logger.With("component", "scheduler"),
	}
}

// Start validates the cron expression and begins scheduling.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("cron spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("price refresh scheduled", "cron", s.spec)
	return nil
}

// Stop halts scheduling and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("price refresh scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	if _, err := s.svc.RefreshPrices(ctx); err != nil {
		s.logger.Error("scheduled refresh failed", "error", err)
	}
}
