package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/budget-debts/internal/config"
)

// Accruer settles missed payments across all budget plans
type Accruer interface {
	AccrueAllPlans(ctx context.Context) error
}

// Scheduler runs the missed-payment accrual on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	accruer Accruer
	log     *logrus.Logger
	ctx     context.Context
}

// New initializes a new scheduler in the configured timezone
func New(cfg *config.Config, accruer Accruer, log *logrus.Logger) *Scheduler {
	location := cfg.Timezone
	if location == nil {
		location = time.UTC
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(location)),
		spec:    cfg.AccrualSchedule,
		accruer: accruer,
		log:     log,
		ctx:     context.Background(),
	}
}

// Start registers the accrual job and blocks until ctx is done
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx
	if _, err := s.cron.AddFunc(s.spec, s.accrue); err != nil {
		return fmt.Errorf("add accrual job: %w", err)
	}

	s.cron.Start()
	s.log.Infof("Scheduler started (TZ: %s, accrual: %s)", s.cron.Location(), s.spec)

	<-ctx.Done()
	return nil
}

// Stop waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) accrue() {
	start := time.Now()
	if err := s.accruer.AccrueAllPlans(s.ctx); err != nil {
		s.log.WithError(err).Error("Scheduled accrual failed")
		return
	}
	s.log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("Scheduled accrual finished")
}
