package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// ReportBuilder produces the weekly feed report.
type ReportBuilder interface {
	WeeklyFeedReport(ctx context.Context, now time.Time) (models.FeedReport, string, error)
}

// Notifier delivers a report to a recipient.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler runs the weekly feed report on the configured cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	reports   ReportBuilder
	notifier  Notifier
	recipient string
	schedule  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a scheduler in the configured timezone. notifier may
// be nil, in which case reports are built and archived but not sent.
func NewScheduler(cfg config.ReportingConfig, recipient string, reports ReportBuilder, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		reports:   reports,
		notifier:  notifier,
		recipient: recipient,
		schedule:  cfg.CronSchedule,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start registers the weekly report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sendWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly feed report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	_, text, err := s.reports.WeeklyFeedReport(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to generate weekly feed report", zap.Error(err))
		return
	}

	if s.notifier == nil || s.recipient == "" {
		s.logger.Info("weekly feed report generated, no recipient configured")
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.recipient,
		Message: text,
	}

	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send weekly feed report", zap.Error(err))
		return
	}

	s.logger.Info("weekly feed report sent", zap.String("recipient", s.recipient))
}
