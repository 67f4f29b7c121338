package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/config"
	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository"
	"github.com/mamadbah2/bikestore/internal/service/reporting"
	"github.com/mamadbah2/bikestore/pkg/clients/notify"
)

const jobTimeout = 2 * time.Minute

// ReportBuilder computes the daily snapshot.
type ReportBuilder interface {
	DailyReport(ctx context.Context, at time.Time) (models.DailyReport, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	location *time.Location
	reports  ReportBuilder
	archive  repository.ReportRepository
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler running the daily report on cfg.CronSchedule
// (standard five-field cron) in cfg.Timezone.
func NewScheduler(cfg config.ReportingConfig, reports ReportBuilder, archive repository.ReportRepository, notifier notify.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		location: loc,
		reports:  reports,
		archive:  archive,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.runDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// RunDailyReport builds today's report, archives it and posts it to the
// notifier. An archive or notification failure does not stop the other step.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	s.logger.Info("generating daily report")

	report, err := s.reports.DailyReport(ctx, s.now().In(s.location))
	if err != nil {
		return fmt.Errorf("build daily report: %w", err)
	}

	if err := s.archive.SaveDailyReport(ctx, report); err != nil {
		s.logger.Error("failed to archive daily report", zap.Error(err))
	}

	msg := notify.Message{
		Title: "Daily stock report",
		Text:  reporting.FormatDailyReport(report),
		Level: notify.LevelInfo,
	}
	if len(report.LowStockBikes) > 0 || len(report.ReorderBikes) > 0 {
		msg.Level = notify.LevelWarning
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}

	s.logger.Info("daily report sent", zap.Int("sales", report.SalesCount))
	return nil
}
