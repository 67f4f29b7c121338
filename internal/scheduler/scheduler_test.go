package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/bikestore/internal/config"
	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository/memory"
	"github.com/mamadbah2/bikestore/pkg/clients/notify"
)

type stubReports struct {
	report models.DailyReport
	err    error
	at     time.Time
}

func (s *stubReports) DailyReport(_ context.Context, at time.Time) (models.DailyReport, error) {
	s.at = at
	return s.report, s.err
}

type failingArchive struct{}

func (failingArchive) SaveDailyReport(context.Context, models.DailyReport) error {
	return errors.New("disk full")
}

type recordingNotifier struct {
	messages []notify.Message
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.messages = append(n.messages, msg)
	return n.err
}

func reportingConfig() config.ReportingConfig {
	return config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Asia/Kolkata"}
}

func TestRunDailyReportArchivesAndNotifies(t *testing.T) {
	store := memory.NewStore()
	reports := &stubReports{report: models.DailyReport{
		Date:          time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		SalesCount:    2,
		UnitsSold:     3,
		Revenue:       decimal.NewFromInt(1500),
		TotalRevenue:  decimal.NewFromInt(9000),
		LowStockBikes: []string{},
		ReorderBikes:  []string{"Trek Marlin 7 (Orange): 2 left"},
	}}
	notifier := &recordingNotifier{}

	sched, err := NewScheduler(reportingConfig(), reports, store, notifier, zaptest.NewLogger(t))
	require.NoError(t, err)
	sched.now = func() time.Time { return time.Date(2024, 4, 2, 14, 30, 0, 0, time.UTC) }

	require.NoError(t, sched.RunDailyReport(context.Background()))

	assert.Equal(t, "Asia/Kolkata", reports.at.Location().String())
	require.Len(t, store.DailyReports(), 1)
	assert.Equal(t, 2, store.DailyReports()[0].SalesCount)

	require.Len(t, notifier.messages, 1)
	msg := notifier.messages[0]
	assert.Equal(t, notify.LevelWarning, msg.Level)
	assert.Contains(t, msg.Text, "Needs reorder (1):")
	assert.Contains(t, msg.Text, "Total revenue to date: 9000.00.")
}

func TestRunDailyReportLowStockWarns(t *testing.T) {
	reports := &stubReports{report: models.DailyReport{
		Revenue:       decimal.Zero,
		TotalRevenue:  decimal.NewFromInt(9000),
		LowStockBikes: []string{"Haro Downtown 20.5 (Chrome): 3 left"},
		ReorderBikes:  []string{},
	}}
	notifier := &recordingNotifier{}

	sched, err := NewScheduler(reportingConfig(), reports, memory.NewStore(), notifier, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, sched.RunDailyReport(context.Background()))
	require.Len(t, notifier.messages, 1)
	msg := notifier.messages[0]
	assert.Equal(t, notify.LevelWarning, msg.Level)
	assert.Contains(t, msg.Text, "Low stock (1):")
	assert.Contains(t, msg.Text, "Needs reorder: none.")
}

func TestRunDailyReportArchiveFailureStillNotifies(t *testing.T) {
	reports := &stubReports{report: models.DailyReport{Revenue: decimal.Zero, TotalRevenue: decimal.Zero}}
	notifier := &recordingNotifier{}

	sched, err := NewScheduler(reportingConfig(), reports, failingArchive{}, notifier, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, sched.RunDailyReport(context.Background()))
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, notify.LevelInfo, notifier.messages[0].Level)
}

func TestRunDailyReportErrors(t *testing.T) {
	store := memory.NewStore()

	sched, err := NewScheduler(reportingConfig(), &stubReports{err: errors.New("db down")}, store, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.ErrorContains(t, sched.RunDailyReport(context.Background()), "build daily report")
	assert.Empty(t, store.DailyReports())

	notifier := &recordingNotifier{err: errors.New("webhook 500")}
	sched, err = NewScheduler(reportingConfig(), &stubReports{}, store, notifier, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.ErrorContains(t, sched.RunDailyReport(context.Background()), "send daily report")
}

func TestSchedulerStartStop(t *testing.T) {
	sched, err := NewScheduler(reportingConfig(), &stubReports{}, memory.NewStore(), nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, sched.Start())
	sched.Stop()

	bad, err := NewScheduler(config.ReportingConfig{CronSchedule: "not a cron", Timezone: "UTC"}, &stubReports{}, memory.NewStore(), nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Error(t, bad.Start())

	_, err = NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Mars/Olympus"}, &stubReports{}, memory.NewStore(), nil, zaptest.NewLogger(t))
	assert.Error(t, err)
}
