package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// Maintenance runs periodic housekeeping on the row store.
type Maintenance struct {
	cron   *cron.Cron
	purger TokenPurger
	logger *logrus.Logger
}

func NewMaintenance(purger TokenPurger, logger *logrus.Logger) *Maintenance {
	return &Maintenance{
		cron:   cron.New(),
		purger: purger,
		logger: logger,
	}
}

// Start schedules the jobs on spec (standard 5-field cron syntax).
func (m *Maintenance) Start(spec string) error {
	if _, err := m.cron.AddFunc(spec, func() {
		_, _ = m.PurgeExpiredTokens(context.Background())
	}); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// PurgeExpiredTokens drops revoked tokens past their expiry.
func (m *Maintenance) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	m.logger.Infof("[%s] Start scheduled task PurgeExpiredTokens", "scheduled task")
	startTime := time.Now()

	n, err := m.purger.PurgeExpiredTokens(ctx, startTime)
	if err != nil {
		m.logger.Warnf("[%s] PurgeExpiredTokens error, %s", "scheduled task", err)
		return 0, err
	}

	m.logger.Infof("[%s] Finished scheduled task PurgeExpiredTokens, %d token(s) removed in %v", "scheduled task", n, time.Since(startTime))
	return n, nil
}

// Stop halts the scheduler; the returned context is done when running jobs finish.
func (m *Maintenance) Stop() context.Context {
	return m.cron.Stop()
}
