package scheduler

import (
	"context"
	"fmt"
	"time"

	"idetude/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const auditTimeout = 10 * time.Minute

// Auditor is implemented by app.AuditService.
type Auditor interface {
	Run(ctx context.Context) (*app.AuditReport, error)
}

// LedgerAuditScheduler runs the ledger audit on a cron schedule.
type LedgerAuditScheduler struct {
	cronEngine *cron.Cron
	auditor    Auditor
	logger     *logrus.Entry
	cronSpec   string
}

func NewLedgerAuditScheduler(auditor Auditor, logger *logrus.Entry, cronSpec string) *LedgerAuditScheduler {
	return &LedgerAuditScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		auditor:    auditor,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

func (s *LedgerAuditScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.runAudit); err != nil {
		return fmt.Errorf("could not add ledger audit cron job %q: %w", s.cronSpec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Ledger audit scheduler started")
	return nil
}

func (s *LedgerAuditScheduler) runAudit() {
	s.logger.Info("Cron job triggered for ledger audit")
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	started := time.Now()
	report, err := s.auditor.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ledger audit failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"states_checked": report.StatesChecked,
		"broken_chains":  len(report.BrokenChains),
		"main_conflicts": len(report.MainConflicts),
		"duration":       time.Since(started).String(),
	}).Info("Ledger audit finished")
}

// Stop waits for a running audit to finish.
func (s *LedgerAuditScheduler) Stop() {
	s.logger.Info("Stopping ledger audit scheduler...")
	<-s.cronEngine.Stop().Done()
	s.logger.Info("Ledger audit scheduler stopped")
}
