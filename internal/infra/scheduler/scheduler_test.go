package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"

	"idetude/internal/app"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditor struct {
	calls int
	err   error
}

func (f *fakeAuditor) Run(context.Context) (*app.AuditReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &app.AuditReport{StatesChecked: 3}, nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := NewLedgerAuditScheduler(&fakeAuditor{}, quietLogger(), "not a cron spec")
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewLedgerAuditScheduler(&fakeAuditor{}, quietLogger(), "0 3 * * *")
	require.NoError(t, s.Start())
	s.Stop()
}

func TestRunAuditSurvivesFailures(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("db down")}
	s := NewLedgerAuditScheduler(auditor, quietLogger(), "0 3 * * *")
	s.runAudit()
	auditor.err = nil
	s.runAudit()
	assert.Equal(t, 2, auditor.calls)
}

func TestRunAuditLogsOneSummary(t *testing.T) {
	l, hook := logtest.NewNullLogger()
	s := NewLedgerAuditScheduler(&fakeAuditor{}, logrus.NewEntry(l), "0 3 * * *")
	s.runAudit()

	finished := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "Ledger audit finished" {
			finished++
			assert.Equal(t, 3, e.Data["states_checked"])
			assert.Contains(t, e.Data, "duration")
		}
	}
	assert.Equal(t, 1, finished)
}
