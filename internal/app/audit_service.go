package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"idetude/internal/domain/assignment"
	"idetude/internal/domain/competency"

	"github.com/sirupsen/logrus"
)

// AuditReport lists the inconsistencies found by one audit run.
type AuditReport struct {
	StatesChecked int
	BrokenChains  []*competency.ChainError
	MainConflicts []string // "class/year" keys with more than one main teacher
}

func (r *AuditReport) Clean() bool { return len(r.BrokenChains) == 0 && len(r.MainConflicts) == 0 }

// AuditService checks the stored data against the registry and ledger invariants. It
// only reports; nothing is repaired automatically.
type AuditService struct {
	competencies competency.Repository
	assignments  assignment.Repository
	notifier     Notifier
	logger       *logrus.Entry
}

func NewAuditService(cr competency.Repository, ar assignment.Repository, notifier Notifier, logger *logrus.Entry) *AuditService {
	return &AuditService{competencies: cr, assignments: ar, notifier: notifier, logger: logger}
}

func (s *AuditService) Run(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{}

	states, err := s.competencies.ListStates(ctx)
	if err != nil {
		return nil, classify("list student competencies", err)
	}
	for _, st := range states {
		entries, err := s.competencies.ListHistory(ctx, st.ID)
		if err != nil {
			return nil, classify("list history", err)
		}
		report.StatesChecked++
		if err := competency.VerifyChain(st, entries); err != nil {
			var chainErr *competency.ChainError
			if errors.As(err, &chainErr) {
				report.BrokenChains = append(report.BrokenChains, chainErr)
				s.logger.WithError(err).Warn("Broken competency history")
			}
		}
	}

	all, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, classify("list assignments", err)
	}
	mains := make(map[string]int)
	for _, a := range all {
		if a.IsMainTeacher {
			mains[fmt.Sprintf("%d/%s", a.ClassID, a.SchoolYear)]++
		}
	}
	for key, n := range mains {
		if n > 1 {
			report.MainConflicts = append(report.MainConflicts, key)
			s.logger.WithField("class_year", key).Warn("Class has more than one main teacher")
		}
	}
	sort.Strings(report.MainConflicts)

	if !report.Clean() {
		s.notifier.NotifyAdmin(ctx, formatAuditReport(report))
	}
	return report, nil
}

func formatAuditReport(r *AuditReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Audit: %d évaluations vérifiées.\n", r.StatesChecked)
	if len(r.BrokenChains) > 0 {
		fmt.Fprintf(&b, "%d historiques incohérents:\n", len(r.BrokenChains))
		for _, ce := range r.BrokenChains {
			fmt.Fprintf(&b, " - %s\n", ce.Error())
		}
	}
	if len(r.MainConflicts) > 0 {
		fmt.Fprintf(&b, "Classes avec plusieurs professeurs principaux: %s\n", strings.Join(r.MainConflicts, ", "))
	}
	return b.String()
}
