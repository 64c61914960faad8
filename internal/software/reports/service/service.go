package service

import (
	"context"
	"strings"
	"time"

	"sivec/internal/domain/guia"
	"sivec/internal/domain/trip"
	"sivec/internal/general/logger"
	"sivec/internal/ports"
)

// Service implements ports.ReportsService over the aggregate repository.
type Service struct {
	reports ports.ReportRepository
	logger  *logger.Logger
}

// NewService wires the reports service.
func NewService(reports ports.ReportRepository, logger *logger.Logger) *Service {
	return &Service{reports: reports, logger: logger}
}

var _ ports.ReportsService = (*Service)(nil)

// BranchSummary computes the operational KPIs for one branch; an empty
// branch aggregates the whole company.
func (s *Service) BranchSummary(ctx context.Context, branch string) (ports.BranchSummary, error) {
	branch = strings.TrimSpace(branch)
	out := ports.BranchSummary{Branch: branch}

	pending, err := s.reports.CountTripsByStatus(ctx, branch, trip.StatusPending)
	if err != nil {
		return out, err
	}
	inProgress, err := s.reports.CountTripsByStatus(ctx, branch, trip.StatusInProgress)
	if err != nil {
		return out, err
	}
	completedToday, err := s.reports.CountTripsCompletedOn(ctx, branch, time.Now().Format("2006-01-02"))
	if err != nil {
		return out, err
	}
	delivered, notDelivered, pendingNotes, err := s.reports.NoteCountersByBranch(ctx, branch)
	if err != nil {
		return out, err
	}

	p := guia.Progress{
		Total:        delivered + notDelivered + pendingNotes,
		Delivered:    delivered,
		NotDelivered: notDelivered,
		Finalized:    delivered + notDelivered,
		Pending:      pendingNotes,
	}

	out.PendingTrips = pending
	out.TripsInProgress = inProgress
	out.TripsCompletedToday = completedToday
	out.NotesDelivered = delivered
	out.NotesNotDelivered = notDelivered
	out.NotesPending = pendingNotes
	out.SuccessRate = p.SuccessRate()

	return out, nil
}
