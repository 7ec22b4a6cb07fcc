package services

import (
	"context"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
)

// ReportService builds the back-office dashboard.
type ReportService interface {
	DashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
}

type reportService struct {
	reports  repositories.ReportRepository
	payments repositories.PaymentRepository
	now      func() time.Time
}

// NewReportService creates a new instance of ReportService.
func NewReportService(reports repositories.ReportRepository, payments repositories.PaymentRepository) ReportService {
	return &reportService{reports: reports, payments: payments, now: time.Now}
}

// DashboardSummary reports live counters and today's takings by method.
func (s *reportService) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	summary, err := s.reports.DashboardCounts(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("loading dashboard counts: %w", err)
	}
	takings, err := s.payments.PaymentStats(ctx, &dayStart, &dayEnd)
	if err != nil {
		return nil, fmt.Errorf("loading today's takings: %w", err)
	}
	if takings == nil {
		takings = []models.MethodTotal{}
	}
	summary.TakingsToday = takings
	for _, t := range takings {
		summary.TotalTakingsToday = summary.TotalTakingsToday.Add(t.Total)
	}
	return summary, nil
}
