package repositories

import (
	"context"
	"database/sql"
	"time"

	"resto_pos_backend/internal/models"
)

// ReportRepository computes read-only dashboard figures.
type ReportRepository interface {
	DashboardCounts(ctx context.Context, dayStart, dayEnd time.Time) (*models.DashboardSummary, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// DashboardCounts fills the count fields of the summary; takings are added by the caller.
func (r *reportRepository) DashboardCounts(ctx context.Context, dayStart, dayEnd time.Time) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}
	query := `
        SELECT
            (SELECT COUNT(*) FROM orders WHERE status IN ('pending', 'preparing', 'served')),
            (SELECT COUNT(*) FROM orders WHERE status = 'pending'),
            (SELECT COUNT(*) FROM tables WHERE status = 'free'),
            (SELECT COUNT(*) FROM tables WHERE status = 'occupied'),
            (SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2)`
	err := r.db.QueryRowContext(ctx, query, dayStart, dayEnd).Scan(
		&summary.ActiveOrdersCount, &summary.PendingOrdersCount,
		&summary.FreeTablesCount, &summary.OccupiedTablesCount, &summary.OrdersToday,
	)
	if err != nil {
		return nil, wrapDBError(err, "computing dashboard counts")
	}
	return summary, nil
}
