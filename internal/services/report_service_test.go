package services

import (
	"context"
	"testing"

	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary(t *testing.T) {
	store := newMemStore()
	table := store.seedTable(1)
	store.seedTable(2)
	order := seedOrderTotal(store, "30.00", &table.ID)
	store.payments = []models.Payment{
		{OrderID: order.ID, Method: "cash", Amount: d("10"), CreatedAt: fixedClock()},
		{OrderID: order.ID, Method: "card", Amount: d("20"), CreatedAt: fixedClock().AddDate(0, 0, -1)},
	}
	svc := NewReportService(store, store).(*reportService)
	svc.now = fixedClock

	summary, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ActiveOrdersCount)
	assert.Equal(t, 1, summary.FreeTablesCount)
	assert.Equal(t, 1, summary.OccupiedTablesCount)
	assert.Equal(t, 1, summary.OrdersToday)
	require.Len(t, summary.TakingsToday, 1)
	assert.Equal(t, "cash", summary.TakingsToday[0].Method)
	assert.True(t, d("10").Equal(summary.TotalTakingsToday))
}
