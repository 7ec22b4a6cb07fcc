package models

import "github.com/shopspring/decimal"

// DashboardSummary holds key metrics for the dashboard.
type DashboardSummary struct {
	ActiveOrdersCount   int             `json:"active_orders_count"`
	PendingOrdersCount  int             `json:"pending_orders_count"`
	FreeTablesCount     int             `json:"free_tables_count"`
	OccupiedTablesCount int             `json:"occupied_tables_count"`
	OrdersToday         int             `json:"orders_today"`
	TakingsToday        []MethodTotal   `json:"takings_today"`
	TotalTakingsToday   decimal.Decimal `json:"total_takings_today"`
}
