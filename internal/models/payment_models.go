package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods, also the cash register types.
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodMobile = "mobile"
)

// NormalizePaymentMethod lower-cases a method name ("Cash" -> "cash") and
// reports whether it is one the registers know about.
func NormalizePaymentMethod(method string) (string, bool) {
	m := strings.ToLower(strings.TrimSpace(method))
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile:
		return m, true
	default:
		return m, false
	}
}

// Payment is an append-only ledger entry against an order.
type Payment struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	Method    string          `json:"method" db:"method"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CashierID *int64          `json:"cashier_id,omitempty" db:"cashier_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`

	OrderTableID    *int64          `json:"order_table_id,omitempty"`
	OrderGrandTotal decimal.Decimal `json:"order_total"`
}

// PaymentFilters narrows payment listings.
type PaymentFilters struct {
	OrderID  *int64
	Page     int
	PageSize int
}

// MethodTotal is an amount aggregated by payment method.
type MethodTotal struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

// CashRegister holds the running balance for one payment method.
type CashRegister struct {
	ID        int64           `json:"id" db:"id"`
	Type      string          `json:"type" db:"type"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
