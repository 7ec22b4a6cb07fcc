package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/broadcast"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the body of POST /payments/{orderId}/orders.
type PaymentRequest struct {
	Moyen  string           `json:"moyen" binding:"required"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// PaymentResult reports the settlement state after a payment.
type PaymentResult struct {
	Message   string          `json:"message"`
	Status    string          `json:"status"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// PaymentPage is a page of ledger entries.
type PaymentPage struct {
	Payments []models.Payment `json:"data"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// PaymentStats aggregates takings by method over a period.
type PaymentStats struct {
	From    *string              `json:"start_date,omitempty"`
	To      *string              `json:"end_date,omitempty"`
	Methods []models.MethodTotal `json:"methods"`
	Total   decimal.Decimal      `json:"total"`
}

const defaultPaymentPageSize = 20

// --- PaymentService Interface ---
type PaymentService interface {
	RecordPayment(ctx context.Context, principal Principal, orderID int64, req PaymentRequest) (*PaymentResult, error)
	ListPayments(ctx context.Context, page, perPage int) (*PaymentPage, error)
	PaymentsForOrder(ctx context.Context, orderID int64, page, perPage int) (*PaymentPage, error)
	Stats(ctx context.Context, startDate, endDate string) (*PaymentStats, error)
	CashRegisters(ctx context.Context) ([]models.CashRegister, error)
}

type paymentService struct {
	tx       repositories.TxManager
	orders   repositories.OrderRepository
	payments repositories.PaymentRepository
	tables   repositories.TableRepository
	outbox   repositories.OutboxRepository
	now      func() time.Time
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(tx repositories.TxManager, orders repositories.OrderRepository, payments repositories.PaymentRepository,
	tables repositories.TableRepository, outbox repositories.OutboxRepository) PaymentService {
	return &paymentService{tx: tx, orders: orders, payments: payments, tables: tables, outbox: outbox, now: time.Now}
}

func validatePaymentRequest(req PaymentRequest) (string, decimal.Decimal, error) {
	verr := &ValidationError{}
	method, ok := models.NormalizePaymentMethod(req.Moyen)
	if !ok {
		verr.Add("moyen", "must be one of [Cash Card Mobile]")
	}
	var amount decimal.Decimal
	if req.Amount == nil {
		verr.Add("amount", "is required")
	} else {
		verr.AddMoney("amount", *req.Amount, true)
		amount = *req.Amount
	}
	return method, amount, verr.OrNil()
}

// RecordPayment appends a payment and settles the order once the ledger covers
// its grand total. Settlement re-applies every method's full-history sum to the
// cash registers, so a further payment on a settled order counts earlier ones again.
func (s *paymentService) RecordPayment(ctx context.Context, principal Principal, orderID int64, req PaymentRequest) (*PaymentResult, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	method, amount, err := validatePaymentRequest(req)
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{Message: "Paiement enregistré"}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order, err := s.orders.LockOrder(ctx, exec, orderID)
		if err != nil {
			return notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("locking order %d", orderID))
		}
		if order.Status == models.OrderStatusCancelled {
			return conflictf("order %d is cancelled and cannot take payments", order.ID)
		}
		wasSettled := order.StatusPayment == models.PaymentStatusPaid

		cashierID := principal.UserID
		payment := &models.Payment{
			OrderID:   order.ID,
			Method:    method,
			Amount:    amount,
			CashierID: &cashierID,
			CreatedAt: s.now(),
		}
		if err := s.payments.CreatePayment(ctx, exec, payment); err != nil {
			return fmt.Errorf("recording payment: %w", err)
		}

		totalPaid, err := s.payments.SumPayments(ctx, exec, order.ID)
		if err != nil {
			return err
		}

		if totalPaid.GreaterThanOrEqual(order.GrandTotal) {
			order.StatusPayment = models.PaymentStatusPaid
			order.CashierID = &cashierID
			if order.Status != models.OrderStatusCancelled {
				order.Status = models.OrderStatusPaid
			}
			byMethod, err := s.payments.SumPaymentsByMethod(ctx, exec, order.ID)
			if err != nil {
				return err
			}
			for _, row := range byMethod {
				if err := s.payments.IncrementCashRegister(ctx, exec, row.Method, row.Total); err != nil {
					return fmt.Errorf("crediting %s register: %w", row.Method, err)
				}
			}
			if wasSettled {
				utils.LogWarn("Payment on an already settled order re-applied full ledger to cash registers", map[string]interface{}{
					"order_id":   order.ID,
					"total_paid": totalPaid.String(),
				})
			}
		} else {
			order.StatusPayment = models.PaymentStatusPartial
		}

		if err := s.orders.UpdateOrder(ctx, exec, order); err != nil {
			return fmt.Errorf("updating order %d: %w", order.ID, err)
		}

		// The table is released on partial payments as well.
		if order.TableID != nil {
			if err := s.tables.UpdateTableStatus(ctx, exec, *order.TableID, models.TableStatusFree); err != nil && !isNotFound(err) {
				return fmt.Errorf("releasing table %d: %w", *order.TableID, err)
			}
		}

		if err := enqueueBroadcast(ctx, exec, s.outbox, broadcast.GlobalChannel, broadcast.EventOrderUpdated, OrderUpdatedPayload{
			OrderID:       order.ID,
			Status:        order.Status,
			StatusPayment: order.StatusPayment,
		}); err != nil {
			return err
		}

		result.Status = order.StatusPayment
		result.TotalPaid = totalPaid
		result.Remaining = decimal.Max(order.GrandTotal.Sub(totalPaid), decimal.Zero)
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Payment recorded", map[string]interface{}{
		"order_id":   orderID,
		"method":     method,
		"amount":     amount.String(),
		"status":     result.Status,
		"cashier_id": principal.UserID,
	})
	return result, nil
}

func (s *paymentService) listPayments(ctx context.Context, filters models.PaymentFilters) (*PaymentPage, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultPaymentPageSize
	}
	payments, total, err := s.payments.ListPayments(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return &PaymentPage{Payments: payments, Total: total, Page: filters.Page, PerPage: filters.PageSize}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, page, perPage int) (*PaymentPage, error) {
	return s.listPayments(ctx, models.PaymentFilters{Page: page, PageSize: perPage})
}

func (s *paymentService) PaymentsForOrder(ctx context.Context, orderID int64, page, perPage int) (*PaymentPage, error) {
	if _, err := s.orders.GetOrderByID(ctx, nil, orderID); err != nil {
		return nil, notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("loading order %d", orderID))
	}
	return s.listPayments(ctx, models.PaymentFilters{OrderID: &orderID, Page: page, PageSize: perPage})
}

// Stats groups payments by method. The period only applies when both dates
// are given; the end date is inclusive.
func (s *paymentService) Stats(ctx context.Context, startDate, endDate string) (*PaymentStats, error) {
	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)
	stats := &PaymentStats{}
	var from, to *time.Time
	if startDate != "" && endDate != "" {
		loc := s.now().Location()
		verr := &ValidationError{}
		start, err := time.ParseInLocation("2006-01-02", startDate, loc)
		if err != nil {
			verr.Add("start_date", "must be a date in YYYY-MM-DD format")
		}
		end, err := time.ParseInLocation("2006-01-02", endDate, loc)
		if err != nil {
			verr.Add("end_date", "must be a date in YYYY-MM-DD format")
		}
		if err := verr.OrNil(); err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, NewValidationError("end_date", "must not be before start_date")
		}
		endExclusive := end.AddDate(0, 0, 1)
		from, to = &start, &endExclusive
		stats.From, stats.To = &startDate, &endDate
	}

	methods, err := s.payments.PaymentStats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading payment stats: %w", err)
	}
	if methods == nil {
		methods = []models.MethodTotal{}
	}
	stats.Methods = methods
	for _, m := range methods {
		stats.Total = stats.Total.Add(m.Total)
	}
	return stats, nil
}

func (s *paymentService) CashRegisters(ctx context.Context) ([]models.CashRegister, error) {
	registers, err := s.payments.ListCashRegisters(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cash registers: %w", err)
	}
	if registers == nil {
		registers = []models.CashRegister{}
	}
	return registers, nil
}
