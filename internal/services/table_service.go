package services

import (
	"context"
	"fmt"
	"strings"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
)

// --- Data Transfer Objects (DTOs) ---
type CreateTableRequest struct {
	Number   int    `json:"number" binding:"required,min=1"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Status   string `json:"status" binding:"omitempty,oneof=free occupied reserved"`
}

type UpdateTableRequest struct {
	Number   *int    `json:"number" binding:"omitempty,min=1"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1"`
	Status   *string `json:"status" binding:"omitempty,oneof=free occupied reserved"`
}

// --- TableService Interface ---
type TableService interface {
	CreateTable(ctx context.Context, req CreateTableRequest) (*models.Table, error)
	GetTable(ctx context.Context, tableID int64) (*models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	UpdateTable(ctx context.Context, tableID int64, req UpdateTableRequest) (*models.Table, error)
	SetStatus(ctx context.Context, tableID int64, status string) (*models.Table, error)
	DeleteTable(ctx context.Context, tableID int64) error
}

// --- tableService Implementation ---
type tableService struct {
	tx     repositories.TxManager
	tables repositories.TableRepository
}

// NewTableService creates a new instance of TableService.
func NewTableService(tx repositories.TxManager, tables repositories.TableRepository) TableService {
	return &tableService{tx: tx, tables: tables}
}

func parseTableStatus(status string) (models.TableStatus, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidTableStatus(status) {
		return "", NewValidationError("status", "must be one of [free occupied reserved]")
	}
	return models.TableStatus(status), nil
}

func (s *tableService) CreateTable(ctx context.Context, req CreateTableRequest) (*models.Table, error) {
	verr := &ValidationError{}
	if req.Number < 1 {
		verr.Add("number", "must be at least 1")
	}
	if req.Capacity < 1 {
		verr.Add("capacity", "must be at least 1")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	status := models.TableStatusFree
	if req.Status != "" {
		parsed, err := parseTableStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	table := &models.Table{Number: req.Number, Capacity: req.Capacity, Status: status}
	if err := s.tables.CreateTable(ctx, nil, table); err != nil {
		return nil, notFoundOr(err, ErrTableNotFound, "creating table")
	}
	return table, nil
}

func (s *tableService) GetTable(ctx context.Context, tableID int64) (*models.Table, error) {
	table, err := s.tables.GetTableByID(ctx, nil, tableID)
	if err != nil {
		return nil, notFoundOr(err, ErrTableNotFound, fmt.Sprintf("loading table %d", tableID))
	}
	return table, nil
}

func (s *tableService) ListTables(ctx context.Context) ([]models.Table, error) {
	tables, err := s.tables.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return tables, nil
}

func (s *tableService) UpdateTable(ctx context.Context, tableID int64, req UpdateTableRequest) (*models.Table, error) {
	table, err := s.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if req.Number != nil {
		if *req.Number < 1 {
			return nil, NewValidationError("number", "must be at least 1")
		}
		table.Number = *req.Number
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, NewValidationError("capacity", "must be at least 1")
		}
		table.Capacity = *req.Capacity
	}
	if req.Status != nil {
		status, err := parseTableStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		table.Status = status
	}
	if err := s.tables.UpdateTable(ctx, nil, table); err != nil {
		return nil, notFoundOr(err, ErrTableNotFound, fmt.Sprintf("updating table %d", tableID))
	}
	return table, nil
}

func (s *tableService) SetStatus(ctx context.Context, tableID int64, status string) (*models.Table, error) {
	parsed, err := parseTableStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.tables.UpdateTableStatus(ctx, nil, tableID, parsed); err != nil {
		return nil, notFoundOr(err, ErrTableNotFound, fmt.Sprintf("updating status of table %d", tableID))
	}
	return s.GetTable(ctx, tableID)
}

// DeleteTable refuses to remove a table that still has pending, preparing or served orders.
func (s *tableService) DeleteTable(ctx context.Context, tableID int64) error {
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		active, err := s.tables.CountActiveOrders(ctx, exec, tableID)
		if err != nil {
			return fmt.Errorf("counting active orders of table %d: %w", tableID, err)
		}
		if active > 0 {
			return conflictf("table %d has %d active order(s)", tableID, active)
		}
		if err := s.tables.DeleteTable(ctx, exec, tableID); err != nil {
			return notFoundOr(err, ErrTableNotFound, fmt.Sprintf("deleting table %d", tableID))
		}
		return nil
	})
}
