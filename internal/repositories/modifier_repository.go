package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
)

// ModifierRepository covers supplements and accompaniments. Lookups read
// outside any transaction when exec is nil.
type ModifierRepository interface {
	CreateSupplement(ctx context.Context, exec SQLExecutor, supplement *models.Supplement) error
	GetSupplementByID(ctx context.Context, exec SQLExecutor, supplementID int64) (*models.Supplement, error)
	ListSupplements(ctx context.Context) ([]models.Supplement, error)
	UpdateSupplement(ctx context.Context, exec SQLExecutor, supplement *models.Supplement) error
	DeleteSupplement(ctx context.Context, exec SQLExecutor, supplementID int64) error

	CreateAccompaniment(ctx context.Context, exec SQLExecutor, accompaniment *models.Accompaniment) error
	GetAccompanimentByID(ctx context.Context, exec SQLExecutor, accompanimentID int64) (*models.Accompaniment, error)
	ListAccompaniments(ctx context.Context, activeOnly bool) ([]models.Accompaniment, error)
	UpdateAccompaniment(ctx context.Context, exec SQLExecutor, accompaniment *models.Accompaniment) error
	DeleteAccompaniment(ctx context.Context, exec SQLExecutor, accompanimentID int64) error
}

type modifierRepository struct {
	db *sql.DB
}

// NewModifierRepository creates a new instance of ModifierRepository.
func NewModifierRepository(db *sql.DB) ModifierRepository {
	return &modifierRepository{db: db}
}

// --- Supplement Methods ---

func (r *modifierRepository) CreateSupplement(ctx context.Context, exec SQLExecutor, supplement *models.Supplement) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO supplements (name, price, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	now := time.Now()
	supplement.CreatedAt, supplement.UpdatedAt = now, now
	err := exec.QueryRowContext(ctx, query, supplement.Name, supplement.Price, now, now).Scan(&supplement.ID)
	return wrapDBError(err, "creating supplement")
}

func (r *modifierRepository) GetSupplementByID(ctx context.Context, exec SQLExecutor, supplementID int64) (*models.Supplement, error) {
	s := &models.Supplement{}
	query := `SELECT id, name, price, created_at, updated_at FROM supplements WHERE id = $1`
	err := orDB(exec, r.db).QueryRowContext(ctx, query, supplementID).Scan(&s.ID, &s.Name, &s.Price, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting supplement by ID %d", supplementID))
	}
	return s, nil
}

func (r *modifierRepository) ListSupplements(ctx context.Context) ([]models.Supplement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, price, created_at, updated_at FROM supplements ORDER BY name`)
	if err != nil {
		return nil, wrapDBError(err, "querying supplements")
	}
	defer rows.Close()

	supplements := []models.Supplement{}
	for rows.Next() {
		var s models.Supplement
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, wrapDBError(err, "scanning supplement")
		}
		supplements = append(supplements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating supplement rows")
	}
	return supplements, nil
}

func (r *modifierRepository) UpdateSupplement(ctx context.Context, exec SQLExecutor, supplement *models.Supplement) error {
	exec = orDB(exec, r.db)
	supplement.UpdatedAt = time.Now()
	result, err := exec.ExecContext(ctx, `UPDATE supplements SET name = $1, price = $2, updated_at = $3 WHERE id = $4`,
		supplement.Name, supplement.Price, supplement.UpdatedAt, supplement.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating supplement ID %d", supplement.ID))
	}
	return expectAffected(result, fmt.Sprintf("supplement update ID %d", supplement.ID))
}

func (r *modifierRepository) DeleteSupplement(ctx context.Context, exec SQLExecutor, supplementID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM supplements WHERE id = $1`, supplementID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting supplement ID %d", supplementID))
	}
	return expectAffected(result, fmt.Sprintf("supplement delete ID %d", supplementID))
}

// --- Accompaniment Methods ---

const accompanimentColumns = `id, name, max_free, price, is_active, created_at, updated_at`

func scanAccompaniment(s scanner, a *models.Accompaniment) error {
	return s.Scan(&a.ID, &a.Name, &a.MaxFree, &a.Price, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
}

func (r *modifierRepository) CreateAccompaniment(ctx context.Context, exec SQLExecutor, accompaniment *models.Accompaniment) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO accompaniments (name, max_free, price, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	now := time.Now()
	accompaniment.CreatedAt, accompaniment.UpdatedAt = now, now
	err := exec.QueryRowContext(ctx, query,
		accompaniment.Name, accompaniment.MaxFree, accompaniment.Price, accompaniment.IsActive, now, now,
	).Scan(&accompaniment.ID)
	return wrapDBError(err, "creating accompaniment")
}

func (r *modifierRepository) GetAccompanimentByID(ctx context.Context, exec SQLExecutor, accompanimentID int64) (*models.Accompaniment, error) {
	a := &models.Accompaniment{}
	query := `SELECT ` + accompanimentColumns + ` FROM accompaniments WHERE id = $1`
	if err := scanAccompaniment(orDB(exec, r.db).QueryRowContext(ctx, query, accompanimentID), a); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting accompaniment by ID %d", accompanimentID))
	}
	return a, nil
}

func (r *modifierRepository) ListAccompaniments(ctx context.Context, activeOnly bool) ([]models.Accompaniment, error) {
	query := `SELECT ` + accompanimentColumns + ` FROM accompaniments`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError(err, "querying accompaniments")
	}
	defer rows.Close()

	accompaniments := []models.Accompaniment{}
	for rows.Next() {
		var a models.Accompaniment
		if err := scanAccompaniment(rows, &a); err != nil {
			return nil, wrapDBError(err, "scanning accompaniment")
		}
		accompaniments = append(accompaniments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating accompaniment rows")
	}
	return accompaniments, nil
}

func (r *modifierRepository) UpdateAccompaniment(ctx context.Context, exec SQLExecutor, accompaniment *models.Accompaniment) error {
	exec = orDB(exec, r.db)
	query := `UPDATE accompaniments SET name = $1, max_free = $2, price = $3, is_active = $4, updated_at = $5
	          WHERE id = $6`
	accompaniment.UpdatedAt = time.Now()
	result, err := exec.ExecContext(ctx, query,
		accompaniment.Name, accompaniment.MaxFree, accompaniment.Price, accompaniment.IsActive, accompaniment.UpdatedAt, accompaniment.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating accompaniment ID %d", accompaniment.ID))
	}
	return expectAffected(result, fmt.Sprintf("accompaniment update ID %d", accompaniment.ID))
}

func (r *modifierRepository) DeleteAccompaniment(ctx context.Context, exec SQLExecutor, accompanimentID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM accompaniments WHERE id = $1`, accompanimentID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting accompaniment ID %d", accompanimentID))
	}
	return expectAffected(result, fmt.Sprintf("accompaniment delete ID %d", accompanimentID))
}
