package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	CreateUser(ctx context.Context, exec SQLExecutor, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error) // PasswordHash populated
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// authRepository implements the AuthRepository interface.
type authRepository struct {
	db *sql.DB // The direct database connection pool
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreateUser inserts a new staff account. Emails are stored lower-cased.
func (r *authRepository) CreateUser(ctx context.Context, exec SQLExecutor, user *models.User) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	currentTime := time.Now()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt, user.UpdatedAt = currentTime, currentTime

	err := exec.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, currentTime, currentTime,
	).Scan(&user.ID)
	return wrapDBError(err, "creating user")
}

const userColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(s scanner, u *models.User) error {
	return s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

func (r *authRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))), user); err != nil {
		return nil, wrapDBError(err, "finding user by email")
	}
	return user, nil
}

func (r *authRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(r.db.QueryRowContext(ctx, query, userID), user); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("finding user by ID %d", userID))
	}
	return user, nil
}
