package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, wrapDBError(nil, "noop"))
	assert.ErrorIs(t, wrapDBError(sql.ErrNoRows, "get"), ErrNotFound)

	dup := &pq.Error{Code: "23505", Constraint: "categories_name_key"}
	err := wrapDBError(fmt.Errorf("exec: %w", dup), "creating category")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "categories_name_key")

	fk := &pq.Error{Code: "23503", Constraint: "products_category_id_fkey"}
	assert.ErrorIs(t, wrapDBError(fk, "deleting category"), ErrForeignKey)

	other := wrapDBError(errors.New("connection reset"), "listing")
	assert.ErrorIs(t, other, ErrDatabaseError)
	assert.NotErrorIs(t, other, ErrNotFound)
}

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

func TestExpectAffected(t *testing.T) {
	assert.ErrorIs(t, expectAffected(fakeResult{rows: 0}, "update"), ErrNotFound)
	assert.NoError(t, expectAffected(fakeResult{rows: 1}, "update"))
}
