package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/lib/pq"
)

// CatalogRepository defines database operations for categories, products and
// the product pivots.
type CatalogRepository interface {
	// Category methods
	CreateCategory(ctx context.Context, exec SQLExecutor, category *models.Category) error
	GetCategoryByID(ctx context.Context, categoryID int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, exec SQLExecutor, category *models.Category) error
	DeleteCategory(ctx context.Context, exec SQLExecutor, categoryID int64) error
	CountProductsInCategory(ctx context.Context, exec SQLExecutor, categoryID int64) (int, error)

	// Product methods. GetProductByID reads outside any transaction when exec is nil.
	CreateProduct(ctx context.Context, exec SQLExecutor, product *models.Product) error
	GetProductByID(ctx context.Context, exec SQLExecutor, productID int64) (*models.Product, error)
	ListProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, exec SQLExecutor, product *models.Product) error
	DeleteProduct(ctx context.Context, exec SQLExecutor, productID int64) error

	// Pivot methods
	ReplaceProductSupplements(ctx context.Context, exec SQLExecutor, productID int64, supplements []models.ProductSupplement) error
	ReplaceProductAccompaniments(ctx context.Context, exec SQLExecutor, productID int64, accompaniments []models.ProductAccompaniment) error
	GetProductSupplements(ctx context.Context, productIDs []int64) (map[int64][]models.ProductSupplement, error)
	GetProductAccompaniments(ctx context.Context, productIDs []int64) (map[int64][]models.ProductAccompaniment, error)
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// --- Category Methods ---

func (r *catalogRepository) CreateCategory(ctx context.Context, exec SQLExecutor, category *models.Category) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO categories (name, description, type, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	now := time.Now()
	category.CreatedAt, category.UpdatedAt = now, now
	err := exec.QueryRowContext(ctx, query,
		category.Name, category.Description, category.Type, category.IsActive, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID)
	return wrapDBError(err, "creating category")
}

func scanCategory(s scanner, c *models.Category) error {
	return s.Scan(&c.ID, &c.Name, &c.Description, &c.Type, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

const categoryColumns = `id, name, description, type, is_active, created_at, updated_at`

func (r *catalogRepository) GetCategoryByID(ctx context.Context, categoryID int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	if err := scanCategory(r.db.QueryRowContext(ctx, query, categoryID), category); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting category by ID %d", categoryID))
	}
	return category, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError(err, "querying categories")
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, wrapDBError(err, "scanning category")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating category rows")
	}
	return categories, nil
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, exec SQLExecutor, category *models.Category) error {
	exec = orDB(exec, r.db)
	query := `UPDATE categories SET name = $1, description = $2, type = $3, is_active = $4, updated_at = $5
	          WHERE id = $6`
	category.UpdatedAt = time.Now()
	result, err := exec.ExecContext(ctx, query,
		category.Name, category.Description, category.Type, category.IsActive, category.UpdatedAt, category.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating category ID %d", category.ID))
	}
	return expectAffected(result, fmt.Sprintf("category update ID %d", category.ID))
}

func (r *catalogRepository) DeleteCategory(ctx context.Context, exec SQLExecutor, categoryID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting category ID %d", categoryID))
	}
	return expectAffected(result, fmt.Sprintf("category delete ID %d", categoryID))
}

func (r *catalogRepository) CountProductsInCategory(ctx context.Context, exec SQLExecutor, categoryID int64) (int, error) {
	exec = orDB(exec, r.db)
	var count int
	err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, wrapDBError(err, fmt.Sprintf("counting products of category ID %d", categoryID))
	}
	return count, nil
}

// --- Product Methods ---

const productColumns = `p.id, p.name, p.price, p.type, p.category_id, p.preparing_time, p.is_active, p.image_url,
                        p.created_at, p.updated_at, COALESCE(c.name, '')`

func scanProduct(s scanner, p *models.Product) error {
	return s.Scan(&p.ID, &p.Name, &p.Price, &p.Type, &p.CategoryID, &p.PreparingTime, &p.IsActive, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt, &p.CategoryName)
}

func (r *catalogRepository) CreateProduct(ctx context.Context, exec SQLExecutor, product *models.Product) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO products
	            (name, price, type, category_id, preparing_time, is_active, image_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	err := exec.QueryRowContext(ctx, query,
		product.Name, product.Price, product.Type, product.CategoryID, product.PreparingTime, product.IsActive,
		product.ImageURL, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	return wrapDBError(err, "creating product")
}

func (r *catalogRepository) GetProductByID(ctx context.Context, exec SQLExecutor, productID int64) (*models.Product, error) {
	exec = orDB(exec, r.db)
	product := &models.Product{}
	query := `SELECT ` + productColumns + `
	          FROM products p
	          LEFT JOIN categories c ON c.id = p.category_id
	          WHERE p.id = $1`
	if err := scanProduct(exec.QueryRowContext(ctx, query, productID), product); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting product by ID %d", productID))
	}
	return product, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + productColumns + `
	          FROM products p
	          LEFT JOIN categories c ON c.id = p.category_id`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argCounter))
		args = append(args, *filters.CategoryID)
		argCounter++
	}
	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("p.type = $%d", argCounter))
		args = append(args, *filters.Type)
		argCounter++
	}
	if filters.ActiveOnly {
		conditions = append(conditions, "p.is_active = TRUE")
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", argCounter))
		args = append(args, "%"+filters.Search+"%")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY p.name ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, wrapDBError(err, "querying products")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, wrapDBError(err, "scanning product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating product rows")
	}
	return products, nil
}

func (r *catalogRepository) UpdateProduct(ctx context.Context, exec SQLExecutor, product *models.Product) error {
	exec = orDB(exec, r.db)
	query := `UPDATE products
	          SET name = $1, price = $2, type = $3, category_id = $4, preparing_time = $5, is_active = $6,
	              image_url = $7, updated_at = $8
	          WHERE id = $9`
	product.UpdatedAt = time.Now()
	result, err := exec.ExecContext(ctx, query,
		product.Name, product.Price, product.Type, product.CategoryID, product.PreparingTime, product.IsActive,
		product.ImageURL, product.UpdatedAt, product.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating product ID %d", product.ID))
	}
	return expectAffected(result, fmt.Sprintf("product update ID %d", product.ID))
}

func (r *catalogRepository) DeleteProduct(ctx context.Context, exec SQLExecutor, productID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting product ID %d", productID))
	}
	return expectAffected(result, fmt.Sprintf("product delete ID %d", productID))
}

// --- Pivot Methods ---

func (r *catalogRepository) ReplaceProductSupplements(ctx context.Context, exec SQLExecutor, productID int64, supplements []models.ProductSupplement) error {
	exec = orDB(exec, r.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM product_supplement WHERE product_id = $1`, productID); err != nil {
		return wrapDBError(err, fmt.Sprintf("clearing supplements of product ID %d", productID))
	}
	query := `INSERT INTO product_supplement (product_id, supplement_id, quantity, extra_price) VALUES ($1, $2, $3, $4)`
	for _, s := range supplements {
		if _, err := exec.ExecContext(ctx, query, productID, s.SupplementID, s.Quantity, s.ExtraPrice); err != nil {
			return wrapDBError(err, fmt.Sprintf("attaching supplement %d to product ID %d", s.SupplementID, productID))
		}
	}
	return nil
}

func (r *catalogRepository) ReplaceProductAccompaniments(ctx context.Context, exec SQLExecutor, productID int64, accompaniments []models.ProductAccompaniment) error {
	exec = orDB(exec, r.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM accompaniment_product WHERE product_id = $1`, productID); err != nil {
		return wrapDBError(err, fmt.Sprintf("clearing accompaniments of product ID %d", productID))
	}
	query := `INSERT INTO accompaniment_product (product_id, accompaniment_id, is_default) VALUES ($1, $2, $3)`
	for _, a := range accompaniments {
		if _, err := exec.ExecContext(ctx, query, productID, a.AccompanimentID, a.IsDefault); err != nil {
			return wrapDBError(err, fmt.Sprintf("attaching accompaniment %d to product ID %d", a.AccompanimentID, productID))
		}
	}
	return nil
}

func (r *catalogRepository) GetProductSupplements(ctx context.Context, productIDs []int64) (map[int64][]models.ProductSupplement, error) {
	result := make(map[int64][]models.ProductSupplement)
	if len(productIDs) == 0 {
		return result, nil
	}
	query := `SELECT ps.product_id, ps.supplement_id, s.name, ps.quantity, ps.extra_price
	          FROM product_supplement ps
	          JOIN supplements s ON s.id = ps.supplement_id
	          WHERE ps.product_id = ANY($1)
	          ORDER BY s.name`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, wrapDBError(err, "querying product supplements")
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var s models.ProductSupplement
		if err := rows.Scan(&productID, &s.SupplementID, &s.Name, &s.Quantity, &s.ExtraPrice); err != nil {
			return nil, wrapDBError(err, "scanning product supplement")
		}
		result[productID] = append(result[productID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating product supplement rows")
	}
	return result, nil
}

func (r *catalogRepository) GetProductAccompaniments(ctx context.Context, productIDs []int64) (map[int64][]models.ProductAccompaniment, error) {
	result := make(map[int64][]models.ProductAccompaniment)
	if len(productIDs) == 0 {
		return result, nil
	}
	query := `SELECT ap.product_id, ap.accompaniment_id, a.name, a.max_free, a.price, ap.is_default
	          FROM accompaniment_product ap
	          JOIN accompaniments a ON a.id = ap.accompaniment_id
	          WHERE ap.product_id = ANY($1)
	          ORDER BY a.name`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, wrapDBError(err, "querying product accompaniments")
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var a models.ProductAccompaniment
		if err := rows.Scan(&productID, &a.AccompanimentID, &a.Name, &a.MaxFree, &a.Price, &a.IsDefault); err != nil {
			return nil, wrapDBError(err, "scanning product accompaniment")
		}
		result[productID] = append(result[productID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating product accompaniment rows")
	}
	return result, nil
}
