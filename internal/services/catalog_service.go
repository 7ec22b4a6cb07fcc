package services

import (
	"context"
	"fmt"
	"strings"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// --- Category DTOs ---
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	Type        string  `json:"type" binding:"required,oneof=food drink dessert other"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Type        *string `json:"type" binding:"omitempty,oneof=food drink dessert other"`
	IsActive    *bool   `json:"is_active"`
}

// --- Product DTOs ---

// ProductSupplementRequest links a supplement to a product with its default pricing.
type ProductSupplementRequest struct {
	SupplementID int64            `json:"supplement_id" binding:"required"`
	Quantity     *int             `json:"quantity" binding:"omitempty,min=1"`
	ExtraPrice   *decimal.Decimal `json:"extra_price"`
}

// ProductAccompanimentRequest links an accompaniment to a product.
type ProductAccompanimentRequest struct {
	AccompanimentID int64 `json:"accompaniment_id" binding:"required"`
	IsDefault       bool  `json:"is_default"`
}

type CreateProductRequest struct {
	Name           string                        `json:"name" binding:"required,max=255"`
	Price          decimal.Decimal               `json:"price"`
	Type           string                        `json:"type" binding:"required,oneof=food drink dessert other"`
	CategoryID     int64                         `json:"category_id" binding:"required"`
	PreparingTime  int                           `json:"preparing_time" binding:"min=0"`
	IsActive       *bool                         `json:"is_active"`
	ImageURL       *string                       `json:"image_url"`
	Supplements    []ProductSupplementRequest    `json:"supplements" binding:"omitempty,dive"`
	Accompaniments []ProductAccompanimentRequest `json:"accompaniments" binding:"omitempty,dive"`
}

// UpdateProductRequest changes only the fields present. A non-nil Supplements or
// Accompaniments slice replaces the existing links, an empty one clears them.
type UpdateProductRequest struct {
	Name           *string                       `json:"name" binding:"omitempty,max=255"`
	Price          *decimal.Decimal              `json:"price"`
	Type           *string                       `json:"type" binding:"omitempty,oneof=food drink dessert other"`
	CategoryID     *int64                        `json:"category_id"`
	PreparingTime  *int                          `json:"preparing_time" binding:"omitempty,min=0"`
	IsActive       *bool                         `json:"is_active"`
	ImageURL       *string                       `json:"image_url"`
	Supplements    []ProductSupplementRequest    `json:"supplements" binding:"omitempty,dive"`
	Accompaniments []ProductAccompanimentRequest `json:"accompaniments" binding:"omitempty,dive"`
}

// --- Modifier DTOs ---
type SupplementRequest struct {
	Name  string          `json:"name" binding:"required,max=255"`
	Price decimal.Decimal `json:"price"`
}

type AccompanimentRequest struct {
	Name     string          `json:"name" binding:"required,max=255"`
	MaxFree  int             `json:"max_free" binding:"min=0"`
	Price    decimal.Decimal `json:"price"`
	IsActive *bool           `json:"is_active"`
}

// --- CatalogService Interface ---
type CatalogService interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, categoryID int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, categoryID int64, req UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID int64) error

	CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	ListProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, productID int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID int64) error

	CreateSupplement(ctx context.Context, req SupplementRequest) (*models.Supplement, error)
	ListSupplements(ctx context.Context) ([]models.Supplement, error)
	UpdateSupplement(ctx context.Context, supplementID int64, req SupplementRequest) (*models.Supplement, error)
	DeleteSupplement(ctx context.Context, supplementID int64) error

	CreateAccompaniment(ctx context.Context, req AccompanimentRequest) (*models.Accompaniment, error)
	GetAccompaniment(ctx context.Context, accompanimentID int64) (*models.Accompaniment, error)
	ListAccompaniments(ctx context.Context, activeOnly bool) ([]models.Accompaniment, error)
	UpdateAccompaniment(ctx context.Context, accompanimentID int64, req AccompanimentRequest) (*models.Accompaniment, error)
	DeleteAccompaniment(ctx context.Context, accompanimentID int64) error
}

// --- catalogService Implementation ---
type catalogService struct {
	tx        repositories.TxManager
	catalog   repositories.CatalogRepository
	modifiers repositories.ModifierRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(tx repositories.TxManager, catalog repositories.CatalogRepository, modifiers repositories.ModifierRepository) CatalogService {
	return &catalogService{tx: tx, catalog: catalog, modifiers: modifiers}
}

// --- Category Method Implementations ---

func (s *catalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	verr := &ValidationError{}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		verr.Add("name", "is required")
	}
	if !models.IsValidCategoryType(req.Type) {
		verr.Add("type", "must be one of [food drink dessert other]")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	category := &models.Category{
		Name:        name,
		Description: utils.NewNullString(utils.DerefString(req.Description)),
		Type:        req.Type,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.catalog.CreateCategory(ctx, nil, category); err != nil {
		return nil, notFoundOr(err, ErrCategoryNotFound, "creating category")
	}
	return category, nil
}

func (s *catalogService) GetCategory(ctx context.Context, categoryID int64) (*models.Category, error) {
	category, err := s.catalog.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, notFoundOr(err, ErrCategoryNotFound, fmt.Sprintf("loading category %d", categoryID))
	}
	products, err := s.catalog.ListProducts(ctx, models.ProductFilters{CategoryID: &categoryID})
	if err != nil {
		return nil, fmt.Errorf("loading products of category %d: %w", categoryID, err)
	}
	category.Products = products
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, categoryID int64, req UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.catalog.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, notFoundOr(err, ErrCategoryNotFound, fmt.Sprintf("loading category %d", categoryID))
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("name", "cannot be empty")
		}
		category.Name = name
	}
	if req.Type != nil {
		if !models.IsValidCategoryType(*req.Type) {
			return nil, NewValidationError("type", "must be one of [food drink dessert other]")
		}
		category.Type = *req.Type
	}
	if req.Description != nil {
		category.Description = utils.NewNullString(*req.Description)
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.catalog.UpdateCategory(ctx, nil, category); err != nil {
		return nil, notFoundOr(err, ErrCategoryNotFound, fmt.Sprintf("updating category %d", categoryID))
	}
	return category, nil
}

// DeleteCategory refuses to remove a category that still holds products.
func (s *catalogService) DeleteCategory(ctx context.Context, categoryID int64) error {
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		count, err := s.catalog.CountProductsInCategory(ctx, exec, categoryID)
		if err != nil {
			return fmt.Errorf("counting products of category %d: %w", categoryID, err)
		}
		if count > 0 {
			return conflictf("category %d still has %d product(s)", categoryID, count)
		}
		if err := s.catalog.DeleteCategory(ctx, exec, categoryID); err != nil {
			return notFoundOr(err, ErrCategoryNotFound, fmt.Sprintf("deleting category %d", categoryID))
		}
		return nil
	})
}

// --- Product Method Implementations ---

func validateProductFields(name string, price decimal.Decimal, productType string, preparingTime int) *ValidationError {
	verr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		verr.Add("name", "is required")
	}
	verr.AddMoney("price", price, false)
	if !models.IsValidCategoryType(productType) {
		verr.Add("type", "must be one of [food drink dessert other]")
	}
	if preparingTime < 0 {
		verr.Add("preparing_time", "must be greater than or equal to 0")
	}
	return verr
}

// syncProductLinks resolves and replaces the product's modifier pivots. A nil
// slice leaves that pivot untouched.
func (s *catalogService) syncProductLinks(ctx context.Context, exec repositories.SQLExecutor, productID int64,
	supplements []ProductSupplementRequest, accompaniments []ProductAccompanimentRequest) error {
	if supplements != nil {
		links := make([]models.ProductSupplement, 0, len(supplements))
		for i, req := range supplements {
			supplement, err := s.modifiers.GetSupplementByID(ctx, exec, req.SupplementID)
			if err != nil {
				if isNotFound(err) {
					return NewValidationError(fmt.Sprintf("supplements.%d.supplement_id", i), "selected supplement does not exist")
				}
				return err
			}
			link := models.ProductSupplement{SupplementID: supplement.ID, Name: supplement.Name, Quantity: 1, ExtraPrice: supplement.Price}
			if req.Quantity != nil {
				link.Quantity = *req.Quantity
			}
			if req.ExtraPrice != nil {
				verr := &ValidationError{}
				verr.AddMoney(fmt.Sprintf("supplements.%d.extra_price", i), *req.ExtraPrice, false)
				if err := verr.OrNil(); err != nil {
					return err
				}
				link.ExtraPrice = *req.ExtraPrice
			}
			links = append(links, link)
		}
		if err := s.catalog.ReplaceProductSupplements(ctx, exec, productID, links); err != nil {
			return notFoundOr(err, ErrProductNotFound, "syncing product supplements")
		}
	}
	if accompaniments != nil {
		links := make([]models.ProductAccompaniment, 0, len(accompaniments))
		for i, req := range accompaniments {
			acc, err := s.modifiers.GetAccompanimentByID(ctx, exec, req.AccompanimentID)
			if err != nil {
				if isNotFound(err) {
					return NewValidationError(fmt.Sprintf("accompaniments.%d.accompaniment_id", i), "selected accompaniment does not exist")
				}
				return err
			}
			links = append(links, models.ProductAccompaniment{
				AccompanimentID: acc.ID,
				Name:            acc.Name,
				MaxFree:         acc.MaxFree,
				Price:           acc.Price,
				IsDefault:       req.IsDefault,
			})
		}
		if err := s.catalog.ReplaceProductAccompaniments(ctx, exec, productID, links); err != nil {
			return notFoundOr(err, ErrProductNotFound, "syncing product accompaniments")
		}
	}
	return nil
}

func (s *catalogService) requireCategory(ctx context.Context, categoryID int64) error {
	if _, err := s.catalog.GetCategoryByID(ctx, categoryID); err != nil {
		if isNotFound(err) {
			return NewValidationError("category_id", "selected category does not exist")
		}
		return err
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if err := validateProductFields(req.Name, req.Price, req.Type, req.PreparingTime).OrNil(); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Price:         req.Price,
		Type:          req.Type,
		CategoryID:    req.CategoryID,
		PreparingTime: req.PreparingTime,
		IsActive:      req.IsActive == nil || *req.IsActive,
		ImageURL:      utils.NewNullString(utils.DerefString(req.ImageURL)),
	}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.catalog.CreateProduct(ctx, exec, product); err != nil {
			return notFoundOr(err, ErrProductNotFound, "creating product")
		}
		return s.syncProductLinks(ctx, exec, product.ID, req.Supplements, req.Accompaniments)
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Product created", map[string]interface{}{"product_id": product.ID, "name": product.Name})
	return s.GetProduct(ctx, product.ID)
}

func (s *catalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := s.catalog.GetProductByID(ctx, nil, productID)
	if err != nil {
		return nil, notFoundOr(err, ErrProductNotFound, fmt.Sprintf("loading product %d", productID))
	}
	products := []models.Product{*product}
	if err := s.attachModifiers(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (s *catalogService) attachModifiers(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	supplements, err := s.catalog.GetProductSupplements(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading product supplements: %w", err)
	}
	accompaniments, err := s.catalog.GetProductAccompaniments(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading product accompaniments: %w", err)
	}
	for i := range products {
		products[i].Supplements = supplements[products[i].ID]
		products[i].Accompaniments = accompaniments[products[i].ID]
	}
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	products, err := s.catalog.ListProducts(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	if err := s.attachModifiers(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.catalog.GetProductByID(ctx, nil, productID)
	if err != nil {
		return nil, notFoundOr(err, ErrProductNotFound, fmt.Sprintf("loading product %d", productID))
	}
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Type != nil {
		product.Type = *req.Type
	}
	if req.PreparingTime != nil {
		product.PreparingTime = *req.PreparingTime
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.ImageURL != nil {
		product.ImageURL = utils.NewNullString(*req.ImageURL)
	}
	if err := validateProductFields(product.Name, product.Price, product.Type, product.PreparingTime).OrNil(); err != nil {
		return nil, err
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.catalog.UpdateProduct(ctx, exec, product); err != nil {
			return notFoundOr(err, ErrProductNotFound, fmt.Sprintf("updating product %d", productID))
		}
		return s.syncProductLinks(ctx, exec, product.ID, req.Supplements, req.Accompaniments)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID int64) error {
	if err := s.catalog.DeleteProduct(ctx, nil, productID); err != nil {
		return notFoundOr(err, ErrProductNotFound, fmt.Sprintf("deleting product %d", productID))
	}
	return nil
}

// --- Supplement Method Implementations ---

func validateModifier(name string, price decimal.Decimal) *ValidationError {
	verr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		verr.Add("name", "is required")
	}
	verr.AddMoney("price", price, false)
	return verr
}

func (s *catalogService) CreateSupplement(ctx context.Context, req SupplementRequest) (*models.Supplement, error) {
	if err := validateModifier(req.Name, req.Price).OrNil(); err != nil {
		return nil, err
	}
	supplement := &models.Supplement{Name: strings.TrimSpace(req.Name), Price: req.Price}
	if err := s.modifiers.CreateSupplement(ctx, nil, supplement); err != nil {
		return nil, notFoundOr(err, ErrSupplementNotFound, "creating supplement")
	}
	return supplement, nil
}

func (s *catalogService) ListSupplements(ctx context.Context) ([]models.Supplement, error) {
	supplements, err := s.modifiers.ListSupplements(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing supplements: %w", err)
	}
	return supplements, nil
}

func (s *catalogService) UpdateSupplement(ctx context.Context, supplementID int64, req SupplementRequest) (*models.Supplement, error) {
	if err := validateModifier(req.Name, req.Price).OrNil(); err != nil {
		return nil, err
	}
	supplement, err := s.modifiers.GetSupplementByID(ctx, nil, supplementID)
	if err != nil {
		return nil, notFoundOr(err, ErrSupplementNotFound, fmt.Sprintf("loading supplement %d", supplementID))
	}
	supplement.Name = strings.TrimSpace(req.Name)
	supplement.Price = req.Price
	if err := s.modifiers.UpdateSupplement(ctx, nil, supplement); err != nil {
		return nil, notFoundOr(err, ErrSupplementNotFound, fmt.Sprintf("updating supplement %d", supplementID))
	}
	return supplement, nil
}

func (s *catalogService) DeleteSupplement(ctx context.Context, supplementID int64) error {
	if err := s.modifiers.DeleteSupplement(ctx, nil, supplementID); err != nil {
		return notFoundOr(err, ErrSupplementNotFound, fmt.Sprintf("deleting supplement %d", supplementID))
	}
	return nil
}

// --- Accompaniment Method Implementations ---

func (s *catalogService) CreateAccompaniment(ctx context.Context, req AccompanimentRequest) (*models.Accompaniment, error) {
	verr := validateModifier(req.Name, req.Price)
	if req.MaxFree < 0 {
		verr.Add("max_free", "must be greater than or equal to 0")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	acc := &models.Accompaniment{
		Name:     strings.TrimSpace(req.Name),
		MaxFree:  req.MaxFree,
		Price:    req.Price,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.modifiers.CreateAccompaniment(ctx, nil, acc); err != nil {
		return nil, notFoundOr(err, ErrAccompanimentNotFound, "creating accompaniment")
	}
	return acc, nil
}

func (s *catalogService) GetAccompaniment(ctx context.Context, accompanimentID int64) (*models.Accompaniment, error) {
	acc, err := s.modifiers.GetAccompanimentByID(ctx, nil, accompanimentID)
	if err != nil {
		return nil, notFoundOr(err, ErrAccompanimentNotFound, fmt.Sprintf("loading accompaniment %d", accompanimentID))
	}
	return acc, nil
}

func (s *catalogService) ListAccompaniments(ctx context.Context, activeOnly bool) ([]models.Accompaniment, error) {
	accompaniments, err := s.modifiers.ListAccompaniments(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing accompaniments: %w", err)
	}
	return accompaniments, nil
}

func (s *catalogService) UpdateAccompaniment(ctx context.Context, accompanimentID int64, req AccompanimentRequest) (*models.Accompaniment, error) {
	verr := validateModifier(req.Name, req.Price)
	if req.MaxFree < 0 {
		verr.Add("max_free", "must be greater than or equal to 0")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	acc, err := s.GetAccompaniment(ctx, accompanimentID)
	if err != nil {
		return nil, err
	}
	acc.Name = strings.TrimSpace(req.Name)
	acc.MaxFree = req.MaxFree
	acc.Price = req.Price
	if req.IsActive != nil {
		acc.IsActive = *req.IsActive
	}
	if err := s.modifiers.UpdateAccompaniment(ctx, nil, acc); err != nil {
		return nil, notFoundOr(err, ErrAccompanimentNotFound, fmt.Sprintf("updating accompaniment %d", accompanimentID))
	}
	return acc, nil
}

func (s *catalogService) DeleteAccompaniment(ctx context.Context, accompanimentID int64) error {
	if err := s.modifiers.DeleteAccompaniment(ctx, nil, accompanimentID); err != nil {
		return notFoundOr(err, ErrAccompanimentNotFound, fmt.Sprintf("deleting accompaniment %d", accompanimentID))
	}
	return nil
}
