package handlers

import (
	"net/http"
	"strconv"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves categories, products, supplements and accompaniments.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// --- Categories ---

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create category")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Category created", category)
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list categories")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", categories)
}

func (h *CatalogHandler) GetCategoryByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "load category")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update category")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Category updated", category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Products ---

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create product")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Product created", product)
}

// GetProducts handles GET /products?category_id=&type=&active=&search=.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	filters := models.ProductFilters{Search: c.Query("search")}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := utils.StrToInt64(raw)
		if err != nil {
			utils.RespondValidationFailed(c, map[string]string{"category_id": "must be an integer"})
			return
		}
		filters.CategoryID = &categoryID
	}
	if typ := c.Query("type"); typ != "" {
		filters.Type = &typ
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondValidationFailed(c, map[string]string{"active": "must be a boolean"})
			return
		}
		filters.ActiveOnly = active
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "list products")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", products)
}

func (h *CatalogHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "load product")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update product")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Product updated", product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Supplements ---

func (h *CatalogHandler) CreateSupplement(c *gin.Context) {
	var req services.SupplementRequest
	if !bindJSON(c, &req) {
		return
	}
	supplement, err := h.catalogService.CreateSupplement(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create supplement")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Supplement created", supplement)
}

func (h *CatalogHandler) GetSupplements(c *gin.Context) {
	supplements, err := h.catalogService.ListSupplements(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list supplements")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", supplements)
}

func (h *CatalogHandler) UpdateSupplement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.SupplementRequest
	if !bindJSON(c, &req) {
		return
	}
	supplement, err := h.catalogService.UpdateSupplement(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update supplement")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Supplement updated", supplement)
}

func (h *CatalogHandler) DeleteSupplement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteSupplement(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete supplement")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Accompaniments ---

func (h *CatalogHandler) CreateAccompaniment(c *gin.Context) {
	var req services.AccompanimentRequest
	if !bindJSON(c, &req) {
		return
	}
	acc, err := h.catalogService.CreateAccompaniment(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create accompaniment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Accompaniment created", acc)
}

// GetAccompaniments handles GET /accompaniments?active=true.
func (h *CatalogHandler) GetAccompaniments(c *gin.Context) {
	activeOnly := c.Query("active") == "true" || c.Query("active") == "1"
	accs, err := h.catalogService.ListAccompaniments(c.Request.Context(), activeOnly)
	if err != nil {
		respondServiceError(c, err, "list accompaniments")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", accs)
}

func (h *CatalogHandler) GetAccompanimentByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	acc, err := h.catalogService.GetAccompaniment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "load accompaniment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", acc)
}

func (h *CatalogHandler) UpdateAccompaniment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.AccompanimentRequest
	if !bindJSON(c, &req) {
		return
	}
	acc, err := h.catalogService.UpdateAccompaniment(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update accompaniment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Accompaniment updated", acc)
}

func (h *CatalogHandler) DeleteAccompaniment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteAccompaniment(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete accompaniment")
		return
	}
	c.Status(http.StatusNoContent)
}
