package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler serves the order aggregate: orders, their lines and the kitchen queue.
type OrderHandler struct {
	orderService services.OrderService
	itemService  services.OrderItemService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService, is services.OrderItemService) *OrderHandler {
	return &OrderHandler{orderService: os, itemService: is}
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		respondServiceError(c, err, "create order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Commande créée avec succès", order)
}

// GetOrders handles GET /orders?status=&date=&search=&page=&per_page=.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	perPage, ok := queryInt(c, "per_page", 0)
	if !ok {
		return
	}
	result, err := h.orderService.ListOrders(c.Request.Context(), services.OrderListQuery{
		Status:  c.Query("status"),
		Date:    c.Query("date"),
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondServiceError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   result.Orders,
		"meta":   gin.H{"total": result.Total, "page": result.Page, "per_page": result.PerPage},
	})
}

// GetOrderByID handles GET /orders/:id.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "load order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", order)
}

// UpdateOrder handles PATCH /orders/:id with a status and/or table change.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateOrder(c.Request.Context(), principalFromContext(c), id, req)
	if err != nil {
		respondServiceError(c, err, "update order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Commande mise à jour", order)
}

// DeleteOrder handles DELETE /orders/:id.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.DeleteOrder(c.Request.Context(), principalFromContext(c), id); err != nil {
		respondServiceError(c, err, "delete order")
		return
	}
	c.Status(http.StatusNoContent)
}

// KitchenOrders handles GET /kitchen/orders.
func (h *OrderHandler) KitchenOrders(c *gin.Context) {
	orders, err := h.orderService.KitchenQueue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "load kitchen queue")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", orders)
}

// --- Order lines ---

// AddItem handles POST /orders/:id/items.
func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CreateOrderItemRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.itemService.AddItem(c.Request.Context(), principalFromContext(c), id, req)
	if err != nil {
		respondServiceError(c, err, "add order item")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Article ajouté", order)
}

type addSupplementsRequest struct {
	Supplements []services.OrderLineSupplementRequest `json:"supplements" binding:"required,min=1,dive"`
}

// AddSupplements handles POST /items/:id/supplements.
func (h *OrderHandler) AddSupplements(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req addSupplementsRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.itemService.AddSupplements(c.Request.Context(), principalFromContext(c), id, req.Supplements)
	if err != nil {
		respondServiceError(c, err, "add supplements")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Suppléments ajoutés", order)
}

type syncAccompanimentsRequest struct {
	Accompaniments []services.AccompanimentLineRequest `json:"accompaniments" binding:"omitempty,dive"`
}

// SyncAccompaniments handles POST /items/:id/accompaniments. The list replaces the current one.
func (h *OrderHandler) SyncAccompaniments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req syncAccompanimentsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Accompaniments == nil {
		req.Accompaniments = []services.AccompanimentLineRequest{}
	}
	order, err := h.itemService.SyncAccompaniments(c.Request.Context(), principalFromContext(c), id, req.Accompaniments)
	if err != nil {
		respondServiceError(c, err, "sync accompaniments")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Accompagnements mis à jour", order)
}

type quantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// UpdateItemQuantity handles PATCH /items/:id/quantity.
func (h *OrderHandler) UpdateItemQuantity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req quantityRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.itemService.UpdateQuantity(c.Request.Context(), principalFromContext(c), id, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "update item quantity")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Quantité mise à jour", order)
}

type itemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateItemStatus handles PATCH /items/:id/status.
func (h *OrderHandler) UpdateItemStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req itemStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.itemService.UpdateStatus(c.Request.Context(), principalFromContext(c), id, req.Status)
	if err != nil {
		respondServiceError(c, err, "update item status")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Statut mis à jour", order)
}

// MarkItemReady handles POST /kitchen/items/:id/ready.
func (h *OrderHandler) MarkItemReady(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.itemService.MarkReady(c.Request.Context(), principalFromContext(c), id)
	if err != nil {
		respondServiceError(c, err, "mark item ready")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Article prêt", order)
}

// DeleteItem handles DELETE /items/:id.
func (h *OrderHandler) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.itemService.DeleteItem(c.Request.Context(), principalFromContext(c), id)
	if err != nil {
		respondServiceError(c, err, "delete order item")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Article supprimé", order)
}
