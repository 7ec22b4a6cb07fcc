package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves the payment ledger and cash registers.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// RecordPayment handles POST /payments/:orderId/orders. The body is returned
// bare: {message, status, total_paid, remaining}.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var req services.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.paymentService.RecordPayment(c.Request.Context(), principalFromContext(c), orderID, req)
	if err != nil {
		respondServiceError(c, err, "record payment")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) respondPage(c *gin.Context, page *services.PaymentPage) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   page.Payments,
		"meta":   gin.H{"total": page.Total, "page": page.Page, "per_page": page.PerPage},
	})
}

// ListPayments handles GET /payments.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	perPage, ok := queryInt(c, "per_page", 0)
	if !ok {
		return
	}
	result, err := h.paymentService.ListPayments(c.Request.Context(), page, perPage)
	if err != nil {
		respondServiceError(c, err, "list payments")
		return
	}
	h.respondPage(c, result)
}

// PaymentsByOrder handles GET /payments/:orderId/orders.
func (h *PaymentHandler) PaymentsByOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	perPage, ok := queryInt(c, "per_page", 0)
	if !ok {
		return
	}
	result, err := h.paymentService.PaymentsForOrder(c.Request.Context(), orderID, page, perPage)
	if err != nil {
		respondServiceError(c, err, "list order payments")
		return
	}
	h.respondPage(c, result)
}

// PaymentStats handles GET /payments/stats?start_date=&end_date=.
func (h *PaymentHandler) PaymentStats(c *gin.Context) {
	stats, err := h.paymentService.Stats(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondServiceError(c, err, "load payment stats")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", stats)
}

// CashRegisters handles GET /cash-registers.
func (h *PaymentHandler) CashRegisters(c *gin.Context) {
	registers, err := h.paymentService.CashRegisters(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list cash registers")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", registers)
}
