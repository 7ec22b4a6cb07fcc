package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the caller's inbox and ad-hoc broadcasts.
type NotificationHandler struct {
	notificationService services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// Send handles POST /notifications/send.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req services.SendNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.notificationService.Send(c.Request.Context(), principalFromContext(c), req); err != nil {
		respondServiceError(c, err, "send notification")
		return
	}
	utils.RespondWithSuccess(c, http.StatusAccepted, "Notification queued", nil)
}

// ListMine handles GET /notifications.
func (h *NotificationHandler) ListMine(c *gin.Context) {
	items, err := h.notificationService.ListMine(c.Request.Context(), principalFromContext(c))
	if err != nil {
		respondServiceError(c, err, "list notifications")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", items)
}

// MarkRead handles PATCH /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notificationService.MarkRead(c.Request.Context(), principalFromContext(c), id)
	if err != nil {
		respondServiceError(c, err, "mark notification read")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", n)
}

// Delete handles DELETE /notifications/:id.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.Delete(c.Request.Context(), principalFromContext(c), id); err != nil {
		respondServiceError(c, err, "delete notification")
		return
	}
	c.Status(http.StatusNoContent)
}
