package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableHandler serves dining tables.
type TableHandler struct {
	tableService services.TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	var req services.CreateTableRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := h.tableService.CreateTable(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create table")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Table created", table)
}

func (h *TableHandler) GetTables(c *gin.Context) {
	tables, err := h.tableService.ListTables(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list tables")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", tables)
}

func (h *TableHandler) GetTableByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	table, err := h.tableService.GetTable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "load table")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", table)
}

func (h *TableHandler) UpdateTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTableRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := h.tableService.UpdateTable(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update table")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Table updated", table)
}

type tableStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetTableStatus handles POST /tables/:id/status.
func (h *TableHandler) SetTableStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req tableStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := h.tableService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err, "update table status")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Table status updated", table)
}

func (h *TableHandler) DeleteTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.tableService.DeleteTable(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete table")
		return
	}
	c.Status(http.StatusNoContent)
}
