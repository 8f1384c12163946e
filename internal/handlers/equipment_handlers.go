package handlers

import (
	"errors"
	"net/http"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EquipmentHandler holds the equipment service.
type EquipmentHandler struct {
	equipmentService services.EquipmentService
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(es services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentService: es}
}

func (h *EquipmentHandler) respondEquipmentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrEquipmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Equipment not found.", err.Error()))
	case errors.Is(err, services.ErrReportNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Equipment report not found.", err.Error()))
	case errors.Is(err, services.ErrEquipmentInUse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Equipment cannot be deleted as reports reference it.", err.Error()))
	case errors.Is(err, services.ErrInvalidStockChange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Not enough stock for this change.", err.Error()))
	case errors.Is(err, services.ErrEquipmentValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondInternalError(c, fallback)
	}
}

// CreateEquipment adds an item to the inventory.
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	var req services.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateEquipment: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	item, err := h.equipmentService.CreateEquipment(req)
	if err != nil {
		utils.LogError(err, "CreateEquipment: Error from equipmentService.CreateEquipment")
		h.respondEquipmentError(c, err, "Failed to create equipment.")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetEquipment lists items with stock stats. Query: search, category, low_only.
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	filter := models.EquipmentFilter{
		Search:   optionalQuery(c, "search"),
		Category: optionalQuery(c, "category"),
		LowOnly:  c.Query("low_only") == "true",
	}
	list, err := h.equipmentService.GetEquipment(filter)
	if err != nil {
		utils.LogError(err, "GetEquipment: Error from equipmentService.GetEquipment")
		utils.RespondInternalError(c, "Failed to fetch equipment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list.Items, "stats": list.Stats, "total": len(list.Items)})
}

// GetLowStockAlerts lists items at or below their threshold.
func (h *EquipmentHandler) GetLowStockAlerts(c *gin.Context) {
	alerts, err := h.equipmentService.GetLowStockAlerts()
	if err != nil {
		utils.LogError(err, "GetLowStockAlerts: Error from equipmentService.GetLowStockAlerts")
		utils.RespondInternalError(c, "Failed to fetch stock alerts.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts, "total": len(alerts)})
}

// GetEquipmentByID handles fetching a single item.
func (h *EquipmentHandler) GetEquipmentByID(c *gin.Context) {
	id, ok := parseIDParam(c, "equipment")
	if !ok {
		return
	}
	item, err := h.equipmentService.GetEquipmentByID(id)
	if err != nil {
		utils.LogError(err, "GetEquipmentByID: Error from equipmentService.GetEquipmentByID for ID "+utils.Int64ToStr(id))
		h.respondEquipmentError(c, err, "Failed to fetch equipment.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateEquipment handles editing an item.
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "equipment")
	if !ok {
		return
	}
	var req services.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateEquipment: Failed to bind JSON for ID "+utils.Int64ToStr(id))
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	item, err := h.equipmentService.UpdateEquipment(id, req)
	if err != nil {
		utils.LogError(err, "UpdateEquipment: Error from equipmentService.UpdateEquipment for ID "+utils.Int64ToStr(id))
		h.respondEquipmentError(c, err, "Failed to update equipment.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// AdjustStock adds or removes available units.
func (h *EquipmentHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "equipment")
	if !ok {
		return
	}
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AdjustStock: Failed to bind JSON for ID "+utils.Int64ToStr(id))
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	item, err := h.equipmentService.AdjustStock(id, req.Delta)
	if err != nil {
		utils.LogError(err, "AdjustStock: Error from equipmentService.AdjustStock for ID "+utils.Int64ToStr(id))
		h.respondEquipmentError(c, err, "Failed to adjust stock.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteEquipment handles deleting an item.
func (h *EquipmentHandler) DeleteEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "equipment")
	if !ok {
		return
	}
	if err := h.equipmentService.DeleteEquipment(id); err != nil {
		utils.LogError(err, "DeleteEquipment: Error from equipmentService.DeleteEquipment for ID "+utils.Int64ToStr(id))
		h.respondEquipmentError(c, err, "Failed to delete equipment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Equipment deleted successfully"})
}

// CreateReport files a missing or damaged equipment report for the caller.
func (h *EquipmentHandler) CreateReport(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	var req services.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateReport: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	report, err := h.equipmentService.CreateReport(user.ID, req)
	if err != nil {
		utils.LogError(err, "CreateReport: Error from equipmentService.CreateReport")
		h.respondEquipmentError(c, err, "Failed to create equipment report.")
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GetMyReports lists the caller's own reports.
func (h *EquipmentHandler) GetMyReports(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	reports, err := h.equipmentService.GetMyReports(user.ID)
	if err != nil {
		utils.LogError(err, "GetMyReports: Error from equipmentService.GetMyReports")
		utils.RespondInternalError(c, "Failed to fetch reports.")
		return
	}
	if reports == nil {
		reports = []models.EquipmentReport{}
	}
	c.JSON(http.StatusOK, gin.H{"data": reports, "total": len(reports)})
}

// GetReports lists the latest reports, optionally by status.
func (h *EquipmentHandler) GetReports(c *gin.Context) {
	reports, err := h.equipmentService.GetReports(optionalQuery(c, "status"))
	if err != nil {
		utils.LogError(err, "GetReports: Error from equipmentService.GetReports")
		utils.RespondInternalError(c, "Failed to fetch reports.")
		return
	}
	if reports == nil {
		reports = []models.EquipmentReport{}
	}
	c.JSON(http.StatusOK, gin.H{"data": reports, "total": len(reports)})
}

// ResolveReport closes a report.
func (h *EquipmentHandler) ResolveReport(c *gin.Context) {
	id, ok := parseIDParam(c, "report")
	if !ok {
		return
	}
	report, err := h.equipmentService.ResolveReport(id)
	if err != nil {
		utils.LogError(err, "ResolveReport: Error from equipmentService.ResolveReport for ID "+utils.Int64ToStr(id))
		h.respondEquipmentError(c, err, "Failed to resolve report.")
		return
	}
	c.JSON(http.StatusOK, report)
}
