package handlers

import (
	"net/http"

	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DashboardHandler holds the dashboard service.
type DashboardHandler struct {
	dashboardService services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetManagerDashboard returns today's overview for managers.
func (h *DashboardHandler) GetManagerDashboard(c *gin.Context) {
	dash, err := h.dashboardService.GetManagerDashboard()
	if err != nil {
		utils.LogError(err, "GetManagerDashboard: Error from dashboardService.GetManagerDashboard")
		utils.RespondInternalError(c, "Failed to load dashboard.")
		return
	}
	c.JSON(http.StatusOK, dash)
}

// GetEmployeeDashboard returns the caller's month.
func (h *DashboardHandler) GetEmployeeDashboard(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	dash, err := h.dashboardService.GetEmployeeDashboard(*user)
	if err != nil {
		utils.LogError(err, "GetEmployeeDashboard: Error from dashboardService.GetEmployeeDashboard")
		utils.RespondInternalError(c, "Failed to load dashboard.")
		return
	}
	c.JSON(http.StatusOK, dash)
}
