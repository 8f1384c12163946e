package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dream_build_backend/internal/middleware"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityHandler holds the activity service.
type ActivityHandler struct {
	activityService services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(as services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: as}
}

// PurgeRequest selects activities dated strictly before Before.
type PurgeRequest struct {
	Before string `json:"before" binding:"required"`
}

func (h *ActivityHandler) respondActivityError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrActivityNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Activity not found.", err.Error()))
	case errors.Is(err, services.ErrSchoolNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "School not found.", err.Error()))
	case errors.Is(err, services.ErrEmployeeNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Employee not found.", err.Error()))
	case errors.Is(err, services.ErrActivityForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "This activity is assigned to someone else.", err.Error()))
	case errors.Is(err, services.ErrActivityNotDue):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Future activities cannot be confirmed yet.", err.Error()))
	case errors.Is(err, services.ErrActivityValidation), errors.Is(err, services.ErrInvalidDateRange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondInternalError(c, fallback)
	}
}

// CreateActivity schedules a single activity.
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req services.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateActivity: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	activity, err := h.activityService.CreateActivity(req)
	if err != nil {
		utils.LogError(err, "CreateActivity: Error from activityService.CreateActivity")
		h.respondActivityError(c, err, "Failed to create activity.")
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// CreateSeries schedules a weekly batch. Partial success still answers 201.
func (h *ActivityHandler) CreateSeries(c *gin.Context) {
	var req services.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSeries: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.activityService.CreateSeries(req)
	if err != nil {
		utils.LogError(err, "CreateSeries: Error from activityService.CreateSeries")
		h.respondActivityError(c, err, "Failed to create activity series.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetSchedule lists activities for the requested range and filters.
func (h *ActivityHandler) GetSchedule(c *gin.Context) {
	page, pageSize := pageParams(c, 100)
	q := services.ScheduleQuery{
		Range:      c.Query("range"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Status:     c.Query("status"),
		Unassigned: c.Query("unassigned") == "true",
		Page:       page,
		PageSize:   pageSize,
	}
	if v := c.Query("employee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid employee_id format.", err.Error()))
			return
		}
		q.EmployeeID = &id
	}
	if v := c.Query("school_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid school_id format.", err.Error()))
			return
		}
		q.SchoolID = &id
	}

	schedule, err := h.activityService.GetSchedule(middleware.GetSession(c), q)
	if err != nil {
		utils.LogError(err, "GetSchedule: Error from activityService.GetSchedule")
		h.respondActivityError(c, err, "Failed to fetch schedule.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      schedule.Activities,
		"stats":     schedule.Stats,
		"date_from": schedule.DateFrom,
		"date_to":   schedule.DateTo,
		"total":     schedule.Total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetActivityByID handles fetching a single activity.
func (h *ActivityHandler) GetActivityByID(c *gin.Context) {
	id, ok := parseIDParam(c, "activity")
	if !ok {
		return
	}
	activity, err := h.activityService.GetActivityByID(middleware.GetSession(c), id)
	if err != nil {
		utils.LogError(err, "GetActivityByID: Error from activityService.GetActivityByID for ID "+utils.Int64ToStr(id))
		h.respondActivityError(c, err, "Failed to fetch activity.")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// UpdateActivity handles editing an activity.
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "activity")
	if !ok {
		return
	}

	var req services.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateActivity: Failed to bind JSON for ID "+utils.Int64ToStr(id))
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	activity, err := h.activityService.UpdateActivity(id, req)
	if err != nil {
		utils.LogError(err, "UpdateActivity: Error from activityService.UpdateActivity for ID "+utils.Int64ToStr(id))
		h.respondActivityError(c, err, "Failed to update activity.")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// CancelActivity sets the status to cancelled.
func (h *ActivityHandler) CancelActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "activity")
	if !ok {
		return
	}
	activity, err := h.activityService.CancelActivity(id)
	if err != nil {
		utils.LogError(err, "CancelActivity: Error from activityService.CancelActivity for ID "+utils.Int64ToStr(id))
		h.respondActivityError(c, err, "Failed to cancel activity.")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// DeleteActivity handles deleting an activity.
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "activity")
	if !ok {
		return
	}
	if err := h.activityService.DeleteActivity(id); err != nil {
		utils.LogError(err, "DeleteActivity: Error from activityService.DeleteActivity for ID "+utils.Int64ToStr(id))
		h.respondActivityError(c, err, "Failed to delete activity.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Activity deleted successfully"})
}

// ConfirmActivity marks the caller's own activity as done.
func (h *ActivityHandler) ConfirmActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "activity")
	if !ok {
		return
	}
	activity, err := h.activityService.ConfirmActivity(middleware.GetSession(c), id)
	if err != nil {
		utils.LogError(err, "ConfirmActivity: Error from activityService.ConfirmActivity for ID "+utils.Int64ToStr(id))
		h.respondActivityError(c, err, "Failed to confirm activity.")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// GetPendingConfirmations lists the caller's due, unconfirmed activities.
func (h *ActivityHandler) GetPendingConfirmations(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	pending, err := h.activityService.GetPendingConfirmations(user.ID)
	if err != nil {
		utils.LogError(err, "GetPendingConfirmations: Error from activityService.GetPendingConfirmations")
		utils.RespondInternalError(c, "Failed to fetch pending confirmations.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pending, "total": len(pending)})
}

// GetMonthlySummary groups a month per employee. Defaults to the current month.
func (h *ActivityHandler) GetMonthlySummary(c *gin.Context) {
	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		utils.RespondValidationFailed(c, "year must be a number")
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		utils.RespondValidationFailed(c, "month must be a number")
		return
	}

	summary, err := h.activityService.GetMonthlySummary(year, time.Month(month))
	if err != nil {
		utils.LogError(err, "GetMonthlySummary: Error from activityService.GetMonthlySummary")
		h.respondActivityError(c, err, "Failed to fetch monthly summary.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "data": summary})
}

// PurgeActivities deletes activities dated before the given day.
func (h *ActivityHandler) PurgeActivities(c *gin.Context) {
	var req PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "PurgeActivities: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	deleted, err := h.activityService.PurgeActivitiesBefore(req.Before)
	if err != nil {
		utils.LogError(err, "PurgeActivities: Error from activityService.PurgeActivitiesBefore")
		h.respondActivityError(c, err, "Failed to purge activities.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "before": req.Before})
}
