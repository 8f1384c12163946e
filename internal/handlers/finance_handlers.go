package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FinanceHandler serves income, records and budgets.
type FinanceHandler struct {
	financeService services.FinanceService
	budgetService  services.BudgetService
}

// NewFinanceHandler creates a new FinanceHandler.
func NewFinanceHandler(fs services.FinanceService, bs services.BudgetService) *FinanceHandler {
	return &FinanceHandler{financeService: fs, budgetService: bs}
}

// defaultRange is the current month when the query omits the bounds.
func defaultRange(c *gin.Context) (string, string) {
	now := time.Now()
	from := c.DefaultQuery("date_from", utils.FormatDate(utils.StartOfMonth(now)))
	to := c.DefaultQuery("date_to", utils.FormatDate(utils.EndOfMonth(now)))
	return from, to
}

// GetSummary returns income, expenses and profit for a date range.
func (h *FinanceHandler) GetSummary(c *gin.Context) {
	from, to := defaultRange(c)
	summary, err := h.financeService.GetSummary(from, to)
	if err != nil {
		utils.LogError(err, "GetSummary: Error from financeService.GetSummary")
		if errors.Is(err, services.ErrInvalidDateRange) {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
		utils.RespondInternalError(c, "Failed to compute finance summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetIncomeActivities lists the billable activities behind the income figure.
func (h *FinanceHandler) GetIncomeActivities(c *gin.Context) {
	from, to := defaultRange(c)
	activities, err := h.financeService.GetIncomeActivities(from, to)
	if err != nil {
		utils.LogError(err, "GetIncomeActivities: Error from financeService.GetIncomeActivities")
		if errors.Is(err, services.ErrInvalidDateRange) {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
		utils.RespondInternalError(c, "Failed to fetch billable activities.")
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"data": activities, "total": len(activities), "date_from": from, "date_to": to})
}

// CreateRecord stores a manual income or expense.
func (h *FinanceHandler) CreateRecord(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	var req services.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateRecord: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	record, err := h.financeService.CreateRecord(&user.ID, req)
	if err != nil {
		utils.LogError(err, "CreateRecord: Error from financeService.CreateRecord")
		if errors.Is(err, services.ErrRecordValidation) {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
		utils.RespondInternalError(c, "Failed to create financial record.")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetRecords lists financial records.
func (h *FinanceHandler) GetRecords(c *gin.Context) {
	page, pageSize := pageParams(c, 50)
	filter := models.FinancialRecordFilter{
		Type:     optionalQuery(c, "type"),
		Category: optionalQuery(c, "category"),
		DateFrom: optionalQuery(c, "date_from"),
		DateTo:   optionalQuery(c, "date_to"),
		Page:     page,
		PageSize: pageSize,
	}
	records, total, err := h.financeService.GetRecords(filter)
	if err != nil {
		utils.LogError(err, "GetRecords: Error from financeService.GetRecords")
		utils.RespondInternalError(c, "Failed to fetch financial records.")
		return
	}
	if records == nil {
		records = []models.FinancialRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// DeleteRecord handles deleting a financial record.
func (h *FinanceHandler) DeleteRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "record")
	if !ok {
		return
	}
	if err := h.financeService.DeleteRecord(id); err != nil {
		utils.LogError(err, "DeleteRecord: Error from financeService.DeleteRecord for ID "+utils.Int64ToStr(id))
		if errors.Is(err, services.ErrRecordNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Financial record not found.", err.Error()))
			return
		}
		utils.RespondInternalError(c, "Failed to delete financial record.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Financial record deleted successfully"})
}

func budgetYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if err != nil || year < 2000 || year > 2100 {
		utils.RespondValidationFailed(c, "year must be between 2000 and 2100")
		return 0, false
	}
	return year, true
}

// GetBudgets lists every school budget of a year with derived usage.
func (h *FinanceHandler) GetBudgets(c *gin.Context) {
	year, ok := budgetYear(c)
	if !ok {
		return
	}
	statuses, err := h.budgetService.GetBudgetStatuses(year)
	if err != nil {
		utils.LogError(err, "GetBudgets: Error from budgetService.GetBudgetStatuses")
		utils.RespondInternalError(c, "Failed to fetch budgets.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "data": statuses, "total": len(statuses)})
}

// GetBudgetAlerts lists budgets whose remaining amount reached the threshold.
func (h *FinanceHandler) GetBudgetAlerts(c *gin.Context) {
	year, ok := budgetYear(c)
	if !ok {
		return
	}
	alerts, err := h.budgetService.GetBudgetAlerts(year)
	if err != nil {
		utils.LogError(err, "GetBudgetAlerts: Error from budgetService.GetBudgetAlerts")
		utils.RespondInternalError(c, "Failed to fetch budget alerts.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "data": alerts, "total": len(alerts)})
}

// GetSchoolBudget returns one school's budget position.
func (h *FinanceHandler) GetSchoolBudget(c *gin.Context) {
	schoolID, ok := parseIDParam(c, "school")
	if !ok {
		return
	}
	year, ok := budgetYear(c)
	if !ok {
		return
	}
	status, err := h.budgetService.GetBudgetStatus(schoolID, year)
	if err != nil {
		utils.LogError(err, "GetSchoolBudget: Error from budgetService.GetBudgetStatus for school "+utils.Int64ToStr(schoolID))
		if errors.Is(err, services.ErrBudgetNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No budget for this school and year.", err.Error()))
			return
		}
		utils.RespondInternalError(c, "Failed to fetch budget.")
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpsertBudget creates or replaces a school's yearly budget.
func (h *FinanceHandler) UpsertBudget(c *gin.Context) {
	var req services.UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpsertBudget: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	status, err := h.budgetService.UpsertBudget(req)
	if err != nil {
		utils.LogError(err, "UpsertBudget: Error from budgetService.UpsertBudget")
		switch {
		case errors.Is(err, services.ErrSchoolNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "School not found.", err.Error()))
		case errors.Is(err, services.ErrBudgetValidation):
			utils.RespondValidationFailed(c, err.Error())
		default:
			utils.RespondInternalError(c, "Failed to save budget.")
		}
		return
	}
	c.JSON(http.StatusOK, status)
}
