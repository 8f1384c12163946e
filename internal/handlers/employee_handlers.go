package handlers

import (
	"errors"
	"net/http"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler holds the employee service.
type EmployeeHandler struct {
	employeeService services.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(es services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: es}
}

func (h *EmployeeHandler) respondEmployeeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrEmployeeNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Employee not found.", err.Error()))
	case errors.Is(err, services.ErrEmailExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
	case errors.Is(err, services.ErrEmployeeValidation), errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrInvalidDateRange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondInternalError(c, fallback)
	}
}

// CreateEmployee adds a staff account; the temporary password is only shown in this response.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateEmployee: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.employeeService.CreateEmployee(req)
	if err != nil {
		utils.LogError(err, "CreateEmployee: Error from employeeService.CreateEmployee")
		h.respondEmployeeError(c, err, "Failed to create employee.")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetEmployees lists staff with this month's activity counts.
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	page, pageSize := pageParams(c, 20)
	filter := models.UserFilter{
		Role:     optionalQuery(c, "role"),
		Status:   optionalQuery(c, "status"),
		Search:   optionalQuery(c, "search"),
		Page:     page,
		PageSize: pageSize,
	}

	employees, total, err := h.employeeService.GetEmployees(filter)
	if err != nil {
		utils.LogError(err, "GetEmployees: Error from employeeService.GetEmployees")
		utils.RespondInternalError(c, "Failed to fetch employees.")
		return
	}
	if employees == nil {
		employees = []models.EmployeeOverview{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      employees,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetEmployeeByID handles fetching a single employee.
func (h *EmployeeHandler) GetEmployeeByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "employee")
	if !ok {
		return
	}
	employee, err := h.employeeService.GetEmployeeByID(id)
	if err != nil {
		utils.LogError(err, "GetEmployeeByID: Error from employeeService.GetEmployeeByID for ID "+id.String())
		h.respondEmployeeError(c, err, "Failed to fetch employee.")
		return
	}
	c.JSON(http.StatusOK, employee)
}

// UpdateEmployee handles updating an employee profile.
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, ok := parseUUIDParam(c, "employee")
	if !ok {
		return
	}

	var req services.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateEmployee: Failed to bind JSON for ID "+id.String())
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	employee, err := h.employeeService.UpdateEmployee(id, req)
	if err != nil {
		utils.LogError(err, "UpdateEmployee: Error from employeeService.UpdateEmployee for ID "+id.String())
		h.respondEmployeeError(c, err, "Failed to update employee.")
		return
	}
	c.JSON(http.StatusOK, employee)
}

// DeactivateEmployee marks an employee inactive; history stays attached.
func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	id, ok := parseUUIDParam(c, "employee")
	if !ok {
		return
	}
	if err := h.employeeService.DeactivateEmployee(id); err != nil {
		utils.LogError(err, "DeactivateEmployee: Error from employeeService.DeactivateEmployee for ID "+id.String())
		h.respondEmployeeError(c, err, "Failed to deactivate employee.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deactivated successfully"})
}

// GetPayroll prices completed work between date_from and date_to.
func (h *EmployeeHandler) GetPayroll(c *gin.Context) {
	report, err := h.employeeService.GetPayroll(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		utils.LogError(err, "GetPayroll: Error from employeeService.GetPayroll")
		h.respondEmployeeError(c, err, "Failed to compute payroll.")
		return
	}
	c.JSON(http.StatusOK, report)
}
