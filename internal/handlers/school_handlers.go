package handlers

import (
	"errors"
	"net/http"

	"dream_build_backend/internal/models"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SchoolHandler holds the school service.
type SchoolHandler struct {
	schoolService services.SchoolService
}

// NewSchoolHandler creates a new SchoolHandler.
func NewSchoolHandler(ss services.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolService: ss}
}

func (h *SchoolHandler) respondSchoolError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrSchoolNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "School not found.", err.Error()))
	case errors.Is(err, services.ErrSchoolNameExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A school with this name already exists.", err.Error()))
	case errors.Is(err, services.ErrSchoolInUse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "School cannot be deleted as it is referenced by activities or records.", err.Error()))
	case errors.Is(err, services.ErrSchoolValidation), errors.Is(err, services.ErrBudgetValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondInternalError(c, fallback)
	}
}

// CreateSchool handles the creation of a new school.
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req services.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSchool: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	school, err := h.schoolService.CreateSchool(req)
	if err != nil {
		utils.LogError(err, "CreateSchool: Error from schoolService.CreateSchool")
		h.respondSchoolError(c, err, "Failed to create school.")
		return
	}
	c.JSON(http.StatusCreated, school)
}

// GetSchools lists schools with search, status filter and budget usage.
func (h *SchoolHandler) GetSchools(c *gin.Context) {
	page, pageSize := pageParams(c, 20)
	filter := models.SchoolFilter{
		Search:   optionalQuery(c, "search"),
		Status:   optionalQuery(c, "status"),
		Page:     page,
		PageSize: pageSize,
	}

	schools, total, err := h.schoolService.GetSchools(filter)
	if err != nil {
		utils.LogError(err, "GetSchools: Error from schoolService.GetSchools")
		utils.RespondInternalError(c, "Failed to fetch schools.")
		return
	}
	if schools == nil {
		schools = []models.SchoolOverview{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      schools,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSchoolByID handles fetching a single school by ID.
func (h *SchoolHandler) GetSchoolByID(c *gin.Context) {
	schoolID, ok := parseIDParam(c, "school")
	if !ok {
		return
	}

	school, err := h.schoolService.GetSchoolByID(schoolID)
	if err != nil {
		utils.LogError(err, "GetSchoolByID: Error from schoolService.GetSchoolByID for ID "+utils.Int64ToStr(schoolID))
		h.respondSchoolError(c, err, "Failed to fetch school.")
		return
	}
	c.JSON(http.StatusOK, school)
}

// UpdateSchool handles updating a school.
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	schoolID, ok := parseIDParam(c, "school")
	if !ok {
		return
	}

	var req services.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSchool: Failed to bind JSON for ID "+utils.Int64ToStr(schoolID))
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	school, err := h.schoolService.UpdateSchool(schoolID, req)
	if err != nil {
		utils.LogError(err, "UpdateSchool: Error from schoolService.UpdateSchool for ID "+utils.Int64ToStr(schoolID))
		h.respondSchoolError(c, err, "Failed to update school.")
		return
	}
	c.JSON(http.StatusOK, school)
}

// DeleteSchool handles deleting a school.
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	schoolID, ok := parseIDParam(c, "school")
	if !ok {
		return
	}

	if err := h.schoolService.DeleteSchool(schoolID); err != nil {
		utils.LogError(err, "DeleteSchool: Error from schoolService.DeleteSchool for ID "+utils.Int64ToStr(schoolID))
		h.respondSchoolError(c, err, "Failed to delete school.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "School deleted successfully"})
}
