package handlers

import (
	"errors"
	"net/http"

	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ImportHandler accepts spreadsheet uploads.
type ImportHandler struct {
	importService services.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(is services.ImportService) *ImportHandler {
	return &ImportHandler{importService: is}
}

// Import reads the multipart field "file" and imports it as :type.
// Row failures are reported in the body; the request itself still succeeds.
func (h *ImportHandler) Import(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	kind := c.Param("type")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondValidationFailed(c, "multipart field \"file\" is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.LogError(err, "Import: Failed to open uploaded file")
		utils.RespondInternalError(c, "Failed to read uploaded file.")
		return
	}
	defer file.Close()

	result, err := h.importService.Import(kind, file, fileHeader.Filename, user.ID)
	if err != nil {
		utils.LogError(err, "Import: Error from importService.Import", map[string]interface{}{"type": kind, "file": fileHeader.Filename})
		switch {
		case errors.Is(err, services.ErrUnknownImportType):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown import type.", kind))
		case errors.Is(err, services.ErrImportValidation):
			utils.RespondValidationFailed(c, err.Error())
		default:
			utils.RespondInternalError(c, "Import failed.")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadTemplate serves a CSV with the expected columns.
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	kind := c.Param("type")
	data, err := h.importService.Template(kind)
	if err != nil {
		if errors.Is(err, services.ErrUnknownImportType) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown import type.", kind))
			return
		}
		utils.LogError(err, "DownloadTemplate: Error from importService.Template")
		utils.RespondInternalError(c, "Failed to build template.")
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+kind+"_template.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
