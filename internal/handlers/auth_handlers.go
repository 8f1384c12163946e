package handlers

import (
	"errors"
	"net/http"

	"dream_build_backend/internal/middleware"
	"dream_build_backend/internal/models"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// RegisterUser handles user registration.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req services.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RegisterUser: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	user, err := h.authService.RegisterUser(req)
	if err != nil {
		utils.LogError(err, "RegisterUser: Error from authService.RegisterUser")
		switch {
		case errors.Is(err, services.ErrEmailExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
		case errors.Is(err, services.ErrRegistrationClosed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Registration is disabled.", err.Error()))
		case errors.Is(err, services.ErrUserValidation), errors.Is(err, services.ErrInvalidRole):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondInternalError(c, "Failed to register user.")
		}
		return
	}
	c.JSON(http.StatusCreated, user)
}

// LoginUser runs the configured authenticator and returns a bearer token.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "LoginUser: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	authResp, err := h.authService.LoginUser(req)
	if err != nil {
		utils.LogError(err, "LoginUser: Error from authService.LoginUser")
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", err.Error()))
		case errors.Is(err, services.ErrUserValidation), errors.Is(err, services.ErrInvalidRole):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondInternalError(c, "Failed to login.")
		}
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// LogoutUser revokes the presented token.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
		return
	}
	if err := h.authService.LogoutUser(claims.ID, claims.ExpiresAt.Time); err != nil {
		utils.LogError(err, "LogoutUser: Error from authService.LogoutUser")
		utils.RespondInternalError(c, "Failed to logout.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetCurrentUser returns the session of the request.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetMenu lists the pages the session's role may open.
func (h *AuthHandler) GetMenu(c *gin.Context) {
	session := middleware.GetSession(c)
	role := ""
	if session.Authenticated && session.User != nil {
		role = session.User.Role
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": session.Authenticated,
		"role":          role,
		"items":         models.MenuFor(role),
	})
}

// GetAuthMode tells the login form which fields to show.
func (h *AuthHandler) GetAuthMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"auth_mode": h.authService.AuthMode()})
}
