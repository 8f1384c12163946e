package middleware

import (
	"net/http"
	"strings"

	"dream_build_backend/internal/models"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "session"
	claimsKey  = "tokenClaims"
)

// LoginRequiredMessage is the warning returned to anonymous visitors of gated routes.
const LoginRequiredMessage = "please log in first"

// SessionVerifier resolves a bearer token into a session.
type SessionVerifier interface {
	ResolveSession(token string) (models.Session, *utils.Claims, error)
}

// SessionMiddleware attaches the request session to the context. It never aborts:
// a missing, invalid or revoked token yields an anonymous session.
func SessionMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := models.AnonymousSession()

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			resolved, claims, err := verifier.ResolveSession(token)
			if err != nil {
				utils.LogDebug("Session not resolved", map[string]interface{}{"path": c.Request.URL.Path, "reason": err.Error()})
			} else {
				session = resolved
				c.Set(claimsKey, claims)
			}
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// GetSession returns the session stored by SessionMiddleware, or an anonymous one.
func GetSession(c *gin.Context) models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(models.Session); ok {
			return session
		}
	}
	return models.AnonymousSession()
}

// GetClaims returns the token claims of an authenticated request.
func GetClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok && claims != nil
}

// RequireRole gates a route group. Anonymous sessions get 401 and the chain stops
// before any handler runs; authenticated users without the role get 403.
// Managers pass every check.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if !session.Authenticated || session.User == nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, LoginRequiredMessage, ""))
			return
		}
		if !session.CanAccess(role) {
			utils.LogWarn("Role check failed", map[string]interface{}{"user_id": session.User.ID.String(), "role": session.User.Role, "required": role, "path": c.Request.URL.Path})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to access this resource.", "required role: "+role))
			return
		}
		c.Next()
	}
}
