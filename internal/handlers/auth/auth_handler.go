// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"net/url"
	"time"

	"visrec-admin/internal/authstate"
	"visrec-admin/internal/domain/auth"
	"visrec-admin/internal/middleware"
	xerrors "visrec-admin/internal/pkg/errors"
	"visrec-admin/internal/pkg/response"
	authUsecase "visrec-admin/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	adminHome  = "/admin"
	stateWait  = 3 * time.Second
	loginError = "Login failed"
)

type AuthHandler struct {
	authService  *authUsecase.AuthService
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// ========== Sign in ==========

// GoogleLogin redirects the browser to the Google account chooser
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	target, err := h.authService.BeginSignIn(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to start sign-in", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "Failed to start sign-in", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback finishes sign-in and lands on the admin home, or on the login
// page with the error message
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		h.logger.Info("sign-in cancelled", zap.String("reason", reason))
		h.redirectLogin(c, "Sign-in was cancelled.")
		return
	}

	meta := auth.SignInMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	res, err := h.authService.SignInInteractive(c.Request.Context(), c.Query("code"), c.Query("state"), meta)
	if err != nil {
		h.logger.Warn("sign-in failed", zap.String("ip", meta.IPAddress), zap.Error(err))
		h.redirectLogin(c, xerrors.MessageOf(err, loginError))
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, res.Token, maxAge, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusFound, adminHome)
}

// ========== Sign out ==========

// Logout signs the session out and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if jti, ok := middleware.GetJTI(c); ok {
		if err := h.authService.SignOutSession(c.Request.Context(), jti); err != nil {
			response.Error(c, http.StatusInternalServerError, "Failed to sign out", nil)
			return
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	response.Success(c, http.StatusOK, "Signed out", nil)
}

// ========== Session ==========

// Session returns the auth state of the caller's session
func (h *AuthHandler) Session(c *gin.Context) {
	state := authstate.State{}
	if jti, ok := middleware.GetJTI(c); ok {
		state = h.authService.SessionState(c.Request.Context(), jti, stateWait)
	}
	c.JSON(http.StatusOK, state.Response())
}

func (h *AuthHandler) redirectLogin(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, authstate.LoginPath+"?error="+url.QueryEscape(message))
}
