// internal/app/router.go
package app

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"visrec-admin/internal/authstate"
	authHandler "visrec-admin/internal/handlers/auth"
	draftHandler "visrec-admin/internal/handlers/draft"
	translationHandler "visrec-admin/internal/handlers/translation"
	wsHandler "visrec-admin/internal/handlers/websocket"
	"visrec-admin/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler        *authHandler.AuthHandler
	DraftHandler       *draftHandler.DraftHandler
	TranslationHandler *translationHandler.TranslationHandler
	WSHandler          *wsHandler.WebSocketHandler
	AuthMiddleware     *middleware.AuthMiddleware

	RequireAPIAuth bool
	AdminStaticDir string
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.GET("/google/login", h.AuthHandler.GoogleLogin)
		authPublic.GET("/google/callback", h.AuthHandler.GoogleCallback)
	}

	authSession := api.Group("/auth")
	authSession.Use(h.AuthMiddleware.OptionalAuth())
	{
		authSession.POST("/logout", h.AuthHandler.Logout)
		authSession.GET("/session", h.AuthHandler.Session)
		authSession.GET("/ws", h.WSHandler.HandleConnection)
	}

	// ==================== Admin API ====================
	protected := api.Group("")
	if h.RequireAPIAuth {
		protected.Use(h.AuthMiddleware.Auth())
	} else {
		logger.Warn("API authentication is disabled")
		protected.Use(h.AuthMiddleware.OptionalAuth())
	}
	{
		protected.POST("/gemini", h.DraftHandler.Generate)

		protected.GET("/translations/load", h.TranslationHandler.Load)
		protected.POST("/translations/save-new", h.TranslationHandler.SaveNew)
		protected.POST("/translations/save", h.TranslationHandler.Save)
		protected.GET("/translations/diff", h.TranslationHandler.Diff)
	}

	// ==================== Admin pages ====================
	if h.AdminStaticDir == "" {
		logger.Info("ADMIN_STATIC_DIR not set, admin pages are not served")
		return
	}
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware.OptionalAuth(), h.AuthMiddleware.RouteGuard(authstate.LoginPath))
	{
		admin.GET("/*filepath", serveAdmin(h.AdminStaticDir))
	}
}

// serveAdmin serves the built admin bundle. Unknown paths fall back to
// index.html so client-side routes resolve.
func serveAdmin(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := path.Clean("/" + c.Param("filepath"))
		name := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(rel, "/")))

		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		if info, err := os.Stat(name + ".html"); err == nil && !info.IsDir() {
			c.File(name + ".html")
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}
