// internal/handlers/websocket/websocket.go
package handlers

import (
	"net/http"

	"visrec-admin/internal/middleware"
	"visrec-admin/internal/pkg/response"
	authUsecase "visrec-admin/internal/service/auth"
	ws "visrec-admin/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	authService *authUsecase.AuthService
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewWebSocketHandler(authService *authUsecase.AuthService, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		logger: logger,
	}
}

// HandleConnection streams auth state changes of the caller's session. It
// must run after OptionalAuth.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	jti, ok := middleware.GetJTI(c)
	if !ok {
		response.Unauthorized(c, "missing authentication token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	h.logger.Info("WebSocket client connected",
		zap.String("session_id", jti),
		zap.String("email", middleware.GetEmail(c)),
	)

	client := ws.NewClient(conn, jti, h.authService.Machine(jti), h.logger)
	client.Run()

	h.logger.Info("WebSocket client disconnected", zap.String("session_id", jti))
}
