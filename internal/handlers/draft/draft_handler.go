// internal/handlers/draft/draft_handler.go
package draft

import (
	"net/http"
	"strconv"

	"visrec-admin/internal/domain/draft"
	"visrec-admin/internal/middleware"
	"visrec-admin/internal/pkg/response"
	draftUsecase "visrec-admin/internal/service/draft"

	"github.com/gin-gonic/gin"
)

type DraftHandler struct {
	draftService *draftUsecase.DraftService
}

func NewDraftHandler(draftService *draftUsecase.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Generate handles POST /api/gemini
func (h *DraftHandler) Generate(c *gin.Context) {
	var req draft.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Invalid request body", nil)
		return
	}
	if req.Prompt == "" {
		response.ValidationError(c, "Missing required field: prompt", nil)
		return
	}

	actor := middleware.GetEmail(c)
	resp, err := h.draftService.Generate(c.Request.Context(), &req, actor)
	if err != nil {
		response.FromError(c, err, "Failed to generate content.")
		return
	}

	if limit, remaining, ok := h.draftService.Quota(c.Request.Context(), actor); ok {
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	}

	c.JSON(http.StatusOK, resp)
}
