// internal/handlers/translation/translation_handler.go
package translation

import (
	"net/http"

	"visrec-admin/internal/domain/translation"
	"visrec-admin/internal/pkg/response"
	translationUsecase "visrec-admin/internal/service/translation"

	"github.com/gin-gonic/gin"
)

type TranslationHandler struct {
	translationService *translationUsecase.TranslationService
}

func NewTranslationHandler(translationService *translationUsecase.TranslationService) *TranslationHandler {
	return &TranslationHandler{translationService: translationService}
}

// Load handles GET /api/translations/load?lang=en|th
func (h *TranslationHandler) Load(c *gin.Context) {
	lang, err := h.translationService.ResolveLang(c.Query("lang"))
	if err != nil {
		response.FromError(c, err, "Invalid language")
		return
	}

	resp, err := h.translationService.Load(c.Request.Context(), lang)
	if err != nil {
		response.FromError(c, err, "Failed to read translations")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveNew handles POST /api/translations/save-new
func (h *TranslationHandler) SaveNew(c *gin.Context) {
	var req translation.SaveNewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Invalid request body", nil)
		return
	}

	msg, err := h.translationService.SaveNew(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "Failed to save translations")
		return
	}

	response.Success(c, http.StatusOK, msg, nil)
}

// Save handles POST /api/translations/save
func (h *TranslationHandler) Save(c *gin.Context) {
	var req translation.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Invalid request body", nil)
		return
	}

	msg, err := h.translationService.Save(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "Failed to save translation")
		return
	}

	response.Success(c, http.StatusOK, msg, nil)
}

// Diff handles GET /api/translations/diff
func (h *TranslationHandler) Diff(c *gin.Context) {
	resp, err := h.translationService.Diff(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "Failed to compare translations")
		return
	}

	c.JSON(http.StatusOK, resp)
}
