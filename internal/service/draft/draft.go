// internal/service/draft/draft.go
package draft

import (
	"context"
	"time"

	"visrec-admin/internal/domain/draft"
	xerrors "visrec-admin/internal/pkg/errors"
	"visrec-admin/internal/pkg/gemini"

	"go.uber.org/zap"
)

// FallbackText is returned instead of an error when the model is rate limited.
const FallbackText = "⚠️ AI Limit Reached: I'm currently unavailable due to high traffic or usage limits. Please try again later or continue writing manually."

const rateLimitScope = "draft"

// Generator is the text model behind the proxy.
type Generator interface {
	Configured() bool
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

// Limiter caps requests per subject in a window.
type Limiter interface {
	Allow(ctx context.Context, scope, subject string, maxRequests int64, window time.Duration) (bool, error)
	Remaining(ctx context.Context, scope, subject string, maxRequests int64) (int64, error)
}

type DraftService struct {
	generator  Generator
	limiter    Limiter
	rateLimit  int64
	rateWindow time.Duration
	logger     *zap.Logger
}

// NewDraftService builds the proxy. A nil limiter or a zero limit disables
// per-user limiting.
func NewDraftService(generator Generator, limiter Limiter, rateLimit int64, rateWindow time.Duration, logger *zap.Logger) *DraftService {
	return &DraftService{
		generator:  generator,
		limiter:    limiter,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
		logger:     logger,
	}
}

// Generate forwards the prompt to the model. Quota and rate-limit failures
// come back as FallbackText with no error.
func (s *DraftService) Generate(ctx context.Context, req *draft.GenerateRequest, actor string) (*draft.GenerateResponse, error) {
	if !s.generator.Configured() {
		return nil, xerrors.Configuration("Gemini API Key is not configured.")
	}

	if s.limited(ctx, actor) {
		s.logger.Warn("draft rate limit reached", zap.String("actor", actor))
		return &draft.GenerateResponse{Text: FallbackText}, nil
	}

	text, err := s.generator.GenerateContent(ctx, "", req.EffectivePrompt())
	if err != nil {
		s.logger.Error("gemini API error", zap.String("actor", actor), zap.Error(err))
		if gemini.IsQuotaExceeded(err) {
			return &draft.GenerateResponse{Text: FallbackText}, nil
		}
		return nil, xerrors.Provider("Failed to generate content.", err)
	}

	return &draft.GenerateResponse{Text: text}, nil
}

// Quota reports the per-user limit and how much of it is left. ok is false
// when no limit applies to actor.
func (s *DraftService) Quota(ctx context.Context, actor string) (limit, remaining int64, ok bool) {
	if s.limiter == nil || s.rateLimit <= 0 || actor == "" {
		return 0, 0, false
	}
	remaining, err := s.limiter.Remaining(ctx, rateLimitScope, actor, s.rateLimit)
	if err != nil {
		s.logger.Warn("draft rate limiter unavailable", zap.Error(err))
		return 0, 0, false
	}
	return s.rateLimit, remaining, true
}

func (s *DraftService) limited(ctx context.Context, actor string) bool {
	if s.limiter == nil || s.rateLimit <= 0 || actor == "" {
		return false
	}
	ok, err := s.limiter.Allow(ctx, rateLimitScope, actor, s.rateLimit, s.rateWindow)
	if err != nil {
		// the limiter is best effort
		s.logger.Warn("draft rate limiter unavailable", zap.Error(err))
		return false
	}
	return !ok
}
