// internal/service/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"visrec-admin/internal/authstate"
	"visrec-admin/internal/domain/auth"
	xerrors "visrec-admin/internal/pkg/errors"
	"visrec-admin/internal/pkg/identity"
	"visrec-admin/internal/pkg/jwt"
	"visrec-admin/internal/pkg/session"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const oauthStateTTL = 10 * time.Minute

var (
	// ErrNotAuthorized is returned when a signed-in account is not on the allowlist.
	ErrNotAuthorized = xerrors.New(xerrors.KindUnauthorized,
		"You are not authorized to access the admin panel.", xerrors.ErrUnauthorized)

	// ErrAuthNotAvailable is returned when sign-in did not produce an account email.
	ErrAuthNotAvailable = xerrors.New(xerrors.KindUnauthorized,
		"Auth not available", xerrors.ErrAuthNotAvailable)

	ErrInvalidState = xerrors.New(xerrors.KindUnauthorized,
		"Sign-in expired, please try again.", xerrors.ErrUnauthorized)
)

type AuthService struct {
	provider       identity.Provider
	checker        *AllowlistChecker
	jwtManager     *jwt.Manager
	sessionManager *session.Manager
	states         *authstate.Registry
	logger         *zap.Logger
}

func NewAuthService(
	provider identity.Provider,
	checker *AllowlistChecker,
	jwtManager *jwt.Manager,
	sessionManager *session.Manager,
	states *authstate.Registry,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		provider:       provider,
		checker:        checker,
		jwtManager:     jwtManager,
		sessionManager: sessionManager,
		states:         states,
		logger:         logger,
	}
}

// ========== Sign in ==========

// BeginSignIn returns the Google consent URL for a fresh CSRF state.
func (s *AuthService) BeginSignIn(ctx context.Context) (string, error) {
	state := generateState()
	if err := s.sessionManager.SaveOAuthState(ctx, state, oauthStateTTL); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}
	return s.provider.AuthCodeURL(state), nil
}

// SignInInteractive completes the Google flow. The allowlist is checked again
// here so a denied account never gets a session, even briefly.
func (s *AuthService) SignInInteractive(ctx context.Context, code, state string, meta auth.SignInMeta) (*auth.SignInResult, error) {
	ok, err := s.sessionManager.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to check oauth state: %w", err)
	}
	if !ok {
		return nil, ErrInvalidState
	}

	id, token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("login error", zap.Error(err))
		return nil, xerrors.New(xerrors.KindUnauthorized, "Google sign-in failed.", err)
	}
	if !id.HasEmail() {
		s.logger.Warn("sign-in returned no email", zap.String("subject", id.ID))
		s.revoke(ctx, token)
		return nil, ErrAuthNotAvailable
	}

	if !s.checker.IsAllowed(ctx, id.Email) {
		s.logger.Warn("sign-in denied by allowlist", zap.String("email", id.Email))
		s.revoke(ctx, token)
		return nil, ErrNotAuthorized
	}

	signed, jti, expiresAt, err := s.jwtManager.Generator.GenerateSessionToken(id.ID, id.Email, id.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	sessionData := &session.SessionData{
		JTI:            jti,
		Subject:        id.ID,
		Email:          id.Email,
		Name:           id.Name,
		Picture:        id.Picture,
		IPAddress:      meta.IPAddress,
		UserAgent:      meta.UserAgent,
		Provider:       "google",
		OAuthToken:     token,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      expiresAt,
	}
	if err := s.sessionManager.CreateSession(ctx, sessionData); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// start tracking state so the first page load is already settled
	s.states.Get(jti)

	s.logger.Info("admin signed in",
		zap.String("email", id.Email),
		zap.String("session_id", jti),
	)

	return &auth.SignInResult{
		Token:     signed,
		SessionID: jti,
		ExpiresAt: expiresAt,
		User:      *id,
	}, nil
}

// ========== Sign out ==========

// SignOutSession revokes the Google grant, then drops the session locally.
// A failed revoke is logged and returned; the session is left as it was.
func (s *AuthService) SignOutSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessionManager.GetSession(ctx, sessionID)
	if err != nil && !errors.Is(err, xerrors.ErrSessionExpired) {
		return fmt.Errorf("failed to load session: %w", err)
	}

	if sess != nil {
		if err := s.provider.Revoke(ctx, sess.OAuthToken); err != nil {
			s.logger.Error("logout error", zap.String("session_id", sessionID), zap.Error(err))
			return fmt.Errorf("failed to sign out: %w", err)
		}
	}

	if err := s.sessionManager.InvalidateSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	if sess != nil {
		if err := s.sessionManager.BlacklistToken(ctx, sessionID, time.Until(sess.ExpiresAt)); err != nil {
			return fmt.Errorf("failed to blacklist token: %w", err)
		}
	}

	s.states.Reset(sessionID)
	return nil
}

// ========== Tokens ==========

func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.VerifySessionToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	// Check blacklist
	blacklisted, err := s.sessionManager.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return nil, fmt.Errorf("token has been revoked: %w", xerrors.ErrSessionExpired)
	}

	// Verify session and record activity
	if err := s.sessionManager.TouchSession(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("session not found or expired: %w", err)
	}

	return claims, nil
}

// SessionState returns the auth state of a session, waiting up to wait for the
// first event to settle.
func (s *AuthService) SessionState(ctx context.Context, sessionID string, wait time.Duration) authstate.State {
	if sessionID == "" {
		return authstate.State{}
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return s.states.Get(sessionID).WaitSettled(ctx)
}

// Machine returns the live state machine of a session.
func (s *AuthService) Machine(sessionID string) *authstate.Machine {
	return s.states.Get(sessionID)
}

func (s *AuthService) revoke(ctx context.Context, token *oauth2.Token) {
	if err := s.provider.Revoke(ctx, token); err != nil {
		s.logger.Warn("failed to revoke google token", zap.Error(err))
	}
}

func generateState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
