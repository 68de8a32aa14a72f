// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"visrec-admin/internal/domain/auth"
	xerrors "visrec-admin/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Manager struct {
	client *redis.Client
	logger *zap.Logger
}

func NewManager(client *redis.Client, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		logger: logger,
	}
}

// CreateSession stores a new session in Redis and announces the signed-in identity
func (m *Manager) CreateSession(ctx context.Context, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := m.client.Set(ctx, m.sessionKey(session.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}

	m.publish(ctx, session.JTI, session.Identity())
	return nil
}

// GetSession retrieves a live session
func (m *Manager) GetSession(ctx context.Context, jti string) (*SessionData, error) {
	data, err := m.client.Get(ctx, m.sessionKey(jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// TouchSession updates the last activity timestamp, keeping the original expiry
func (m *Manager) TouchSession(ctx context.Context, jti string) error {
	session, err := m.GetSession(ctx, jti)
	if err != nil {
		return err
	}
	session.LastActivityAt = time.Now()

	updated, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.client.Set(ctx, m.sessionKey(jti), updated, ttl).Err()
}

// InvalidateSession removes a session and announces the sign-out
func (m *Manager) InvalidateSession(ctx context.Context, jti string) error {
	if err := m.client.Del(ctx, m.sessionKey(jti)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.publish(ctx, jti, nil)
	return nil
}

// IsTokenBlacklisted checks if a token is blacklisted
func (m *Manager) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := m.client.Exists(ctx, m.blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

// BlacklistToken adds a token to the blacklist
func (m *Manager) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return m.client.Set(ctx, m.blacklistKey(jti), "1", ttl).Err()
}

// SaveOAuthState remembers a sign-in CSRF state value
func (m *Manager) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	return m.client.Set(ctx, m.oauthStateKey(state), "1", ttl).Err()
}

// ConsumeOAuthState reports whether the state was issued and deletes it
func (m *Manager) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	_, err := m.client.GetDel(ctx, m.oauthStateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return true, nil
}

// Watch delivers the session's current identity, then every later sign-in or
// sign-out, to fn. Calls are sequential. The returned func unsubscribes.
func (m *Manager) Watch(ctx context.Context, jti string, fn func(*auth.Identity)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	pubsub := m.client.Subscribe(ctx, m.stateChannel(jti))
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to auth state: %w", err)
	}
	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()

		current, err := m.GetSession(ctx, jti)
		if err != nil && !errors.Is(err, xerrors.ErrSessionExpired) {
			m.logger.Warn("failed to read session for auth state",
				zap.String("session_id", jti),
				zap.Error(err),
			)
		}
		fn(current.Identity())

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev stateEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					m.logger.Warn("dropping malformed auth state event", zap.Error(err))
					continue
				}
				fn(ev.Identity)
			}
		}
	}()

	return cancel, nil
}

func (m *Manager) publish(ctx context.Context, jti string, identity *auth.Identity) {
	payload, err := json.Marshal(stateEvent{Identity: identity})
	if err != nil {
		return
	}
	if err := m.client.Publish(ctx, m.stateChannel(jti), payload).Err(); err != nil {
		m.logger.Warn("failed to publish auth state",
			zap.String("session_id", jti),
			zap.Error(err),
		)
	}
}

// Helper functions
func (m *Manager) sessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

func (m *Manager) blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}

func (m *Manager) oauthStateKey(state string) string {
	return fmt.Sprintf("oauth_state:%s", state)
}

func (m *Manager) stateChannel(jti string) string {
	return fmt.Sprintf("authstate:%s", jti)
}
