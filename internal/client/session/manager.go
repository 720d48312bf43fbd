package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/omnisent/omnisent/internal/client/models"
	"github.com/omnisent/omnisent/internal/client/repositories/credentials"
	"github.com/omnisent/omnisent/internal/logging"
)

// RevalidateInterval is how often the manager independently re-checks expiry,
// as a safety net for timers missed while the process was suspended.
const RevalidateInterval = 5 * time.Minute

// Manager owns exactly one current credential. All state transitions go
// through it; callers get read-only views. Logout is idempotent, so the
// auto-logout timer and the periodic re-validation check may race freely.
type Manager struct {
	store  credentials.Repository
	logger logging.Logger

	mu       sync.Mutex
	token    string
	claims   *Claims
	user     *models.User
	onExpire func()
	timer    *time.Timer
}

func NewManager(store credentials.Repository, logger logging.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Load restores the credential from scoped storage. Expired or malformed
// material is discarded rather than surfaced as an error.
func (m *Manager) Load(ctx context.Context) error {
	raw, err := m.store.Get(ctx, credentials.KeyToken)
	if err != nil {
		return err
	}
	token := string(raw)
	if IsExpired(token) {
		return m.Clear(ctx)
	}

	var user *models.User
	if rawUser, err := m.store.Get(ctx, credentials.KeyUser); err == nil && rawUser != nil {
		var u models.User
		if json.Unmarshal(rawUser, &u) == nil {
			user = &u
		}
	}

	m.mu.Lock()
	m.token = token
	m.claims = Decode(token)
	m.user = user
	m.mu.Unlock()
	return nil
}

// Store replaces the current credential wholesale and persists it. A
// structurally malformed token is treated as absent: the stored credential
// is cleared and no error is returned.
func (m *Manager) Store(ctx context.Context, token string, user *models.User) error {
	if !WellFormed(token) {
		return m.Clear(ctx)
	}

	if err := m.store.Set(ctx, credentials.KeyToken, []byte(token)); err != nil {
		return err
	}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := m.store.Set(ctx, credentials.KeyUser, raw); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.token = token
	m.claims = Decode(token)
	m.user = user
	m.mu.Unlock()
	return nil
}

// Clear removes all credential material, stored and in-memory. Idempotent.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.claims = nil
	m.user = nil
	m.mu.Unlock()
	return m.store.Clear(ctx)
}

// Token returns the current raw token, or "" when unauthenticated.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Claims returns the decoded claims of the current token, or nil.
func (m *Manager) Claims() *Claims {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims
}

// User returns the authenticated user. When no backend user record was
// stored, a minimal one is synthesized from the token claims.
func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user != nil {
		return m.user
	}
	if m.claims == nil {
		return nil
	}
	return &models.User{
		ID:       m.claims.Subject,
		Username: m.claims.Username,
		Role:     m.claims.Role,
		IsActive: true,
	}
}

// IsAuthenticated reports whether a usable (present, decodable, unexpired)
// credential is held.
func (m *Manager) IsAuthenticated() bool {
	return !IsExpired(m.Token())
}

// HasRole reports whether the current subject carries at least the given role.
func (m *Manager) HasRole(role models.Role) bool {
	u := m.User()
	return u != nil && u.Role.AtLeast(role)
}

// IsAdmin reports whether the current subject is an administrator.
func (m *Manager) IsAdmin() bool {
	u := m.User()
	return u != nil && u.Role == models.RoleAdmin
}

// ScheduleAutoLogout arms a one-shot timer that fires when the current
// credential is considered expired (its expiration minus ExpiryBuffer),
// clears stored credentials, and invokes onExpire. Any previously armed
// timer is stopped first, so at most one pending timer exists per session.
// The returned function cancels the timer without logging out.
func (m *Manager) ScheduleAutoLogout(onExpire func()) (stop func()) {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.onExpire = onExpire

	fireIn := TimeRemaining(m.token) - ExpiryBuffer
	if fireIn < 0 {
		fireIn = 0
	}
	timer := time.AfterFunc(fireIn, m.expire)
	m.timer = timer
	m.mu.Unlock()

	return func() { timer.Stop() }
}

// StartRevalidation re-checks expiry every interval and forces logout if the
// timer-based mechanism was missed. Blocks until ctx is done; run it in its
// own goroutine.
func (m *Manager) StartRevalidation(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = RevalidateInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			token := m.token
			m.mu.Unlock()
			if token != "" && IsExpired(token) {
				if m.logger != nil {
					m.logger.Warn(ctx, "credential expired, forcing logout")
				}
				m.expire()
			}
		case <-ctx.Done():
			return
		}
	}
}

// expire performs the logout transition exactly once per credential: it wipes
// the credential and then invokes the registered callback. Safe to call from
// both the timer and the re-validation loop.
func (m *Manager) expire() {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return
	}
	m.token = ""
	m.claims = nil
	m.user = nil
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	onExpire := m.onExpire
	m.mu.Unlock()

	if err := m.store.Clear(context.Background()); err != nil && m.logger != nil {
		m.logger.Error(context.Background(), "failed to clear stored credentials", "error", err)
	}
	if onExpire != nil {
		onExpire()
	}
}
