// ABOUTME: Session manager: login, registration, logout and forced logout.
// ABOUTME: Owns the authenticated flag in shared state and the persisted token.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harper/notes/internal/api"
	"github.com/harper/notes/internal/models"
	"github.com/harper/notes/internal/state"
	"github.com/harper/notes/internal/tokenstore"
)

const (
	loginFailedPrefix    = "Login failed: "
	registerFailedPrefix = "Registration failed: "
	loginFallback        = "Check credentials"
	registerFallback     = "Check input"

	// ExpiredNotice is shown after the server rejects the session token.
	ExpiredNotice = "Session expired. Please login again."
)

// ErrNoToken is returned when the server accepts a login but sends no token.
var ErrNoToken = errors.New("no token returned from server")

// AuthAPI is the part of the remote API the session manager needs.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, reg api.Registration) error
}

// Session is the observable login state.
type Session struct {
	Authenticated bool
}

type Manager struct {
	state  *state.State
	auth   AuthAPI
	store  tokenstore.Store
	logger *slog.Logger
}

func NewManager(st *state.State, auth AuthAPI, store tokenstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{state: st, auth: auth, store: store, logger: logger}
}

// Init restores a persisted session, if any. The token is not validated
// here; the first rejected request forces a logout.
func (m *Manager) Init() (Session, error) {
	token, err := tokenstore.LoadToken(m.store)
	if err != nil {
		return m.Session(), err
	}
	if token != "" {
		m.state.SignIn(token)
		m.logger.Debug("restored session")
	}
	return m.Session(), nil
}

func (m *Manager) Session() Session {
	return Session{Authenticated: m.state.Authenticated()}
}

// IsAuthenticated reports whether a token is held.
func (m *Manager) IsAuthenticated() bool {
	return m.state.Authenticated()
}

// Login exchanges credentials for a token, persists it and marks the session
// authenticated. On failure the session is unchanged and the user-visible
// error is set.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := fmt.Errorf("%w: email and password required", models.ErrValidation)
		m.state.SetError(loginFailedPrefix + "Email and password required")
		return m.Session(), err
	}

	resp, err := m.auth.Login(ctx, api.Credentials{Email: email, Password: password})
	if err == nil && resp.Token == "" {
		err = ErrNoToken
	}
	if err != nil {
		m.logger.Warn("login failed", "email", email, "error", err)
		m.state.SetError(loginFailedPrefix + failureReason(err, loginFallback))
		return m.Session(), fmt.Errorf("login: %w", err)
	}

	if err := tokenstore.SaveToken(m.store, resp.Token); err != nil {
		m.state.SetError(loginFailedPrefix + err.Error())
		return m.Session(), err
	}

	m.state.SetError("")
	m.state.SetNotice("")
	m.state.SignIn(resp.Token)
	m.logger.Info("logged in", "email", email)
	return m.Session(), nil
}

// Register creates an account with the email's local part as username and
// then logs in with the same credentials.
func (m *Manager) Register(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := fmt.Errorf("%w: email and password required", models.ErrValidation)
		m.state.SetError(registerFailedPrefix + "Email and password required")
		return m.Session(), err
	}

	reg := api.Registration{
		Username: UsernameFromEmail(email),
		Email:    email,
		Password: password,
	}
	if err := m.auth.Register(ctx, reg); err != nil {
		m.logger.Warn("registration failed", "email", email, "error", err)
		m.state.SetError(registerFailedPrefix + failureReason(err, registerFallback))
		return m.Session(), fmt.Errorf("register: %w", err)
	}
	m.logger.Info("registered", "email", email, "username", reg.Username)

	sess, err := m.Login(ctx, email, password)
	if err != nil {
		m.state.SetError(registerFailedPrefix + failureReason(err, registerFallback))
		return sess, fmt.Errorf("register: %w", err)
	}
	return sess, nil
}

// Logout forgets the token and all note data. The session ends even when the
// persisted token cannot be removed; that failure is returned.
func (m *Manager) Logout() error {
	err := tokenstore.ClearToken(m.store)
	if err != nil {
		m.logger.Error("failed to clear token", "error", err)
	}
	m.state.SignOut()
	m.logger.Info("logged out")
	return err
}

// ForceLogout ends the session after the server rejected the token and tells
// the user why.
func (m *Manager) ForceLogout(reason string) {
	m.logger.Warn("session rejected by server", "reason", reason)
	m.state.SetNotice(ExpiredNotice)
	_ = m.Logout()
}

// UsernameFromEmail returns the part of email before the first "@".
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// failureReason picks the most specific human-readable cause of an auth
// failure, or fallback when there is none.
func failureReason(err error, fallback string) string {
	if msg := api.Message(err); msg != "" {
		return msg
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.IsTransport() && apiErr.Err != nil {
			return apiErr.Err.Error()
		}
		return fallback
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
