// ABOUTME: Tests for the session manager
// ABOUTME: Covers login, register, logout, forced logout and token restore against a fake API

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/notes/internal/api"
	"github.com/harper/notes/internal/apitest"
	"github.com/harper/notes/internal/models"
	"github.com/harper/notes/internal/state"
	"github.com/harper/notes/internal/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv   *apitest.Server
	st    *state.State
	store tokenstore.Store
	mgr   *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New("/api")
	t.Cleanup(srv.Close)

	store, err := tokenstore.Open("sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client, err := api.NewClient(srv.URL, api.WithPathPrefix("/api"), api.WithTokenSource(tokenstore.Source{Store: store}))
	require.NoError(t, err)

	st := state.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		srv:   srv,
		st:    st,
		store: store,
		mgr:   NewManager(st, client, store, logger),
	}
}

func storedToken(t *testing.T, s tokenstore.Store) string {
	t.Helper()
	tok, err := tokenstore.LoadToken(s)
	require.NoError(t, err)
	return tok
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")

	sess, err := f.mgr.Login(context.Background(), "a@b.com", "pw1")
	require.NoError(t, err)

	assert.True(t, sess.Authenticated)
	assert.True(t, f.mgr.IsAuthenticated())
	assert.Equal(t, "T1", storedToken(t, f.store))
	assert.Equal(t, "T1", f.st.Token())
	assert.Empty(t, f.st.Error())
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")

	sess, err := f.mgr.Login(context.Background(), "a@b.com", "bad")
	require.Error(t, err)

	assert.False(t, sess.Authenticated)
	assert.Equal(t, "Login failed: Invalid credentials", f.st.Error())
	assert.Empty(t, storedToken(t, f.store))
}

func TestLoginMissingFieldsMakesNoRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.Login(context.Background(), "", "pw")
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.mgr.Login(context.Background(), "a@b.com", "")
	assert.True(t, errors.Is(err, models.ErrValidation))

	assert.Equal(t, 0, f.srv.RequestCount())
	assert.False(t, f.mgr.IsAuthenticated())
}

func TestLoginWithoutTokenStaysLoggedOut(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")
	f.srv.OmitToken(true)

	_, err := f.mgr.Login(context.Background(), "a@b.com", "pw1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoToken))
	assert.False(t, f.mgr.IsAuthenticated())
	assert.Equal(t, "Login failed: no token returned from server", f.st.Error())
}

func TestLoginServerErrorWithoutMessageUsesFallback(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")
	f.srv.FailNext(http.MethodPost, http.StatusInternalServerError, "")

	_, err := f.mgr.Login(context.Background(), "a@b.com", "pw1")
	require.Error(t, err)
	assert.Equal(t, "Login failed: Check credentials", f.st.Error())
}

func TestLoginClearsPreviousNotice(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")
	f.st.SetNotice(ExpiredNotice)

	_, err := f.mgr.Login(context.Background(), "a@b.com", "pw1")
	require.NoError(t, err)
	assert.Empty(t, f.st.Notice())
}

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)

	sess, err := f.mgr.Register(context.Background(), "new.user@b.com", "pw")
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)

	username, ok := f.srv.HasUser("new.user@b.com")
	require.True(t, ok)
	assert.Equal(t, "new.user", username)

	var paths []string
	for _, r := range f.srv.Requests() {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"/api/auth/register", "/api/auth/login"}, paths)
}

func TestRegisterExistingUser(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")

	_, err := f.mgr.Register(context.Background(), "a@b.com", "pw1")
	require.Error(t, err)
	assert.False(t, f.mgr.IsAuthenticated())
	assert.Equal(t, "Registration failed: User already exists", f.st.Error())
	assert.Equal(t, 1, f.srv.RequestCount(), "login must not follow a failed registration")
}

func TestLoginTransportFailureShowsCause(t *testing.T) {
	f := newFixture(t)
	f.srv.Close()

	_, err := f.mgr.Login(context.Background(), "a@b.com", "pw1")
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsTransport())
	assert.True(t, strings.HasPrefix(f.st.Error(), "Login failed: "))
	assert.NotEqual(t, "Login failed: Check credentials", f.st.Error())
}

func TestRegisterReportsLoginFailureAsRegistration(t *testing.T) {
	f := newFixture(t)
	f.srv.OmitToken(true)

	sess, err := f.mgr.Register(context.Background(), "x@b.com", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoToken))
	assert.False(t, sess.Authenticated)
	assert.Equal(t, "Registration failed: no token returned from server", f.st.Error())
	assert.Empty(t, storedToken(t, f.store))
}

func TestRegisterLoginStepServerError(t *testing.T) {
	f := newFixture(t)
	f.srv.SetHook(func(method, path string) {
		if path == "/api/auth/register" {
			f.srv.FailNext(http.MethodPost, http.StatusServiceUnavailable, "Login temporarily disabled")
		}
	})

	_, err := f.mgr.Register(context.Background(), "x@b.com", "pw")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, api.StatusCode(err))
	assert.Equal(t, "Registration failed: Login temporarily disabled", f.st.Error())
	assert.False(t, f.mgr.IsAuthenticated())

	_, registered := f.srv.HasUser("x@b.com")
	assert.True(t, registered)
}

func TestLogoutClearsTokenAndNotes(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")
	_, err := f.mgr.Login(context.Background(), "a@b.com", "pw1")
	require.NoError(t, err)

	epoch := f.st.Epoch()
	f.st.ApplyCreated(epoch, models.Note{ID: "n1", Title: "x", Content: "y"})
	f.st.SetDraft(&models.EditDraft{NoteID: "n1"})

	require.NoError(t, f.mgr.Logout())

	assert.False(t, f.mgr.IsAuthenticated())
	assert.Empty(t, storedToken(t, f.store))
	assert.Empty(t, f.st.Notes())
	assert.Nil(t, f.st.Draft())
}

func TestLogoutWhenLoggedOutIsHarmless(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.mgr.Logout())
	assert.False(t, f.mgr.IsAuthenticated())
}

func TestForceLogoutSetsNotice(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("a@b.com", "pw1")
	_, err := f.mgr.Login(context.Background(), "a@b.com", "pw1")
	require.NoError(t, err)

	f.mgr.ForceLogout("401 on list notes")

	assert.False(t, f.mgr.IsAuthenticated())
	assert.Equal(t, ExpiredNotice, f.st.Notice())
	assert.Empty(t, storedToken(t, f.store))
}

func TestInitRestoresPersistedToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, tokenstore.SaveToken(f.store, "T9"))

	sess, err := f.mgr.Init()
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "T9", f.st.Token())
}

func TestInitWithoutToken(t *testing.T) {
	f := newFixture(t)

	sess, err := f.mgr.Init()
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "a", UsernameFromEmail("a@b.com"))
	assert.Equal(t, "plain", UsernameFromEmail("plain"))
	assert.Equal(t, "x", UsernameFromEmail("x@y@z"))
}
