// ABOUTME: Tests for the notes API client against the in-memory server.
// ABOUTME: Covers the bearer hook, path prefix, and structured errors.

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/harper/notes/internal/apitest"
	"github.com/harper/notes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	token string
	err   error
}

func (s *staticToken) Token() (string, error) { return s.token, s.err }

func setup(t *testing.T) (*Client, *apitest.Server, *staticToken) {
	t.Helper()
	srv := apitest.New("/api")
	t.Cleanup(srv.Close)

	srv.AddUser("a@b.com", "pw1")
	tok := &staticToken{}
	c, err := NewClient(srv.URL, WithPathPrefix("/api"), WithTokenSource(tok))
	require.NoError(t, err)
	return c, srv, tok
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)

	_, err = NewClient("://nope")
	assert.Error(t, err)
}

func TestWithTimeoutLeavesCallerClientAlone(t *testing.T) {
	hc := &http.Client{}
	c, err := NewClient("http://example.com", WithHTTPClient(hc), WithTimeout(3*time.Second))
	require.NoError(t, err)

	assert.Zero(t, hc.Timeout)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, hc, c.httpClient)

	c, err = NewClient("http://example.com", WithTimeout(3*time.Second), WithHTTPClient(hc))
	require.NoError(t, err)
	assert.Zero(t, hc.Timeout)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestURLPrefixNormalization(t *testing.T) {
	tests := []struct {
		base, prefix, want string
	}{
		{"http://h", "/api", "http://h/api/notes"},
		{"http://h/", "api/", "http://h/api/notes"},
		{"http://h/base", "", "http://h/base/notes"},
		{"http://h", "/", "http://h/notes"},
	}
	for _, tt := range tests {
		c, err := NewClient(tt.base, WithPathPrefix(tt.prefix))
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.URL("/notes"))
	}
}

func TestLoginReturnsToken(t *testing.T) {
	ctx := context.Background()
	c, srv, _ := setup(t)

	resp, err := c.Login(ctx, Credentials{Email: "a@b.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "T1", resp.Token)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/auth/login", reqs[0].Path)
	assert.Empty(t, reqs[0].Authorization)
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestLoginRejectedCarriesServerMessage(t *testing.T) {
	c, _, _ := setup(t)

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", Message(err))
	assert.False(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "login: POST /api/auth/login: 400")
}

func TestRegister(t *testing.T) {
	c, srv, _ := setup(t)

	err := c.Register(context.Background(), Registration{Username: "new", Email: "new@b.com", Password: "pw"})
	require.NoError(t, err)

	username, ok := srv.HasUser("new@b.com")
	require.True(t, ok)
	assert.Equal(t, "new", username)
}

func TestBearerHeaderAttachedWhenTokenPresent(t *testing.T) {
	ctx := context.Background()
	c, srv, tok := setup(t)
	tok.token = srv.IssueToken("a@b.com")

	_, err := c.ListNotes(ctx)
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+tok.token, reqs[0].Authorization)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	c, _, _ := setup(t)

	_, err := c.ListNotes(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestTokenSourceErrorFailsRequest(t *testing.T) {
	c, srv, tok := setup(t)
	tok.err = errors.New("disk on fire")

	_, err := c.ListNotes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read token")
	assert.Equal(t, 0, srv.RequestCount())
}

func TestNotesCRUD(t *testing.T) {
	ctx := context.Background()
	c, srv, tok := setup(t)
	tok.token = srv.IssueToken("a@b.com")

	notes, err := c.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.NotNil(t, notes)

	created, err := c.CreateNote(ctx, models.NoteInput{Title: "Gym", Content: "Leg day"})
	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := c.UpdateNote(ctx, created.ID, models.NoteInput{Title: "Gym v2", Content: "Arms"})
	require.NoError(t, err)
	assert.Equal(t, "n1", updated.ID)
	assert.Equal(t, "Gym v2", updated.Title)

	notes, err = c.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Arms", notes[0].Content)

	require.NoError(t, c.DeleteNote(ctx, created.ID))
	assert.Empty(t, srv.Notes("a@b.com"))

	var paths []string
	for _, r := range srv.Requests() {
		paths = append(paths, r.Method+" "+r.Path)
	}
	assert.Equal(t, []string{
		"GET /api/notes",
		"POST /api/notes",
		"PUT /api/notes/n1",
		"GET /api/notes",
		"DELETE /api/notes/n1",
	}, paths)
}

func TestDeleteMissingNote(t *testing.T) {
	c, srv, tok := setup(t)
	tok.token = srv.IssueToken("a@b.com")

	err := c.DeleteNote(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, "Note not found", Message(err))
}

func TestTransportError(t *testing.T) {
	srv := apitest.New("/api")
	c, err := NewClient(srv.URL, WithPathPrefix("/api"))
	require.NoError(t, err)
	srv.Close()

	_, err = c.ListNotes(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsTransport())
	assert.False(t, IsUnauthorized(err))
	assert.Empty(t, Message(err))
}

func TestServerErrorWithoutJSONBody(t *testing.T) {
	srv := http.NewServeMux()
	srv.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	ts := newTestServer(t, srv)

	c, err := NewClient(ts)
	require.NoError(t, err)

	_, err = c.ListNotes(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Empty(t, Message(err))
	assert.True(t, strings.HasSuffix(err.Error(), "500 Internal Server Error"))
}

func TestInvalidJSONResponse(t *testing.T) {
	srv := http.NewServeMux()
	srv.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	})
	ts := newTestServer(t, srv)

	c, err := NewClient(ts)
	require.NoError(t, err)

	_, err = c.ListNotes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
