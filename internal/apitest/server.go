// ABOUTME: In-memory notes API server for tests, built on echo.
// ABOUTME: Issues tokens, enforces bearer auth, and supports failure injection and request inspection.

package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/harper/notes/internal/models"
	"github.com/labstack/echo/v4"
)

// Request is one recorded call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type user struct {
	username string
	password string
	notes    []models.Note
}

type failure struct {
	method string
	status int
	msg    string
}

// Server is a fake notes API. The zero value is not usable; call New.
type Server struct {
	URL    string
	Prefix string

	srv *httptest.Server

	mu        sync.Mutex
	users     map[string]*user  // by email
	tokens    map[string]string // token -> email
	nextNote  int
	nextToken int
	requests  []Request
	failures  []failure
	omitToken bool
	hook      func(method, path string)
}

// New starts a server mounting the API under prefix (e.g. "/api").
func New(prefix string) *Server {
	s := &Server{
		Prefix: prefix,
		users:  make(map[string]*user),
		tokens: make(map[string]string),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record)

	g := e.Group(prefix)
	g.POST("/auth/register", s.handleRegister)
	g.POST("/auth/login", s.handleLogin)

	notes := g.Group("/notes", s.requireAuth)
	notes.GET("", s.handleList)
	notes.POST("", s.handleCreate)
	notes.PUT("/:id", s.handleUpdate)
	notes.DELETE("/:id", s.handleDelete)

	s.srv = httptest.NewServer(e)
	s.URL = s.srv.URL
	return s
}

func (s *Server) Close() {
	s.srv.Close()
}

// AddUser registers an account directly.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &user{username: localPart(email), password: password}
}

// IssueToken returns a valid token for an existing user.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(email)
}

// Seed stores notes for a user as if created earlier. IDs are kept as given.
func (s *Server) Seed(email string, notes ...models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[email]
	u.notes = append(u.notes, notes...)
	s.nextNote += len(notes)
}

// Notes returns a copy of a user's stored notes.
func (s *Server) Notes(email string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil
	}
	return append([]models.Note(nil), u.notes...)
}

// HasUser reports whether an account exists.
func (s *Server) HasUser(email string) (username string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return "", false
	}
	return u.username, true
}

// ExpireTokens invalidates every issued token.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// FailNext makes the next request with the given method ("" for any) fail.
func (s *Server) FailNext(method string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, status: status, msg: msg})
}

// OmitToken makes login succeed without returning a token.
func (s *Server) OmitToken(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitToken = omit
}

// SetHook installs a function called at the start of every request,
// outside the server lock. Tests use it to hold or reorder responses.
func (s *Server) SetHook(fn func(method, path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        req.Method,
			Path:          req.URL.Path,
			Authorization: req.Header.Get("Authorization"),
			RequestID:     req.Header.Get("X-Request-ID"),
		})
		hook := s.hook
		var injected *failure
		for i, f := range s.failures {
			if f.method == "" || f.method == req.Method {
				injected = &f
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		if hook != nil {
			hook(req.Method, req.URL.Path)
		}
		if injected != nil {
			return c.JSON(injected.status, echo.Map{"message": injected.msg})
		}
		return next(c)
	}
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
		}

		s.mu.Lock()
		email, valid := s.tokens[token]
		s.mu.Unlock()
		if !valid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
		}

		c.Set("email", email)
		return next(c)
	}
}

func (s *Server) handleRegister(c echo.Context) error {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Email]; exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
	}
	s.users[in.Email] = &user{username: in.Username, password: in.Password}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

func (s *Server) handleLogin(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[in.Email]
	if !ok || u.password != in.Password {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
	}
	if s.omitToken {
		return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": s.issueTokenLocked(in.Email)})
}

func (s *Server) handleList(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.users[c.Get("email").(string)].notes
	if notes == nil {
		notes = []models.Note{}
	}
	return c.JSON(http.StatusOK, notes)
}

func (s *Server) handleCreate(c echo.Context) error {
	var in models.NoteInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNote++
	now := time.Now().UTC()
	note := models.Note{
		ID:        fmt.Sprintf("n%d", s.nextNote),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u := s.users[c.Get("email").(string)]
	u.notes = append(u.notes, note)
	return c.JSON(http.StatusCreated, note)
}

func (s *Server) handleUpdate(c echo.Context) error {
	var in models.NoteInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[c.Get("email").(string)]
	for i := range u.notes {
		if u.notes[i].ID == c.Param("id") {
			u.notes[i].Title = in.Title
			u.notes[i].Content = in.Content
			u.notes[i].UpdatedAt = time.Now().UTC()
			return c.JSON(http.StatusOK, u.notes[i])
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"message": "Note not found"})
}

func (s *Server) handleDelete(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[c.Get("email").(string)]
	for i := range u.notes {
		if u.notes[i].ID == c.Param("id") {
			u.notes = append(u.notes[:i], u.notes[i+1:]...)
			return c.JSON(http.StatusOK, echo.Map{"message": "Note deleted"})
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"message": "Note not found"})
}

func (s *Server) issueTokenLocked(email string) string {
	s.nextToken++
	token := fmt.Sprintf("T%d", s.nextToken)
	s.tokens[token] = email
	return token
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
