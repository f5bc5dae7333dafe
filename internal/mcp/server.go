// ABOUTME: MCP server exposing the remote notes to AI agents.
// ABOUTME: Every tool goes through the synchronizer, so session gating applies.

package mcp

import (
	"context"
	"errors"

	"github.com/harper/notes/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Notes is the synchronizer surface the server needs.
type Notes interface {
	LoadAll(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, title, content string) (models.Note, error)
	Update(ctx context.Context, id, title, content string) (models.Note, error)
	Delete(ctx context.Context, id string) error
	Find(ref string) (models.Note, error)
}

type Server struct {
	server *mcp.Server
	notes  Notes
}

func NewServer(notes Notes, version string) *Server {
	s := &Server{notes: notes}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "notes",
			Version: version,
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) Serve(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// resolve finds ref in the loaded collection, fetching the list once when
// it is not there yet.
func (s *Server) resolve(ctx context.Context, ref string) (models.Note, error) {
	n, err := s.notes.Find(ref)
	if err == nil || errors.Is(err, models.ErrAmbiguousPrefix) || errors.Is(err, models.ErrNotAuthenticated) {
		return n, err
	}
	if _, err := s.notes.LoadAll(ctx); err != nil {
		return models.Note{}, err
	}
	return s.notes.Find(ref)
}
