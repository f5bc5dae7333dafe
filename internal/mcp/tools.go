// ABOUTME: MCP tools for note CRUD operations.
// ABOUTME: Maps CLI functionality to MCP tool interface.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "list_notes",
		Description: "Fetch all notes of the logged-in user",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListNotes)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_note",
		Description: "Get a note by ID or ID prefix",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix (6+ chars)"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetNote)

	s.server.AddTool(&mcp.Tool{
		Name:        "create_note",
		Description: "Create a new note with title and content",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Note title"},
				"content": {"type": "string", "description": "Note content"}
			},
			"required": ["title", "content"]
		}`),
	}, s.handleCreateNote)

	s.server.AddTool(&mcp.Tool{
		Name:        "update_note",
		Description: "Update a note's title and/or content",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"title": {"type": "string", "description": "New title"},
				"content": {"type": "string", "description": "New content"}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdateNote)

	s.server.AddTool(&mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"}
			},
			"required": ["id"]
		}`),
	}, s.handleDeleteNote)
}

func decodeArgs(req *mcp.CallToolRequest, v any) error {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toolJSON(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return toolText(string(data))
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.notes.LoadAll(ctx)
	if err != nil {
		return toolError("failed to list notes: %v", err), nil
	}
	return toolJSON(notes), nil
}

func (s *Server) handleGetNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.resolve(ctx, params.ID)
	if err != nil {
		return toolError("failed to get note: %v", err), nil
	}
	return toolJSON(note), nil
}

func (s *Server) handleCreateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.notes.Create(ctx, params.Title, params.Content)
	if err != nil {
		return toolError("failed to create note: %v", err), nil
	}
	return toolText(fmt.Sprintf("Created note %s", note.ID)), nil
}

func (s *Server) handleUpdateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID      string  `json:"id"`
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	if params.Title == nil && params.Content == nil {
		return toolError("nothing to update: provide title or content"), nil
	}

	note, err := s.resolve(ctx, params.ID)
	if err != nil {
		return toolError("failed to find note: %v", err), nil
	}
	if params.Title != nil {
		note.Title = *params.Title
	}
	if params.Content != nil {
		note.Content = *params.Content
	}

	updated, err := s.notes.Update(ctx, note.ID, note.Title, note.Content)
	if err != nil {
		return toolError("failed to update note: %v", err), nil
	}
	return toolText(fmt.Sprintf("Updated note %s", updated.ID)), nil
}

func (s *Server) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.resolve(ctx, params.ID)
	if err != nil {
		return toolError("failed to find note: %v", err), nil
	}
	if err := s.notes.Delete(ctx, note.ID); err != nil {
		return toolError("failed to delete note: %v", err), nil
	}
	return toolText(fmt.Sprintf("Deleted note %s", note.ID)), nil
}
