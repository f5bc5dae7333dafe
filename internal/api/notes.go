// ABOUTME: Notes endpoints of the remote API.
// ABOUTME: List, create, update, and delete, each a single round trip.

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/harper/notes/internal/models"
)

const notesPath = "/notes"

func notePath(id string) string {
	return notesPath + "/" + url.PathEscape(id)
}

// ListNotes fetches the full note list.
func (c *Client) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, "list notes", http.MethodGet, notesPath, nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

// CreateNote creates a note; the server assigns its ID.
func (c *Client) CreateNote(ctx context.Context, in models.NoteInput) (models.Note, error) {
	var note models.Note
	err := c.do(ctx, "create note", http.MethodPost, notesPath, in, &note)
	return note, err
}

// UpdateNote replaces a note's title and content and returns the server's record.
func (c *Client) UpdateNote(ctx context.Context, id string, in models.NoteInput) (models.Note, error) {
	var note models.Note
	err := c.do(ctx, "update note", http.MethodPut, notePath(id), in, &note)
	return note, err
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, "delete note", http.MethodDelete, notePath(id), nil, nil)
}
