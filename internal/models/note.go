// ABOUTME: Note model as returned by the remote notes API.
// ABOUTME: IDs are server-issued; the client never assigns or changes them.

package models

import (
	"encoding/json"
	"time"
)

type Note struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// UnmarshalJSON accepts both the "_id" field used by the API and a plain "id".
func (n *Note) UnmarshalJSON(data []byte) error {
	type wire Note
	var raw struct {
		wire
		PlainID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Note(raw.wire)
	if n.ID == "" {
		n.ID = raw.PlainID
	}
	return nil
}

// ShortID returns the first six characters of the ID for display.
func (n *Note) ShortID() string {
	if len(n.ID) <= 6 {
		return n.ID
	}
	return n.ID[:6]
}

// NoteInput is the request body for create and update calls.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
