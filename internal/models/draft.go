// ABOUTME: EditDraft model for an in-progress, uncommitted note edit.
// ABOUTME: At most one draft exists at a time.

package models

type EditDraft struct {
	NoteID  string
	Title   string
	Content string
}

// NewEditDraft seeds a draft from the note being edited.
func NewEditDraft(n Note) *EditDraft {
	return &EditDraft{
		NoteID:  n.ID,
		Title:   n.Title,
		Content: n.Content,
	}
}
