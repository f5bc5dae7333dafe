// ABOUTME: Notes synchronizer: list, create, update and delete against the remote API.
// ABOUTME: The local collection changes only after the server confirms each call.

// Package sync keeps the in-memory note collection in step with the server.
// Every operation is gated on the session; a 401 from any call ends the
// session through the session manager.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harper/notes/internal/api"
	"github.com/harper/notes/internal/models"
	"github.com/harper/notes/internal/state"
)

// User-visible failure messages.
const (
	MsgFetchFailed    = "Failed to fetch notes"
	MsgFieldsRequired = "Title and Content required"
	MsgCreateFailed   = "Error creating note"
	MsgUpdateFailed   = "Error updating note"
	MsgDeleteFailed   = "Error deleting note"
)

// ErrNoDraft is returned by SaveDraft and SetDraft when no edit is open.
var ErrNoDraft = errors.New("no edit in progress")

// NotesAPI is the remote note store.
type NotesAPI interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, in models.NoteInput) (models.Note, error)
	UpdateNote(ctx context.Context, id string, in models.NoteInput) (models.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// Session is the gate the synchronizer answers to.
type Session interface {
	IsAuthenticated() bool
	ForceLogout(reason string)
}

type Synchronizer struct {
	state   *state.State
	api     NotesAPI
	session Session
	logger  *slog.Logger
}

func New(st *state.State, notes NotesAPI, sess Session, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{state: st, api: notes, session: sess, logger: logger}
}

func (s *Synchronizer) gate() error {
	if !s.session.IsAuthenticated() {
		return models.ErrNotAuthenticated
	}
	return nil
}

// handleFailure routes a failed call issued in epoch: 401 ends the session,
// anything else sets msg as the visible error. Failures from an earlier
// session are only logged. The API error already names the operation, so
// err is returned as is.
func (s *Synchronizer) handleFailure(op string, epoch uint64, err error, msg string) error {
	if s.state.Epoch() != epoch {
		s.logger.Debug("ignored failure from previous session", "op", op, "error", err)
		return err
	}
	if api.IsUnauthorized(err) {
		s.session.ForceLogout(err.Error())
		return err
	}
	s.logger.Error("note operation failed", "op", op, "status", api.StatusCode(err), "error", err)
	s.state.SetError(msg)
	return err
}

func validate(title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: %s", models.ErrValidation, MsgFieldsRequired)
	}
	return nil
}

// LoadAll replaces the collection with the server's list. On failure the
// previous collection is kept.
func (s *Synchronizer) LoadAll(ctx context.Context) ([]models.Note, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}

	epoch := s.state.Epoch()
	gen := s.state.BeginLoad()

	notes, err := s.api.ListNotes(ctx)
	if err != nil {
		s.state.FinishLoad(gen, epoch, nil)
		return nil, s.handleFailure("list notes", epoch, err, MsgFetchFailed)
	}

	if !s.state.FinishLoad(gen, epoch, notes) {
		s.logger.Debug("discarded stale note list", "generation", gen)
	} else {
		s.logger.Debug("loaded notes", "count", len(notes))
	}
	return notes, nil
}

// Create posts a new note and appends the server's record.
func (s *Synchronizer) Create(ctx context.Context, title, content string) (models.Note, error) {
	if err := s.gate(); err != nil {
		return models.Note{}, err
	}
	if err := validate(title, content); err != nil {
		s.state.SetError(MsgFieldsRequired)
		return models.Note{}, err
	}

	epoch := s.state.Epoch()
	note, err := s.api.CreateNote(ctx, models.NoteInput{Title: title, Content: content})
	if err != nil {
		return models.Note{}, s.handleFailure("create note", epoch, err, MsgCreateFailed)
	}

	s.state.ApplyCreated(epoch, note)
	s.state.SetError("")
	s.logger.Info("created note", "id", note.ID)
	return note, nil
}

// Update sends new fields for id and replaces the local entry with the
// server's record. A draft for id is cleared only on success.
func (s *Synchronizer) Update(ctx context.Context, id, title, content string) (models.Note, error) {
	if err := s.gate(); err != nil {
		return models.Note{}, err
	}
	if err := validate(title, content); err != nil {
		s.state.SetError(MsgFieldsRequired)
		return models.Note{}, err
	}

	epoch := s.state.Epoch()
	note, err := s.api.UpdateNote(ctx, id, models.NoteInput{Title: title, Content: content})
	if err != nil {
		return models.Note{}, s.handleFailure("update note", epoch, err, MsgUpdateFailed)
	}

	s.state.ApplyUpdated(epoch, note)
	s.state.SetError("")
	s.logger.Info("updated note", "id", note.ID)
	return note, nil
}

// Delete removes id on the server and then locally.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	if err := s.gate(); err != nil {
		return err
	}

	epoch := s.state.Epoch()
	if err := s.api.DeleteNote(ctx, id); err != nil {
		return s.handleFailure("delete note", epoch, err, MsgDeleteFailed)
	}

	s.state.ApplyDeleted(epoch, id)
	s.state.SetError("")
	s.logger.Info("deleted note", "id", id)
	return nil
}

// BeginEdit opens a draft seeded from the note matching ref, replacing any
// open draft.
func (s *Synchronizer) BeginEdit(ref string) (*models.EditDraft, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	n, err := s.state.FindNote(ref)
	if err != nil {
		return nil, err
	}
	d := models.NewEditDraft(n)
	s.state.SetDraft(d)
	return d, nil
}

// SetDraft amends the open draft's fields.
func (s *Synchronizer) SetDraft(title, content string) error {
	d := s.state.Draft()
	if d == nil {
		return ErrNoDraft
	}
	d.Title = title
	d.Content = content
	s.state.SetDraft(d)
	return nil
}

// CancelEdit drops the open draft, if any.
func (s *Synchronizer) CancelEdit() {
	if s.state.Draft() != nil {
		s.state.SetDraft(nil)
	}
}

// SaveDraft commits the open draft through Update.
func (s *Synchronizer) SaveDraft(ctx context.Context) (models.Note, error) {
	d := s.state.Draft()
	if d == nil {
		return models.Note{}, ErrNoDraft
	}
	return s.Update(ctx, d.NoteID, d.Title, d.Content)
}

// Find resolves an exact ID or a unique ID prefix in the loaded collection.
func (s *Synchronizer) Find(ref string) (models.Note, error) {
	if err := s.gate(); err != nil {
		return models.Note{}, err
	}
	return s.state.FindNote(ref)
}

// Notes returns the loaded collection.
func (s *Synchronizer) Notes() []models.Note {
	return s.state.Notes()
}
