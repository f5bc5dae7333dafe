// ABOUTME: Process-wide client state shared by the session manager and the synchronizer.
// ABOUTME: Mutations are serialized and announced to subscribers after they are applied.

// Package state holds the session, the note collection, the edit draft and
// the user-visible status flags. It is the single owned object passed to both
// the session manager and the notes synchronizer.
//
// Network completions arrive on arbitrary goroutines, so every mutation takes
// the lock, and subscribers are notified after the lock is released, in the
// order mutations were applied.
package state

import (
	"sync"

	"github.com/harper/notes/internal/models"
)

// Event names what changed.
type Event int

const (
	SessionChanged Event = iota
	NotesChanged
	DraftChanged
	LoadingChanged
	ErrorChanged
	NoticeChanged
)

func (e Event) String() string {
	switch e {
	case SessionChanged:
		return "session"
	case NotesChanged:
		return "notes"
	case DraftChanged:
		return "draft"
	case LoadingChanged:
		return "loading"
	case ErrorChanged:
		return "error"
	case NoticeChanged:
		return "notice"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the state for rendering.
type Snapshot struct {
	Authenticated bool
	Notes         []models.Note
	Draft         *models.EditDraft
	Loading       bool
	Error         string
	Notice        string
}

type State struct {
	mu sync.Mutex

	token string
	notes *models.Collection
	draft *models.EditDraft

	loading bool
	err     string
	notice  string

	// epoch changes on every login and logout; work issued in one epoch
	// must not touch the collection in another.
	epoch uint64
	// loadGen identifies the most recently issued full load.
	loadGen uint64

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
	// notifyMu keeps event delivery in mutation order.
	notifyMu sync.Mutex
}

func New() *State {
	return &State{
		notes: models.NewCollection(nil),
		subs:  make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. fn runs on the mutating goroutine; it may read the state
// but must not mutate it or block for long.
func (s *State) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *State) notify(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// update applies fn under the lock and then delivers the events it returns.
func (s *State) update(fn func() []Event) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	events := fn()
	s.mu.Unlock()

	s.notify(events...)
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Authenticated: s.token != "",
		Notes:         s.notes.Notes(),
		Loading:       s.loading,
		Error:         s.err,
		Notice:        s.notice,
	}
	if s.draft != nil {
		d := *s.draft
		snap.Draft = &d
	}
	return snap
}

// --- session ---

func (s *State) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *State) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Epoch returns the current session epoch.
func (s *State) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// SignIn marks the session authenticated with token, starting a new epoch
// with no note data. An empty token is ignored.
func (s *State) SignIn(token string) {
	if token == "" {
		return
	}
	s.update(func() []Event {
		s.token = token
		s.epoch++
		s.notes.Clear()
		s.draft = nil
		return []Event{SessionChanged, NotesChanged, DraftChanged}
	})
}

// SignOut destroys the session and every piece of note data.
func (s *State) SignOut() {
	s.update(func() []Event {
		s.token = ""
		s.epoch++
		s.notes.Clear()
		s.draft = nil
		s.loading = false
		return []Event{SessionChanged, NotesChanged, DraftChanged, LoadingChanged}
	})
}

// --- notes ---

// BeginLoad starts a full load and returns its generation.
func (s *State) BeginLoad() (gen uint64) {
	s.update(func() []Event {
		s.loadGen++
		gen = s.loadGen
		s.loading = true
		s.err = ""
		return []Event{LoadingChanged, ErrorChanged}
	})
	return gen
}

// FinishLoad ends load gen. When notes is non-nil and both the generation and
// epoch are still current, the collection is replaced. It reports whether
// the result was applied.
func (s *State) FinishLoad(gen, epoch uint64, notes []models.Note) (applied bool) {
	s.update(func() []Event {
		if gen != s.loadGen {
			return nil
		}
		events := []Event{LoadingChanged}
		s.loading = false
		if epoch == s.epoch && notes != nil {
			s.notes.Replace(notes)
			applied = true
			events = append(events, NotesChanged)
		}
		return events
	})
	return applied
}

// ApplyCreated appends a server-confirmed note.
func (s *State) ApplyCreated(epoch uint64, n models.Note) bool {
	return s.applyNotes(epoch, func() { s.notes.Append(n) })
}

// ApplyUpdated replaces a note with the server's record and clears a draft
// targeting it.
func (s *State) ApplyUpdated(epoch uint64, n models.Note) (applied bool) {
	s.update(func() []Event {
		if epoch != s.epoch {
			return nil
		}
		applied = true
		events := []Event{}
		if s.notes.Update(n) {
			events = append(events, NotesChanged)
		}
		if s.draft != nil && s.draft.NoteID == n.ID {
			s.draft = nil
			events = append(events, DraftChanged)
		}
		return events
	})
	return applied
}

// ApplyDeleted removes a note the server confirmed deleted.
func (s *State) ApplyDeleted(epoch uint64, id string) bool {
	return s.applyNotes(epoch, func() { s.notes.Remove(id) })
}

func (s *State) applyNotes(epoch uint64, fn func()) (applied bool) {
	s.update(func() []Event {
		if epoch != s.epoch {
			return nil
		}
		fn()
		applied = true
		return []Event{NotesChanged}
	})
	return applied
}

// Notes returns a copy of the collection.
func (s *State) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Notes()
}

// Note returns the note with the exact ID.
func (s *State) Note(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Get(id)
}

// FindNote resolves an ID or unique ID prefix.
func (s *State) FindNote(ref string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.FindByPrefix(ref)
}

// --- draft ---

func (s *State) Draft() *models.EditDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	d := *s.draft
	return &d
}

// SetDraft replaces the draft; nil clears it.
func (s *State) SetDraft(d *models.EditDraft) {
	s.update(func() []Event {
		if d == nil {
			s.draft = nil
		} else {
			cp := *d
			s.draft = &cp
		}
		return []Event{DraftChanged}
	})
}

// --- flags ---

func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *State) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetError sets the user-visible error; "" clears it.
func (s *State) SetError(msg string) {
	s.update(func() []Event {
		if s.err == msg {
			return nil
		}
		s.err = msg
		return []Event{ErrorChanged}
	})
}

func (s *State) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// SetNotice sets a one-off informational message; "" clears it.
func (s *State) SetNotice(msg string) {
	s.update(func() []Event {
		if s.notice == msg {
			return nil
		}
		s.notice = msg
		return []Event{NoticeChanged}
	})
}
