// ABOUTME: Ordered note collection mirroring the server's last confirmed state.
// ABOUTME: Supports in-place amendment and ID/prefix lookup.

package models

import (
	"errors"
	"fmt"
	"strings"
)

// MinPrefixLen is the shortest ID prefix accepted by FindByPrefix.
const MinPrefixLen = 6

var (
	ErrPrefixTooShort  = errors.New("prefix must be at least 6 characters")
	ErrAmbiguousPrefix = errors.New("prefix matches multiple notes")
	ErrNoteNotFound    = errors.New("note not found")
)

// Collection keeps notes in the order of the last full fetch.
type Collection struct {
	notes []Note
}

// NewCollection copies notes into a new collection.
func NewCollection(notes []Note) *Collection {
	c := &Collection{}
	c.Replace(notes)
	return c
}

// Replace swaps the whole content, as after a full fetch.
func (c *Collection) Replace(notes []Note) {
	c.notes = append([]Note(nil), notes...)
}

func (c *Collection) Append(n Note) {
	c.notes = append(c.notes, n)
}

// Update replaces the note with the same ID, keeping its position.
// It reports whether a note was replaced.
func (c *Collection) Update(n Note) bool {
	i := c.index(n.ID)
	if i < 0 {
		return false
	}
	c.notes[i] = n
	return true
}

// Remove drops the note with the given ID and reports whether it existed.
func (c *Collection) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.notes = append(c.notes[:i], c.notes[i+1:]...)
	return true
}

func (c *Collection) Clear() {
	c.notes = nil
}

func (c *Collection) Len() int {
	return len(c.notes)
}

// Notes returns a copy of the notes in order.
func (c *Collection) Notes() []Note {
	return append([]Note(nil), c.notes...)
}

// Get returns the note with exactly the given ID.
func (c *Collection) Get(id string) (Note, bool) {
	i := c.index(id)
	if i < 0 {
		return Note{}, false
	}
	return c.notes[i], true
}

// FindByPrefix resolves an exact ID first, then a unique ID prefix.
func (c *Collection) FindByPrefix(ref string) (Note, error) {
	if n, ok := c.Get(ref); ok {
		return n, nil
	}
	if len(ref) < MinPrefixLen {
		return Note{}, ErrPrefixTooShort
	}

	var matches []Note
	for _, n := range c.notes {
		if strings.HasPrefix(n.ID, ref) {
			matches = append(matches, n)
		}
	}

	switch len(matches) {
	case 0:
		return Note{}, ErrNoteNotFound
	case 1:
		return matches[0], nil
	default:
		return Note{}, fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(matches))
	}
}

func (c *Collection) index(id string) int {
	for i := range c.notes {
		if c.notes[i].ID == id {
			return i
		}
	}
	return -1
}
