package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vinizap/takenote/domain"
	"github.com/vinizap/takenote/storage"
)

// Slice identifies an independently persisted part of the state.
type Slice int

const (
	SliceNotes Slice = iota
	SliceFolders
	SliceUI
)

func (s Slice) String() string {
	switch s {
	case SliceNotes:
		return "notes"
	case SliceFolders:
		return "folders"
	case SliceUI:
		return "ui"
	}
	return fmt.Sprintf("Slice(%d)", int(s))
}

// Intent is a request to change one slice of the state. The concrete intent
// types live next to the reducer of their slice.
type Intent interface {
	slice() Slice
}

// Transition is the outcome of applying an intent.
type Transition struct {
	State domain.State
	// Dirty lists the storage keys that must be rewritten for State to be
	// durable. Transient changes (active ids, sidebar) leave it empty.
	Dirty []string
}

// Reduce computes the state that follows in without touching storage. The
// input state is never modified. On error the returned transition carries
// the input state unchanged.
func Reduce(state domain.State, in Intent, now time.Time) (Transition, error) {
	if in == nil {
		return Transition{State: state}, fmt.Errorf("%w: nil intent", ErrInvalid)
	}
	next := state.Clone()

	var (
		changed bool
		err     error
		key     string
	)
	switch in.slice() {
	case SliceNotes:
		next.Notes, changed, err = reduceNotes(next.Notes, in, now)
		key = storage.KeyNotes
	case SliceFolders:
		next.Folders, changed, err = reduceFolders(next.Folders, in)
		key = storage.KeyFolders
	case SliceUI:
		next.UI, changed, err = reduceUI(next.UI, in)
		key = storage.KeyDarkMode
	default:
		err = fmt.Errorf("%w: unknown slice %s", ErrInvalid, in.slice())
	}
	if err != nil {
		return Transition{State: state}, err
	}

	t := Transition{State: next}
	if changed {
		t.Dirty = []string{key}
	}
	return t, nil
}

// encodeKey renders the persisted value stored under key.
func encodeKey(s domain.State, key string) ([]byte, error) {
	switch key {
	case storage.KeyNotes:
		return json.Marshal(s.Notes.Items)
	case storage.KeyFolders:
		return json.Marshal(s.Folders.Items)
	case storage.KeyDarkMode:
		return json.Marshal(s.UI.DarkMode)
	}
	return nil, fmt.Errorf("no slice is stored under %q", key)
}
