package store

import (
	"fmt"
	"time"

	"github.com/vinizap/takenote/domain"
)

type AddNote struct{ Note domain.Note }

// UpdateNote replaces the stored note with the same ID. UpdatedAt is stamped
// by the store whenever title, content or folder change; the caller's value
// is ignored and CreatedAt is kept from the stored note. An update that
// changes none of those fields leaves the note and storage untouched.
type UpdateNote struct{ Note domain.Note }

// DeleteNote removes a note. Deleting the active note clears the selection.
type DeleteNote struct{ ID string }

// SetActiveNote selects a note without checking that it exists. The selection
// is cleared again when that note is deleted.
type SetActiveNote struct{ ID string }

type MoveNote struct{ Move domain.NoteMove }

func (AddNote) slice() Slice       { return SliceNotes }
func (UpdateNote) slice() Slice    { return SliceNotes }
func (DeleteNote) slice() Slice    { return SliceNotes }
func (SetActiveNote) slice() Slice { return SliceNotes }
func (MoveNote) slice() Slice      { return SliceNotes }

func reduceNotes(s domain.NotesState, in Intent, now time.Time) (domain.NotesState, bool, error) {
	switch in := in.(type) {
	case AddNote:
		if in.Note.ID == "" {
			return s, false, fmt.Errorf("%w: note id is empty", ErrInvalid)
		}
		if noteIndex(s.Items, in.Note.ID) >= 0 {
			return s, false, fmt.Errorf("%w: note %s", ErrDuplicateID, in.Note.ID)
		}
		s.Items = append(s.Items, in.Note)
		return s, true, nil

	case UpdateNote:
		i := noteIndex(s.Items, in.Note.ID)
		if i < 0 {
			return s, false, fmt.Errorf("%w: note %s", ErrNotFound, in.Note.ID)
		}
		prev := s.Items[i]
		next := in.Note
		if next.Title == prev.Title && next.Content == prev.Content && next.FolderID == prev.FolderID {
			return s, false, nil
		}
		next.CreatedAt = prev.CreatedAt
		next.UpdatedAt = now
		s.Items[i] = next
		return s, true, nil

	case DeleteNote:
		kept := s.Items[:0]
		for _, n := range s.Items {
			if n.ID != in.ID {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(s.Items) {
			return s, false, fmt.Errorf("%w: note %s", ErrNotFound, in.ID)
		}
		s.Items = kept
		if s.ActiveNoteID == in.ID {
			s.ActiveNoteID = ""
		}
		return s, true, nil

	case SetActiveNote:
		s.ActiveNoteID = in.ID
		return s, false, nil

	case MoveNote:
		i := noteIndex(s.Items, in.Move.NoteID)
		if i < 0 {
			return s, false, fmt.Errorf("%w: note %s", ErrNotFound, in.Move.NoteID)
		}
		s.Items[i].FolderID = in.Move.FolderID
		return s, true, nil
	}
	return s, false, fmt.Errorf("%w: %T is not a note intent", ErrInvalid, in)
}

func noteIndex(items []domain.Note, id string) int {
	for i, n := range items {
		if n.ID == id {
			return i
		}
	}
	return -1
}
