package store

import (
	"fmt"

	"github.com/vinizap/takenote/domain"
)

type AddFolder struct{ Folder domain.Folder }

type UpdateFolder struct{ Folder domain.Folder }

// DeleteFolder removes a folder and leaves its notes in place. Deleting the
// active folder clears the selection.
type DeleteFolder struct{ ID string }

// SetActiveFolder selects a folder. An empty ID clears the selection. The id
// is not checked against the folder list; deleting the selected folder clears
// it.
type SetActiveFolder struct{ ID string }

func (AddFolder) slice() Slice       { return SliceFolders }
func (UpdateFolder) slice() Slice    { return SliceFolders }
func (DeleteFolder) slice() Slice    { return SliceFolders }
func (SetActiveFolder) slice() Slice { return SliceFolders }

// reduceFolders never touches notes: deleting a folder orphans its notes.
func reduceFolders(s domain.FoldersState, in Intent) (domain.FoldersState, bool, error) {
	switch in := in.(type) {
	case AddFolder:
		if in.Folder.ID == "" {
			return s, false, fmt.Errorf("%w: folder id is empty", ErrInvalid)
		}
		if folderIndex(s.Items, in.Folder.ID) >= 0 {
			return s, false, fmt.Errorf("%w: folder %s", ErrDuplicateID, in.Folder.ID)
		}
		s.Items = append(s.Items, in.Folder)
		return s, true, nil

	case UpdateFolder:
		i := folderIndex(s.Items, in.Folder.ID)
		if i < 0 {
			return s, false, fmt.Errorf("%w: folder %s", ErrNotFound, in.Folder.ID)
		}
		s.Items[i] = in.Folder
		return s, true, nil

	case DeleteFolder:
		kept := s.Items[:0]
		for _, f := range s.Items {
			if f.ID != in.ID {
				kept = append(kept, f)
			}
		}
		if len(kept) == len(s.Items) {
			return s, false, fmt.Errorf("%w: folder %s", ErrNotFound, in.ID)
		}
		s.Items = kept
		if s.ActiveFolderID == in.ID {
			s.ActiveFolderID = ""
		}
		return s, true, nil

	case SetActiveFolder:
		s.ActiveFolderID = in.ID
		return s, false, nil
	}
	return s, false, fmt.Errorf("%w: %T is not a folder intent", ErrInvalid, in)
}

func folderIndex(items []domain.Folder, id string) int {
	for i, f := range items {
		if f.ID == id {
			return i
		}
	}
	return -1
}
