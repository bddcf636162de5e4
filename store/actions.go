package store

import (
	"context"
	"fmt"

	"github.com/vinizap/takenote/domain"
	"github.com/vinizap/takenote/markup"
)

// CreateFolder appends a new folder with a generated id. An empty name
// becomes domain.DefaultFolderName.
func (s *Store) CreateFolder(ctx context.Context, name string) (domain.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := domain.NewFolder(name, s.now())
	if _, err := s.dispatchLocked(ctx, AddFolder{Folder: f}); err != nil {
		return domain.Folder{}, err
	}
	return f, nil
}

// RenameFolder keeps the folder's id, position and creation time.
func (s *Store) RenameFolder(ctx context.Context, id, name string) (domain.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := folderIndex(s.state.Folders.Items, id)
	if i < 0 {
		return domain.Folder{}, fmt.Errorf("%w: folder %s", ErrNotFound, id)
	}
	f := s.state.Folders.Items[i]
	f.Name = name
	if _, err := s.dispatchLocked(ctx, UpdateFolder{Folder: f}); err != nil {
		return domain.Folder{}, err
	}
	return f, nil
}

// CreateNote appends an empty note to folderID, or to the active folder when
// folderID is empty. Without either it fails with ErrNoActiveFolder; a folder
// that does not exist fails with ErrNotFound.
func (s *Store) CreateNote(ctx context.Context, folderID, title string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if folderID == "" {
		folderID = s.state.Folders.ActiveFolderID
	}
	if folderID == "" {
		return domain.Note{}, ErrNoActiveFolder
	}
	if folderIndex(s.state.Folders.Items, folderID) < 0 {
		return domain.Note{}, fmt.Errorf("%w: folder %s", ErrNotFound, folderID)
	}
	n := domain.NewNote(folderID, title, s.now())
	if _, err := s.dispatchLocked(ctx, AddNote{Note: n}); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

// NoteEdit carries the fields of an edit; nil fields are left as they are.
type NoteEdit struct {
	Title   *string
	Content *string
}

func (s *Store) EditNote(ctx context.Context, id string, edit NoteEdit) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.noteLocked(id)
	if !ok {
		return domain.Note{}, fmt.Errorf("%w: note %s", ErrNotFound, id)
	}
	if edit.Title != nil {
		n.Title = *edit.Title
	}
	if edit.Content != nil {
		n.Content = *edit.Content
	}
	return s.updateNoteLocked(ctx, n)
}

// Restyle applies style to the selection [start, end) of a note's content.
// An empty selection changes nothing and dispatches nothing.
func (s *Store) Restyle(ctx context.Context, id string, start, end int, style markup.Style) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.noteLocked(id)
	if !ok {
		return domain.Note{}, fmt.Errorf("%w: note %s", ErrNotFound, id)
	}
	if start == end {
		return n, nil
	}
	content := markup.ApplyStyle(n.Content, start, end, style)
	if content == n.Content {
		return n, nil
	}
	n.Content = content
	return s.updateNoteLocked(ctx, n)
}

func (s *Store) updateNoteLocked(ctx context.Context, n domain.Note) (domain.Note, error) {
	if _, err := s.dispatchLocked(ctx, UpdateNote{Note: n}); err != nil {
		return domain.Note{}, err
	}
	updated, _ := s.noteLocked(n.ID)
	return updated, nil
}
