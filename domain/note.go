// domain/note.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultNoteTitle  = "Untitled"
	DefaultFolderName = "New Folder"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FolderID  string    `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteMove reassigns a note to another folder, typically the result of a
// drag-and-drop between folder lists.
type NoteMove struct {
	NoteID   string `json:"noteId"`
	FolderID string `json:"folderId"`
}

// NewNote returns an empty note with a fresh id inside folderID.
func NewNote(folderID, title string, now time.Time) Note {
	if title == "" {
		title = DefaultNoteTitle
	}
	return Note{
		ID:        uuid.NewString(),
		Title:     title,
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewFolder(name string, now time.Time) Folder {
	if name == "" {
		name = DefaultFolderName
	}
	return Folder{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
	}
}
