// domain/state.go
package domain

// State is the whole application state. Each slice is persisted on its own.
// An empty active id means nothing is selected.
type State struct {
	Notes   NotesState   `json:"notes"`
	Folders FoldersState `json:"folders"`
	UI      UIState      `json:"ui"`
}

type NotesState struct {
	Items        []Note `json:"items"`
	ActiveNoteID string `json:"activeNoteId,omitempty"`
}

type FoldersState struct {
	Items          []Folder `json:"items"`
	ActiveFolderID string   `json:"activeFolderId,omitempty"`
}

type UIState struct {
	DarkMode    bool `json:"darkMode"`
	SidebarOpen bool `json:"sidebarOpen"`
}

// InitialState is the state of a fresh session before hydration.
func InitialState() State {
	return State{
		Notes:   NotesState{Items: []Note{}},
		Folders: FoldersState{Items: []Folder{}},
		UI:      UIState{SidebarOpen: true},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Notes.Items = append(make([]Note, 0, len(s.Notes.Items)), s.Notes.Items...)
	out.Folders.Items = append(make([]Folder, 0, len(s.Folders.Items)), s.Folders.Items...)
	return out
}
