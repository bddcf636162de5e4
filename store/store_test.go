package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vinizap/takenote/domain"
	"github.com/vinizap/takenote/markup"
	"github.com/vinizap/takenote/storage"
)

type failingKV struct {
	*storage.MemoryStore
	err error
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.err != nil {
		return f.err
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type countingKV struct {
	*storage.MemoryStore
	sets int
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.MemoryStore.Set(ctx, key, value)
}

func fixedClock() func() time.Time {
	now := t0
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func openStore(t *testing.T, kv storage.Store) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func dispatch(t *testing.T, s *Store, in Intent) domain.State {
	t.Helper()
	st, err := s.Dispatch(context.Background(), in)
	if err != nil {
		t.Fatalf("dispatch %T: %v", in, err)
	}
	return st
}

func TestOpenEmptyStorage(t *testing.T) {
	s := openStore(t, storage.NewMemoryStore(0))
	st := s.State()
	if len(st.Notes.Items) != 0 || len(st.Folders.Items) != 0 {
		t.Fatalf("expected empty collections, got %+v", st)
	}
	if st.UI.DarkMode || !st.UI.SidebarOpen {
		t.Fatalf("expected light theme with sidebar open, got %+v", st.UI)
	}
	if st.Notes.ActiveNoteID != "" || st.Folders.ActiveFolderID != "" {
		t.Fatalf("expected no active selection")
	}
}

func TestOpenRejectsCorruptSlice(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	_ = kv.Set(context.Background(), storage.KeyNotes, []byte(`{"not":"a list"}`))
	if _, err := Open(context.Background(), kv); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPersistAndRehydrateRoundTrip(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	s := openStore(t, kv)
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f1", Name: "Work", CreatedAt: t0}})
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f2", Name: "Home", CreatedAt: t0}})
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n1", Title: "one", Content: "**x**", FolderID: "f1", CreatedAt: t0, UpdatedAt: t0}})
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n2", Title: "two", FolderID: "f2", CreatedAt: t0, UpdatedAt: t0}})
	dispatch(t, s, SetActiveNote{ID: "n2"})
	dispatch(t, s, SetActiveFolder{ID: "f2"})
	dispatch(t, s, ToggleSidebar{})
	want := dispatch(t, s, ToggleDarkMode{})

	again := openStore(t, kv)
	got := again.State()
	if !reflect.DeepEqual(got.Notes.Items, want.Notes.Items) {
		t.Fatalf("notes did not round-trip:\n got %+v\nwant %+v", got.Notes.Items, want.Notes.Items)
	}
	if !reflect.DeepEqual(got.Folders.Items, want.Folders.Items) {
		t.Fatalf("folders did not round-trip:\n got %+v\nwant %+v", got.Folders.Items, want.Folders.Items)
	}
	if !got.UI.DarkMode {
		t.Fatalf("dark mode should be persisted")
	}
	if !got.UI.SidebarOpen || got.Notes.ActiveNoteID != "" || got.Folders.ActiveFolderID != "" {
		t.Fatalf("transient fields must reset, got %+v", got)
	}
}

func TestToggleDarkModeTwice(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	s := openStore(t, kv)
	dispatch(t, s, ToggleDarkMode{})
	st := dispatch(t, s, ToggleDarkMode{})
	if st.UI.DarkMode {
		t.Fatalf("expected dark mode back to false")
	}
	raw, ok, err := kv.Get(context.Background(), storage.KeyDarkMode)
	if err != nil || !ok {
		t.Fatalf("expected darkMode key, ok=%v err=%v", ok, err)
	}
	var persisted bool
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if persisted != st.UI.DarkMode {
		t.Fatalf("persisted %v, in memory %v", persisted, st.UI.DarkMode)
	}
}

func TestSidebarNeverPersisted(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	s := openStore(t, kv)
	dispatch(t, s, ToggleSidebar{})
	dispatch(t, s, SetActiveFolder{ID: "f1"})
	dispatch(t, s, SetActiveNote{ID: "n1"})
	keys, _ := kv.Keys(context.Background())
	if len(keys) != 0 {
		t.Fatalf("transient intents wrote keys %v", keys)
	}
}

func TestDeleteFolderOrphansNoteScenario(t *testing.T) {
	s := openStore(t, storage.NewMemoryStore(0))
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f1", Name: "Work"}})
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n1", FolderID: "f1", Title: "plan"}})
	st := dispatch(t, s, DeleteFolder{ID: "f1"})

	if len(st.Folders.Items) != 0 {
		t.Fatalf("expected no folders, got %+v", st.Folders.Items)
	}
	if len(st.Notes.Items) != 1 || st.Notes.Items[0].ID != "n1" || st.Notes.Items[0].FolderID != "f1" {
		t.Fatalf("expected n1 kept with folderId f1, got %+v", st.Notes.Items)
	}
	orphans := s.OrphanedNotes()
	if len(orphans) != 1 || orphans[0].ID != "n1" {
		t.Fatalf("expected n1 listed as orphan, got %+v", orphans)
	}
	if got := s.NotesInFolder("f1"); len(got) != 1 {
		t.Fatalf("folder filter still matches by id, got %+v", got)
	}
}

func TestDispatchNotFoundIsNoop(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	s := openStore(t, kv)
	before := s.State()
	_, err := s.Dispatch(context.Background(), UpdateNote{Note: domain.Note{ID: "ghost"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !reflect.DeepEqual(s.State(), before) {
		t.Fatalf("state changed on miss")
	}
	if keys, _ := kv.Keys(context.Background()); len(keys) != 0 {
		t.Fatalf("miss must not write storage, wrote %v", keys)
	}
}

func TestDispatchPersistenceFailureKeepsState(t *testing.T) {
	boom := errors.New("disk on fire")
	kv := &failingKV{MemoryStore: storage.NewMemoryStore(0)}
	s := openStore(t, kv)
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f1"}})

	kv.err = boom
	_, err := s.Dispatch(context.Background(), AddFolder{Folder: domain.Folder{ID: "f2"}})
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, boom) {
		t.Fatalf("expected persistence error wrapping cause, got %v", err)
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Key != storage.KeyFolders {
		t.Fatalf("expected *PersistenceError for folders, got %#v", err)
	}
	if got := s.State().Folders.Items; len(got) != 1 {
		t.Fatalf("failed write must not commit, got %+v", got)
	}
}

func TestDispatchQuotaExceeded(t *testing.T) {
	s := openStore(t, storage.NewMemoryStore(64))
	big := make([]byte, 128)
	for i := range big {
		big[i] = 'x'
	}
	_, err := s.Dispatch(context.Background(), AddNote{Note: domain.Note{ID: "n1", Content: string(big)}})
	if !errors.Is(err, storage.ErrQuotaExceeded) || !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected quota persistence error, got %v", err)
	}
}

func TestMoveNoteThroughStore(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	s := openStore(t, kv)
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f1"}})
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f2"}})
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n1", FolderID: "f1"}})
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n2", FolderID: "f1"}})
	before := s.State()

	after := dispatch(t, s, MoveNote{Move: domain.NoteMove{NoteID: "n1", FolderID: "f2"}})
	if after.Notes.Items[0].FolderID != "f2" || after.Notes.Items[1] != before.Notes.Items[1] {
		t.Fatalf("unexpected notes after move %+v", after.Notes.Items)
	}
	if !after.Notes.Items[0].UpdatedAt.Equal(before.Notes.Items[0].UpdatedAt) {
		t.Fatalf("move must not touch updatedAt")
	}
	if !reflect.DeepEqual(after.Folders, before.Folders) {
		t.Fatalf("folders changed by move")
	}
	raw, _, _ := kv.Get(context.Background(), storage.KeyNotes)
	var persisted []domain.Note
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if persisted[0].FolderID != "f2" {
		t.Fatalf("move not persisted: %+v", persisted)
	}
}

func TestCreateNoteNeedsFolder(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryStore(0))
	if _, err := s.CreateNote(ctx, "", ""); !errors.Is(err, ErrNoActiveFolder) {
		t.Fatalf("expected ErrNoActiveFolder, got %v", err)
	}

	f, err := s.CreateFolder(ctx, "")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if f.ID == "" || f.Name != domain.DefaultFolderName {
		t.Fatalf("unexpected folder %+v", f)
	}
	dispatch(t, s, SetActiveFolder{ID: f.ID})

	n, err := s.CreateNote(ctx, "", "")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if n.FolderID != f.ID || n.Title != domain.DefaultNoteTitle || n.Content != "" {
		t.Fatalf("unexpected note %+v", n)
	}
	if n.CreatedAt.IsZero() || !n.CreatedAt.Equal(n.UpdatedAt) {
		t.Fatalf("expected matching creation timestamps, got %+v", n)
	}
}

func TestCreateNoteInUnknownFolder(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryStore(0))
	if _, err := s.CreateNote(ctx, "nope", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// A dangling active folder is rejected the same way.
	dispatch(t, s, SetActiveFolder{ID: "gone"})
	if _, err := s.CreateNote(ctx, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for dangling active folder, got %v", err)
	}
	if st := s.State(); len(st.Notes.Items) != 0 || len(s.OrphanedNotes()) != 0 {
		t.Fatalf("expected no notes, got %+v", st.Notes.Items)
	}
}

func TestEditNoteWithoutChangesSkipsStorage(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryStore: storage.NewMemoryStore(0)}
	s := openStore(t, kv)
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n1", Title: "t", Content: "c", CreatedAt: t0, UpdatedAt: t0}})
	writes := kv.sets

	title := "t"
	n, err := s.EditNote(ctx, "n1", NoteEdit{Title: &title})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !n.UpdatedAt.Equal(t0) {
		t.Fatalf("unchanged note must keep updatedAt, got %v", n.UpdatedAt)
	}
	if _, err := s.EditNote(ctx, "n1", NoteEdit{}); err != nil {
		t.Fatalf("empty edit: %v", err)
	}
	if kv.sets != writes {
		t.Fatalf("expected no writes, got %d", kv.sets-writes)
	}
}

func TestEditNoteAndRestyle(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryStore(0))
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n1", Title: "t", Content: "hello world", CreatedAt: t0, UpdatedAt: t0}})

	title := "greeting"
	n, err := s.EditNote(ctx, "n1", NoteEdit{Title: &title})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if n.Title != "greeting" || n.Content != "hello world" || !n.UpdatedAt.After(t0) {
		t.Fatalf("unexpected note after title edit %+v", n)
	}
	stamped := n.UpdatedAt

	n, err = s.Restyle(ctx, "n1", 0, 5, markup.Bold)
	if err != nil {
		t.Fatalf("restyle: %v", err)
	}
	if n.Content != "**hello** world" || !n.UpdatedAt.After(stamped) {
		t.Fatalf("unexpected note after restyle %+v", n)
	}

	same, err := s.Restyle(ctx, "n1", 3, 3, markup.Bold)
	if err != nil {
		t.Fatalf("restyle empty: %v", err)
	}
	if same != n {
		t.Fatalf("empty selection must not change the note")
	}

	if _, err := s.Restyle(ctx, "ghost", 0, 1, markup.Bold); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameFolderKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryStore(0))
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f1", Name: "a", CreatedAt: t0}})
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f2", Name: "b", CreatedAt: t0}})
	if _, err := s.RenameFolder(ctx, "f1", "Work"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got := s.State().Folders.Items
	if got[0].ID != "f1" || got[0].Name != "Work" || !got[0].CreatedAt.Equal(t0) {
		t.Fatalf("unexpected folders %+v", got)
	}
	if _, err := s.RenameFolder(ctx, "ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActiveSelectors(t *testing.T) {
	s := openStore(t, storage.NewMemoryStore(0))
	if _, ok := s.ActiveNote(); ok {
		t.Fatalf("expected no active note")
	}
	dispatch(t, s, AddFolder{Folder: domain.Folder{ID: "f1"}})
	dispatch(t, s, AddNote{Note: domain.Note{ID: "n1", FolderID: "f1"}})
	dispatch(t, s, SetActiveNote{ID: "n1"})
	dispatch(t, s, SetActiveFolder{ID: "f1"})
	if n, ok := s.ActiveNote(); !ok || n.ID != "n1" {
		t.Fatalf("expected n1 active, got %+v %v", n, ok)
	}
	if f, ok := s.ActiveFolder(); !ok || f.ID != "f1" {
		t.Fatalf("expected f1 active, got %+v %v", f, ok)
	}
	dispatch(t, s, SetActiveNote{ID: "ghost"})
	if _, ok := s.ActiveNote(); ok {
		t.Fatalf("dangling active id must not resolve")
	}
}
