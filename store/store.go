package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinizap/takenote/domain"
	"github.com/vinizap/takenote/storage"
)

// Store owns the application state and mirrors its durable slices to a
// storage.Store. All methods are safe for concurrent use; intents are applied
// one at a time.
type Store struct {
	mu    sync.Mutex
	state domain.State
	kv    storage.Store
	log   zerolog.Logger
	now   func() time.Time
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open hydrates a Store from kv. Missing keys fall back to empty collections
// and a light theme. Active ids and sidebar visibility always start fresh.
func Open(ctx context.Context, kv storage.Store, opts ...Option) (*Store, error) {
	s := &Store{
		state: domain.InitialState(),
		kv:    kv,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) error {
	if err := load(ctx, s.kv, storage.KeyNotes, &s.state.Notes.Items); err != nil {
		return err
	}
	if err := load(ctx, s.kv, storage.KeyFolders, &s.state.Folders.Items); err != nil {
		return err
	}
	if err := load(ctx, s.kv, storage.KeyDarkMode, &s.state.UI.DarkMode); err != nil {
		return err
	}
	if s.state.Notes.Items == nil {
		s.state.Notes.Items = []domain.Note{}
	}
	if s.state.Folders.Items == nil {
		s.state.Folders.Items = []domain.Folder{}
	}
	s.log.Info().
		Int("notes", len(s.state.Notes.Items)).
		Int("folders", len(s.state.Folders.Items)).
		Bool("dark_mode", s.state.UI.DarkMode).
		Msg("state hydrated")
	return nil
}

func load(ctx context.Context, kv storage.Store, key string, v any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Dispatch applies in and persists the slices it changed. If a write fails
// the in-memory state is left as it was and a *PersistenceError is returned.
// The returned state is a copy owned by the caller.
func (s *Store) Dispatch(ctx context.Context, in Intent) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, in)
}

func (s *Store) dispatchLocked(ctx context.Context, in Intent) (domain.State, error) {
	t, err := Reduce(s.state, in, s.now())
	if err != nil {
		return s.state.Clone(), err
	}
	for _, key := range t.Dirty {
		raw, err := encodeKey(t.State, key)
		if err != nil {
			return s.state.Clone(), err
		}
		if err := s.kv.Set(ctx, key, raw); err != nil {
			s.log.Error().Err(err).Str("key", key).Int("bytes", len(raw)).Msg("persist slice")
			return s.state.Clone(), &PersistenceError{Key: key, Err: err}
		}
	}
	s.state = t.State
	s.log.Debug().Str("intent", fmt.Sprintf("%T", in)).Strs("persisted", t.Dirty).Msg("intent applied")
	return t.State.Clone(), nil
}

// State returns a copy of the current state.
func (s *Store) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Note(id string) (domain.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteLocked(id)
}

func (s *Store) noteLocked(id string) (domain.Note, bool) {
	if i := noteIndex(s.state.Notes.Items, id); i >= 0 {
		return s.state.Notes.Items[i], true
	}
	return domain.Note{}, false
}

func (s *Store) Folder(id string) (domain.Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := folderIndex(s.state.Folders.Items, id); i >= 0 {
		return s.state.Folders.Items[i], true
	}
	return domain.Folder{}, false
}

// NotesInFolder returns the notes of a folder in display order.
func (s *Store) NotesInFolder(folderID string) []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Note{}
	for _, n := range s.state.Notes.Items {
		if n.FolderID == folderID {
			out = append(out, n)
		}
	}
	return out
}

// OrphanedNotes returns notes whose folder no longer exists.
func (s *Store) OrphanedNotes() []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Note{}
	for _, n := range s.state.Notes.Items {
		if folderIndex(s.state.Folders.Items, n.FolderID) < 0 {
			out = append(out, n)
		}
	}
	return out
}

// ActiveNote resolves the active note id. It reports false when nothing is
// selected or the selection points at a note that no longer exists.
func (s *Store) ActiveNote() (domain.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Notes.ActiveNoteID == "" {
		return domain.Note{}, false
	}
	return s.noteLocked(s.state.Notes.ActiveNoteID)
}

func (s *Store) ActiveFolder() (domain.Folder, bool) {
	s.mu.Lock()
	id := s.state.Folders.ActiveFolderID
	s.mu.Unlock()
	if id == "" {
		return domain.Folder{}, false
	}
	return s.Folder(id)
}
