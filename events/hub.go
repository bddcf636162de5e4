// Package events fans out state changes to subscribers of the change feed.
package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vinizap/takenote/domain"
)

const (
	NoteCreated   = "note_created"
	NoteUpdated   = "note_updated"
	NoteDeleted   = "note_deleted"
	NoteMoved     = "note_moved"
	FolderCreated = "folder_created"
	FolderUpdated = "folder_updated"
	FolderDeleted = "folder_deleted"
	ActiveChanged = "active_changed"
	UIUpdated     = "ui_updated"
)

const subscriberSize = 16

type Message struct {
	Type   string           `json:"type"`
	Note   *domain.Note     `json:"note,omitempty"`
	Folder *domain.Folder   `json:"folder,omitempty"`
	Move   *domain.NoteMove `json:"move,omitempty"`
	UI     *domain.UIState  `json:"ui,omitempty"`
	// ID names the removed note or folder, or the new active id.
	ID string `json:"id,omitempty"`
}

type Subscription struct {
	C   <-chan Message
	c   chan Message
	hub *Hub
}

// Close detaches the subscription. C is closed once the hub has processed it.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.c)
}

type Hub struct {
	clients    map[chan Message]struct{}
	broadcast  chan Message
	register   chan chan Message
	unregister chan chan Message
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[chan Message]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan chan Message),
		unregister: make(chan chan Message),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the subscriber set until ctx is cancelled, then closes every
// subscription.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c <- msg:
				default:
					h.log.Warn().Str("type", msg.Type).Msg("subscriber lagging, message dropped")
				}
			}
		}
	}
}

// Subscribe registers a new subscriber. It returns nil once the hub stopped.
func (h *Hub) Subscribe() *Subscription {
	c := make(chan Message, subscriberSize)
	select {
	case h.register <- c:
		return &Subscription{C: c, c: c, hub: h}
	case <-h.done:
		return nil
	}
}

func (h *Hub) unsubscribe(c chan Message) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues msg for every subscriber. It never blocks on a full queue.
func (h *Hub) Publish(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.Warn().Str("type", msg.Type).Msg("event queue full, message dropped")
	}
}
