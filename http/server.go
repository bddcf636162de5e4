// Package http exposes the store as a local JSON API. Every mutating route
// dispatches one intent and publishes the resulting change on the event feed.
package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/vinizap/takenote/events"
	"github.com/vinizap/takenote/export"
	"github.com/vinizap/takenote/storage"
	"github.com/vinizap/takenote/store"
)

type Server struct {
	store *store.Store
	hub   *events.Hub
	pdf   export.PDFRenderer
	log   zerolog.Logger
	app   *fiber.App
}

// NewServer wires the routes. pdf may be nil, in which case PDF export
// answers 501.
func NewServer(st *store.Store, hub *events.Hub, pdf export.PDFRenderer, log zerolog.Logger) *Server {
	s := &Server{store: st, hub: hub, pdf: pdf, log: log}
	s.app = fiber.New(fiber.Config{
		AppName:               "takenote",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/state", s.handleState)
	api.Get("/events", s.handleEvents)

	api.Get("/folders", s.handleFolders)
	api.Post("/folders", s.handleCreateFolder)
	api.Put("/folders/:id", s.handleRenameFolder)
	api.Delete("/folders/:id", s.handleDeleteFolder)
	api.Get("/folders/:id/notes", s.handleFolderNotes)

	api.Get("/notes", s.handleNotes)
	api.Get("/notes/orphaned", s.handleOrphanedNotes)
	api.Post("/notes", s.handleCreateNote)
	api.Get("/notes/:id", s.handleGetNote)
	api.Put("/notes/:id", s.handleUpdateNote)
	api.Delete("/notes/:id", s.handleDeleteNote)
	api.Post("/notes/:id/move", s.handleMoveNote)
	api.Post("/notes/:id/style", s.handleStyleNote)
	api.Get("/notes/:id/preview", s.handlePreviewNote)
	api.Get("/notes/:id/export/:format", s.handleExportNote)

	api.Put("/active/folder", s.handleSetActiveFolder)
	api.Put("/active/note", s.handleSetActiveNote)

	api.Get("/ui", s.handleUI)
	api.Post("/ui/dark-mode", s.handleToggleDarkMode)
	api.Post("/ui/sidebar", s.handleToggleSidebar)
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("server starting")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}
	s.log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Int("status", code).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID), errors.Is(err, store.ErrNoActiveFolder):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, storage.ErrQuotaExceeded):
		return fiber.StatusInsufficientStorage
	case errors.Is(err, export.ErrPDFUnavailable):
		return fiber.StatusNotImplemented
	}
	return fiber.StatusInternalServerError
}
