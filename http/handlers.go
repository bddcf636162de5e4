// http/handlers.go
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vinizap/takenote/domain"
	"github.com/vinizap/takenote/events"
	"github.com/vinizap/takenote/export"
	"github.com/vinizap/takenote/markup"
	"github.com/vinizap/takenote/store"
)

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.store.State())
}

func (s *Server) handleFolders(c *fiber.Ctx) error {
	return c.JSON(s.store.State().Folders.Items)
}

func (s *Server) handleCreateFolder(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	folder, err := s.store.CreateFolder(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.FolderCreated, Folder: &folder})
	return c.Status(fiber.StatusCreated).JSON(folder)
}

func (s *Server) handleRenameFolder(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "folder name required")
	}
	folder, err := s.store.RenameFolder(c.UserContext(), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.FolderUpdated, Folder: &folder})
	return c.JSON(folder)
}

func (s *Server) handleDeleteFolder(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.store.Dispatch(c.UserContext(), store.DeleteFolder{ID: id}); err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.FolderDeleted, ID: id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleFolderNotes(c *fiber.Ctx) error {
	return c.JSON(s.store.NotesInFolder(c.Params("id")))
}

func (s *Server) handleSetActiveFolder(c *fiber.Ctx) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	st, err := s.store.Dispatch(c.UserContext(), store.SetActiveFolder{ID: req.ID})
	if err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.ActiveChanged, ID: req.ID})
	return c.JSON(st.Folders)
}

func (s *Server) handleNotes(c *fiber.Ctx) error {
	return c.JSON(s.store.State().Notes.Items)
}

func (s *Server) handleOrphanedNotes(c *fiber.Ctx) error {
	return c.JSON(s.store.OrphanedNotes())
}

func (s *Server) handleCreateNote(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		FolderID string `json:"folderId"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	note, err := s.store.CreateNote(c.UserContext(), req.FolderID, req.Title)
	if err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.NoteCreated, Note: &note})
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) noteParam(c *fiber.Ctx) (domain.Note, error) {
	note, ok := s.store.Note(c.Params("id"))
	if !ok {
		return domain.Note{}, fiber.NewError(fiber.StatusNotFound, "note not found")
	}
	return note, nil
}

func (s *Server) handleGetNote(c *fiber.Ctx) error {
	note, err := s.noteParam(c)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) handleUpdateNote(c *fiber.Ctx) error {
	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	before, _ := s.store.Note(c.Params("id"))
	note, err := s.store.EditNote(c.UserContext(), c.Params("id"), store.NoteEdit{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	if note != before {
		s.hub.Publish(events.Message{Type: events.NoteUpdated, Note: &note})
	}
	return c.JSON(note)
}

func (s *Server) handleDeleteNote(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.store.Dispatch(c.UserContext(), store.DeleteNote{ID: id}); err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.NoteDeleted, ID: id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleMoveNote(c *fiber.Ctx) error {
	var req struct {
		FolderID string `json:"folderId"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	move := domain.NoteMove{NoteID: c.Params("id"), FolderID: req.FolderID}
	if _, err := s.store.Dispatch(c.UserContext(), store.MoveNote{Move: move}); err != nil {
		return err
	}
	note, _ := s.store.Note(move.NoteID)
	s.hub.Publish(events.Message{Type: events.NoteMoved, Note: &note, Move: &move})
	return c.JSON(note)
}

func (s *Server) handleStyleNote(c *fiber.Ctx) error {
	var req struct {
		Start int    `json:"start"`
		End   int    `json:"end"`
		Style string `json:"style"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	style, err := markup.ParseStyle(req.Style)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	before, err := s.noteParam(c)
	if err != nil {
		return err
	}
	note, err := s.store.Restyle(c.UserContext(), before.ID, req.Start, req.End, style)
	if err != nil {
		return err
	}
	if note.Content != before.Content {
		s.hub.Publish(events.Message{Type: events.NoteUpdated, Note: &note})
	}
	return c.JSON(note)
}

func (s *Server) handlePreviewNote(c *fiber.Ctx) error {
	note, err := s.noteParam(c)
	if err != nil {
		return err
	}
	html, err := markup.Render(note.Content)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.SendString(html)
}

func (s *Server) handleExportNote(c *fiber.Ctx) error {
	note, err := s.noteParam(c)
	if err != nil {
		return err
	}
	var file export.File
	switch c.Params("format") {
	case "txt":
		file = export.TextFile(note)
	case "html":
		file, err = export.HTMLFile(note)
	case "pdf":
		file, err = export.PDFFile(c.UserContext(), s.pdf, note)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unsupported export format")
	}
	if err != nil {
		return err
	}
	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Body)
}

func (s *Server) handleSetActiveNote(c *fiber.Ctx) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	st, err := s.store.Dispatch(c.UserContext(), store.SetActiveNote{ID: req.ID})
	if err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.ActiveChanged, ID: req.ID})
	return c.JSON(st.Notes)
}

func (s *Server) handleUI(c *fiber.Ctx) error {
	return c.JSON(s.store.State().UI)
}

func (s *Server) handleToggleDarkMode(c *fiber.Ctx) error {
	return s.dispatchUI(c, store.ToggleDarkMode{})
}

func (s *Server) handleToggleSidebar(c *fiber.Ctx) error {
	return s.dispatchUI(c, store.ToggleSidebar{})
}

func (s *Server) dispatchUI(c *fiber.Ctx, in store.Intent) error {
	st, err := s.store.Dispatch(c.UserContext(), in)
	if err != nil {
		return err
	}
	s.hub.Publish(events.Message{Type: events.UIUpdated, UI: &st.UI})
	return c.JSON(st.UI)
}
