package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const keepAliveInterval = 25 * time.Second

// handleEvents streams the change feed as server-sent events so a view can
// re-render after every applied intent.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	sub := s.hub.Subscribe()
	if sub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "event feed stopped")
	}
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		fmt.Fprint(w, "event: ready\ndata: ok\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				data, err := json.Marshal(msg)
				if err != nil {
					s.log.Error().Err(err).Str("type", msg.Type).Msg("encode event")
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
