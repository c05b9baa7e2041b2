package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-studio/internal/events"
	"github.com/valyala/fasthttp"
)

type EventsHandler struct {
	hub       *events.Hub
	keepAlive time.Duration
}

func NewEventsHandler(hub *events.Hub, keepAlive time.Duration) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &EventsHandler{hub: hub, keepAlive: keepAlive}
}

// Stream relays the caller's events as Server-Sent Events until the client
// goes away.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	sid := GetSessionID(c)
	ch := make(chan events.Event, 16)
	unsubscribe := h.hub.Subscribe(func(e events.Event) {
		if e.SessionID != sid {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case e := <-ch:
				if err := writeEvent(w, e); err != nil {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
	return err
}
