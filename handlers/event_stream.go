// handlers/event_stream.go
package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"airdrop-rewards-system/middleware"
	"airdrop-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultStreamInterval = 2 * time.Second
	keepAliveEvery        = 15 * time.Second
)

// EventStream pushes an account's new reward events to the client as
// server-sent events by polling the audit trail.
type EventStream struct {
	Events   *services.EventService
	Interval time.Duration
	Done     <-chan struct{}
}

func SetupEventRoutes(app *fiber.App, stream *EventStream) {
	app.Get("/api/user/:telegram_id/events", func(c *fiber.Ctx) error {
		events, err := stream.Events.Recent(c.Params("telegram_id"), c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(events)
	})

	app.Get("/api/user/:telegram_id/events/stream", middleware.SelfOnlyMiddleware(), stream.Handle)
}

// Handle resolves the account before switching to the stream so unknown ids
// still get a normal JSON 404.
func (s *EventStream) Handle(c *fiber.Ctx) error {
	externalID := c.Params("telegram_id")
	accountID, err := s.Events.AccountID(externalID)
	if err != nil {
		return respondError(c, err)
	}
	cursor, err := s.Events.Cursor(accountID)
	if err != nil {
		return respondError(c, err)
	}

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	done := s.Done
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		log.Debug().Str("telegram_id", externalID).Msg("📡 [SSE] stream opened")
		s.pump(w, accountID, cursor, done)
		log.Debug().Str("telegram_id", externalID).Msg("📡 [SSE] stream closed")
	})
	return nil
}

// pump writes events newer than cursor until the client goes away or stop closes.
func (s *EventStream) pump(w *bufio.Writer, accountID string, cursor services.EventCursor, stop <-chan struct{}) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()

	// Initial keepalive (comment event)
	w.WriteString(":\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			events, err := s.Events.Since(accountID, cursor, 0)
			if err != nil {
				log.Warn().Err(err).Str("account_id", accountID).Msg("⚠️  [SSE] poll failed")
				continue
			}

			if len(events) == 0 {
				if time.Since(lastWrite) < keepAliveEvery {
					continue
				}
				// A failed keepalive is how we notice a vanished client.
				w.WriteString(":\n\n")
			} else {
				cursor = services.CursorAfter(events[len(events)-1])
				for _, e := range events {
					payload, err := json.Marshal(e)
					if err != nil {
						continue
					}
					fmt.Fprintf(w, "id: %s\nevent: reward\ndata: %s\n\n", e.ID, payload)
				}
			}

			if err := w.Flush(); err != nil {
				return
			}
			lastWrite = time.Now()

		case <-stop:
			return
		}
	}
}
