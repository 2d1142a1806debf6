package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	natsadapter "github.com/wiedertv/BizAway-code-challenge/internal/adapters/nats"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// WebSocketUpgrade rejects plain HTTP requests to /ws and requires a session.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if c.Query("session") == "" {
			return errBadRequest(c, "session query parameter is required")
		}
		c.Locals("session", c.Query("session"))
		return c.Next()
	}
}

// WebSocketHandler relays a session's saved-trip events to the client.
// Connect with /ws?session=<x-session-id>; every saved or deleted event for
// that session is pushed as JSON. Client messages are ignored.
func WebSocketHandler(sub *natsadapter.Subscriber) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		session, _ := c.Locals("session").(string)
		log := slog.Default().With("remote", remoteAddr)
		log.Info("ws client connected")

		var mu sync.Mutex
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if sub == nil {
			_ = writeJSON(map[string]string{"error": "event relay not configured"})
			return
		}

		s, err := sub.SubscribeSession(session, func(data []byte) {
			_ = writeJSON(json.RawMessage(data))
		})
		if err != nil {
			log.Error("ws subscribe failed", "error", err)
			_ = writeJSON(map[string]string{"error": "subscribe failed"})
			return
		}
		defer func() { _ = s.Unsubscribe() }()
		_ = writeJSON(map[string]string{"status": "subscribed"})

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Block until the client goes away.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		log.Info("ws client disconnected")
	}
}
