/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/friendsincode/bankscope/internal/events"
)

const (
	wsPingInterval = 15 * time.Second
	wsWriteTimeout = 5 * time.Second
)

type eventMessage struct {
	Type    events.EventType `json:"type"`
	Payload events.Payload   `json:"payload,omitempty"`
}

// handleEvents streams bus events to a websocket client. The optional
// "types" query parameter is a comma separated list of event types.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	types := parseEventTypes(r.URL.Query().Get("types"))
	if len(types) == 0 {
		types = events.AllEvents
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "server error")

	sub := s.bus.SubscribeAll(types...)
	defer s.bus.Unsubscribe(sub)

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
			if err := writeEvent(ctx, conn, eventMessage{Type: "ping"}); err != nil {
				return
			}
		case payload, ok := <-sub:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "event bus closed")
				return
			}
			eventType, _ := payload["event"].(string)
			if err := writeEvent(ctx, conn, eventMessage{Type: events.EventType(eventType), Payload: payload}); err != nil {
				s.logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, msg eventMessage) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func parseEventTypes(raw string) []events.EventType {
	if raw == "" {
		return nil
	}
	known := make(map[events.EventType]bool, len(events.AllEvents))
	for _, t := range events.AllEvents {
		known[t] = true
	}
	var out []events.EventType
	for _, part := range strings.Split(raw, ",") {
		t := events.EventType(strings.TrimSpace(part))
		if known[t] {
			out = append(out, t)
		}
	}
	return out
}
