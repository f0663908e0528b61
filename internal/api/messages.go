package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxMessagesLimit = 1000

// MessageResponse is one entry of the recent message log.
type MessageResponse struct {
	Topic      string `json:"topic"`
	Payload    string `json:"payload"`
	ReceivedAt string `json:"received_at"`
}

// handleMessages returns the recent inbound MQTT messages, newest first.
//
// Query parameters:
//   - topic: case-insensitive substring filter
//   - limit: maximum number of entries (1..1000)
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit, err := parseMessagesLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	filter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("topic")))

	resp := make([]MessageResponse, 0)
	if s.messages != nil {
		entries := s.messages.Messages()
		for i := len(entries) - 1; i >= 0; i-- {
			m := entries[i]
			if filter != "" && !strings.Contains(strings.ToLower(m.Topic), filter) {
				continue
			}
			resp = append(resp, MessageResponse{
				Topic:      m.Topic,
				Payload:    m.Payload,
				ReceivedAt: m.ReceivedAt.UTC().Format(time.RFC3339Nano),
			})
			if limit > 0 && len(resp) >= limit {
				break
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": resp,
		"count":    len(resp),
	})
}

// parseMessagesLimit parses the limit query parameter. Zero means no limit.
func parseMessagesLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if limit > maxMessagesLimit {
		return 0, fmt.Errorf("limit exceeds maximum of %d", maxMessagesLimit)
	}
	return limit, nil
}
