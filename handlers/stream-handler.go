package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dailyops/backend/logging"
	"dailyops/backend/middleware"
	"dailyops/backend/services"
)

// StreamHandler izlaže TaskHub kao server-sent events endpoint. Svaka poruka
// je kompletan trenutni skup zadataka sesije, isporučen odmah po pretplati i
// ponovo posle svake relevantne izmene.
type StreamHandler struct {
	hub *services.TaskHub
}

func NewStreamHandler(hub *services.TaskHub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

func (h *StreamHandler) StreamTasks(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.hub.Subscribe(r.Context(), session)
	defer h.hub.Unsubscribe(sub)

	logging.Logger.Infof("Event ID: TASK_STREAM_OPENED, Description: Task stream opened for %s (%s)", session.UserID, session.Role)

	for {
		select {
		case <-r.Context().Done():
			logging.Logger.Infof("Event ID: TASK_STREAM_CLOSED, Description: Task stream closed for %s", session.UserID)
			return
		case tasks, open := <-sub.C:
			if !open {
				return
			}
			payload, err := json.Marshal(tasks)
			if err != nil {
				logging.Logger.Errorf("Event ID: TASK_STREAM_ENCODE_FAILED, Description: Failed to encode snapshot: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
