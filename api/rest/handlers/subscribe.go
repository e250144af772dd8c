package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"video-analyzer/core/notify"
)

// SubscribeHandler upgrades connections to the live notification
// channel for a job.
type SubscribeHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewSubscribeHandler creates the live-channel handler.
func NewSubscribeHandler(hub *notify.Hub, logger *zap.Logger) *SubscribeHandler {
	return &SubscribeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Subscribe handles GET /subscribe/{id}. Each notification published for
// the job is written as one JSON text frame until the connection closes.
// Late subscribers receive nothing for already-finished work: the hub
// does not replay.
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("jobId", jobID), zap.Error(err))
		return
	}

	sub := h.hub.Subscribe(jobID)
	defer h.hub.Unsubscribe(sub)
	defer conn.Close()

	h.logger.Info("subscriber connected", zap.String("jobId", jobID))

	// Reader loop: we never expect frames from the client, but reading
	// is how a peer disconnect is noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.hub.Unsubscribe(sub)
				return
			}
		}
	}()

	for {
		select {
		case <-sub.Done():
			return
		case msg := <-sub.Messages():
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Info("subscriber disconnected", zap.String("jobId", jobID))
				return
			}
		}
	}
}
