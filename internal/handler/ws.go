package handler

import (
	"net/http"

	"bandstand/internal/realtime"
)

// WSHandler upgrades authenticated requests to websocket sessions.
type WSHandler struct {
	gateway *realtime.Gateway
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(gateway *realtime.Gateway) *WSHandler {
	return &WSHandler{gateway: gateway}
}

// Connect upgrades the request and hands the connection to the gateway
// GET /ws
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	h.gateway.HandleWS(w, r, p)
}
