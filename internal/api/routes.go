package api

import "net/http"

// Routes registers the API on mux. limit wraps the endpoints that start
// sandbox work.
func (h *Handler) Routes(mux *http.ServeMux, limit func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/run", limit(h.Run))
	mux.HandleFunc("POST /api/submit", limit(h.Submit))
	mux.HandleFunc("GET /api/jobs/{id}", h.Poll)
	mux.HandleFunc("GET /api/images/status", h.ImageStatus)
	mux.HandleFunc("POST /api/images/pull", limit(h.PullImage))
}
