package handlers

import (
	"net/http"
	"time"
)

// Health reports liveness for load balancers and uptime checks.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "zentra-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
