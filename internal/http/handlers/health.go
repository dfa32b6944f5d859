package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const readyTimeout = 3 * time.Second

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.ok(w, http.StatusOK, "Server is running", map[string]string{"status": "ok"})
}

// Ready pings every registered dependency and answers 503 when any of
// them fails.
func (a *App) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(a.Checks))
	for name := range a.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := a.Checks[name](ctx); err != nil {
			healthy = false
			status[name] = err.Error()
			a.Logger.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		a.json(w, http.StatusServiceUnavailable, envelope{
			Success:   false,
			Message:   "Service not ready",
			Data:      status,
			Timestamp: a.timestamp(),
		})
		return
	}
	a.ok(w, http.StatusOK, "Service ready", status)
}
