package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."}.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed.", "status", status, "error", err)
	} else {
		logger.Debug("Request rejected.", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
