package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// SuccessEnvelope is the body of every successful response. Data is always
// serialized, so an operation without a result yields "data": null.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondSuccess writes data wrapped in a SuccessEnvelope.
func RespondSuccess(w http.ResponseWriter, logger *slog.Logger, status int, message string, data any) {
	RespondJSON(w, logger, status, SuccessEnvelope{Success: true, Message: message, Data: data})
}

// RespondError writes message wrapped in an ErrorEnvelope.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, ErrorEnvelope{Success: false, Error: message})
}

// NotFound answers requests that match no route.
func NotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, logger, http.StatusNotFound, "Route "+r.URL.Path+" not found")
	}
}

// MethodNotAllowed answers requests whose path matches but whose method does not.
func MethodNotAllowed(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, logger, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
	}
}
