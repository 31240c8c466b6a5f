package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error contract: a message plus optional per-field
// validation messages.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// Encoding errors are ignored (best-effort).
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"message": msg}.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorBody{Message: msg})
}

// WriteValidationError writes a 422 with per-field messages.
func WriteValidationError(w http.ResponseWriter, msg string, fields map[string][]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{Message: msg, Errors: fields})
}

// WriteData writes the success envelope {"success": true, "data": data}.
func WriteData(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, map[string]any{"success": true, "data": data})
}

// WriteMessage writes a success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}
