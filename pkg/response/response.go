// Package response writes JSON bodies and error payloads for HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"inkwell/pkg/apperror"
	"inkwell/pkg/logger"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

// Message writes {"error": message} with the given status.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"error": message})
}

// Error renders err using the apperror taxonomy. Errors outside the taxonomy
// are reported as a generic store failure without leaking internals.
func Error(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	body := map[string]any{"error": "Internal server error"}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body["error"] = appErr.Message
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
	}
	JSON(w, apperror.Status(kind), body)
}

// Decode reads a JSON request body into target.
func Decode(r *http.Request, target any) error {
	if r.Body == nil {
		return apperror.Invalid("Invalid request body")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apperror.Wrap(apperror.InvalidInput, "Invalid request body", err)
	}
	return nil
}
