package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kino/services/auth"
)

// writeJSON encodes v with the JSON content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMessage responds with a plain {"message": ...} body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeAuthRequired maps the recoverable auth condition to a 401 with a
// login redirect hint for the UI.
func writeAuthRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"message":  "authentication required",
		"redirect": "/login",
	})
}

// handleAuthErr responds appropriately when err is the auth condition; it
// reports whether the error was handled.
func handleAuthErr(w http.ResponseWriter, err error) bool {
	if errors.Is(err, auth.ErrAuthRequired) {
		writeAuthRequired(w)
		return true
	}
	return false
}
