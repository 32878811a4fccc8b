package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error      string `json:"error"`
	SearchedID string `json:"searchedId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteRawJSON writes an already encoded JSON document.
func WriteRawJSON(w http.ResponseWriter, status int, raw []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(raw)
	return err
}

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, resp ErrorResponse) error {
	return WriteJSON(w, status, resp)
}
