package common

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every JSON response: a payload under "data", with
// "pagination" for lists, or a failure under "error".
type Envelope struct {
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *Failure    `json:"error,omitempty"`
}

// Failure describes a rejected request. Details carries per-field messages for
// validation errors.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Data writes v as the payload of a successful response.
func Data(w http.ResponseWriter, status int, v any) {
	writeEnvelope(w, status, Envelope{Data: v})
}

// Page writes one page of a list with its pagination metadata.
func Page(w http.ResponseWriter, items any, p Pagination) {
	writeEnvelope(w, http.StatusOK, Envelope{Data: items, Pagination: &p})
}

// JSONError writes a failure response.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	writeEnvelope(w, status, Envelope{Error: &Failure{Code: code, Message: message, Details: details}})
}
