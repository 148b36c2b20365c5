package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidityEnvelope answers a code validation request.
type ValidityEnvelope struct {
	Valid bool `json:"valid"`
}

// TemplateEnvelope carries the outbound message template.
type TemplateEnvelope struct {
	Template string `json:"template" validate:"required"`
}

// IssueCodeRequest is the body of POST /verification-codes.
type IssueCodeRequest struct {
	Phone string `json:"phone_number" validate:"required"`
}

// ValidateCodeRequest is the body of POST /verification-codes/validate.
type ValidateCodeRequest struct {
	Phone string `json:"phone_number" validate:"required"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
