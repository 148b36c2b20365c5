package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-mobile-verification/internal/domain"
	"github.com/go-mobile-verification/internal/pkg/validate"
	"go.uber.org/zap"
)

// VerificationService is the subset of verification.Service the handler uses.
type VerificationService interface {
	IssueCode(ctx context.Context, phone domain.PhoneNumber) error
	IsCodeValid(ctx context.Context, phone domain.PhoneNumber, code domain.VerificationCode) (bool, error)
	SetMessageTemplate(tmpl string) error
	MessageTemplate() string
}

// VerificationHandler exposes code issuing, validation and template management.
type VerificationHandler struct {
	svc VerificationService
	log *zap.Logger
}

func NewVerificationHandler(svc VerificationService, log *zap.Logger) *VerificationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationHandler{svc: svc, log: log}
}

// Issue never echoes the code; it only reaches the subscriber by SMS.
func (h *VerificationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req IssueCodeRequest
	if !decode(w, r, &req) {
		return
	}
	phone, err := domain.NewPhoneNumber(req.Phone)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.svc.IssueCode(r.Context(), phone); err != nil {
		h.log.Error("issue verification code", zap.String("phone", phone.Masked()), zap.Error(err))
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "verification code sent"})
}

func (h *VerificationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateCodeRequest
	if !decode(w, r, &req) {
		return
	}
	phone, err := domain.NewPhoneNumber(req.Phone)
	if err != nil {
		httpError(w, err)
		return
	}
	valid, err := h.svc.IsCodeValid(r.Context(), phone, domain.VerificationCode(req.Code))
	if err != nil {
		h.log.Error("validate verification code", zap.String("phone", phone.Masked()), zap.Error(err))
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ValidityEnvelope{Valid: valid})
}

func (h *VerificationHandler) GetTemplate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TemplateEnvelope{Template: h.svc.MessageTemplate()})
}

func (h *VerificationHandler) PutTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateEnvelope
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SetMessageTemplate(req.Template); err != nil {
		httpError(w, err)
		return
	}
	h.log.Info("message template updated")
	writeJSON(w, http.StatusOK, TemplateEnvelope{Template: h.svc.MessageTemplate()})
}

// decode reads a JSON body and runs its validate tags, writing the error
// response itself when either step fails.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
