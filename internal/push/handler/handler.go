package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conocida/internal/audit"
	"conocida/internal/platform/middleware"
	"conocida/internal/push"
	"conocida/internal/transport/http/shared"
	dErrors "conocida/pkg/domain-errors"
)

// Handler wires push endpoints to the push service.
type Handler struct {
	service *push.Service
	auditor audit.Publisher
	logger  *slog.Logger
}

func New(service *push.Service, auditor audit.Publisher, logger *slog.Logger) *Handler {
	return &Handler{service: service, auditor: auditor, logger: logger}
}

// Register mounts the public token registration endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/push/register", h.HandleRegister)
}

// RegisterAdmin mounts the step-up gated broadcast endpoint.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/send-push", h.HandleSend)
}

type registerRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type sendRequest struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}

type sendResponse struct {
	Success bool              `json:"success"`
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Errors  []push.TokenError `json:"errors,omitempty"`
}

// HandleRegister handles POST /api/push/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	if err := h.service.Register(r.Context(), req.Token, req.Platform); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

// HandleSend handles POST /api/send-push.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	report, err := h.service.Broadcast(ctx, req.Tokens, push.Message{
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.auditor.Record(ctx, audit.NewEvent(ctx, audit.KindPushBroadcast, req.Title))
	h.logger.InfoContext(ctx, "push broadcast requested",
		"request_id", middleware.GetRequestID(ctx),
		"actor", middleware.GetUserID(ctx),
		"sent", report.Sent,
		"failed", report.Failed,
	)
	shared.WriteJSON(w, http.StatusOK, sendResponse{
		Success: true,
		Sent:    report.Sent,
		Failed:  report.Failed,
		Errors:  report.Errors,
	})
}
