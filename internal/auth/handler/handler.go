package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conocida/internal/auth"
	"conocida/internal/platform/middleware"
	"conocida/internal/transport/http/shared"
	dErrors "conocida/pkg/domain-errors"
)

// Handler exposes the step-up verification endpoint.
type Handler struct {
	stepup *auth.StepUpService
	logger *slog.Logger
}

func New(stepup *auth.StepUpService, logger *slog.Logger) *Handler {
	return &Handler{stepup: stepup, logger: logger}
}

// Register mounts the step-up endpoint. The route itself sits behind
// RequireAuth; the PIN is the second factor, not the first.
func (h *Handler) Register(r chi.Router) {
	r.Post("/stepup", h.HandleStepUp)
}

type stepUpRequest struct {
	PIN string `json:"pin"`
}

type stepUpResponse struct {
	Token string `json:"token"`
}

// HandleStepUp handles POST /api/admin/stepup. A correct PIN yields a
// short-lived opaque token the client replays on moderation calls.
func (h *Handler) HandleStepUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req stepUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	token, err := h.stepup.Verify(ctx, req.PIN)
	if err != nil {
		h.logger.WarnContext(ctx, "step-up verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", middleware.GetUserID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "step-up granted",
		"request_id", middleware.GetRequestID(ctx),
		"user_id", middleware.GetUserID(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, stepUpResponse{Token: token})
}
