package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conocida/internal/audit"
	"conocida/internal/identity"
	"conocida/internal/platform/middleware"
	"conocida/internal/transport/http/shared"
	dErrors "conocida/pkg/domain-errors"
)

// Handler exposes the user administration surface. A nil directory means the
// provider is unconfigured and every call answers 503.
type Handler struct {
	directory identity.Directory
	auditor   audit.Publisher
	logger    *slog.Logger
}

func New(directory identity.Directory, auditor audit.Publisher, logger *slog.Logger) *Handler {
	return &Handler{directory: directory, auditor: auditor, logger: logger}
}

// Register mounts the step-up gated user endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.HandleList)
	r.Delete("/users/{uid}", h.HandleDelete)
}

type listResponse struct {
	Success bool               `json:"success"`
	Users   []identity.Account `json:"users"`
	Total   int                `json:"total"`
}

// HandleList handles GET /api/users.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if h.directory == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "user directory is not configured"))
		return
	}

	users, err := h.directory.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if users == nil {
		users = []identity.Account{}
	}
	shared.WriteJSON(w, http.StatusOK, listResponse{Success: true, Users: users, Total: len(users)})
}

// HandleDelete handles DELETE /api/users/{uid}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.directory == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "user directory is not configured"))
		return
	}

	uid := chi.URLParam(r, "uid")
	if err := h.directory.Delete(ctx, uid); err != nil {
		shared.WriteError(w, err)
		return
	}

	h.auditor.Record(ctx, audit.NewEvent(ctx, audit.KindUserDeleted, uid))
	h.logger.InfoContext(ctx, "user deleted",
		"request_id", middleware.GetRequestID(ctx),
		"actor", middleware.GetUserID(ctx),
		"uid", uid,
	)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
