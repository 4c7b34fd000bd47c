package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conocida/internal/platform/middleware"
	"conocida/internal/profile"
	"conocida/internal/transport/http/shared"
	dErrors "conocida/pkg/domain-errors"
)

// Service defines the profile operations the transport layer needs.
type Service interface {
	Submit(ctx context.Context, in profile.SubmitInput) (profile.Profile, error)
	Feed(ctx context.Context) ([]profile.Profile, error)
	Get(ctx context.Context, id string) (profile.Profile, error)
	Vote(ctx context.Context, profileID, voterID string, choice profile.Choice) error
	Pending(ctx context.Context) ([]profile.Profile, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Handler wires profile endpoints to the profile service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a profile handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public profile endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/persons", h.HandleFeed)
	r.Post("/persons", h.HandleSubmit)
	r.Get("/persons/{id}", h.HandleGet)
	r.Post("/persons/{id}/vote", h.HandleVote)
}

// RegisterAdmin mounts the moderation endpoints. The router is expected to
// wrap these in the auth and step-up middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/pending", h.HandlePending)
	r.Post("/persons/{id}/approve", h.HandleApprove)
	r.Post("/persons/{id}/reject", h.HandleReject)
	r.Delete("/persons/{id}", h.HandleDelete)
}

type submitRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Story     string `json:"story"`
}

type voteRequest struct {
	Choice string `json:"choice"`
}

type feedResponse struct {
	Persons []profile.Profile `json:"persons"`
}

// HandleFeed handles GET /api/persons. A store outage degrades to an empty
// gallery rather than an error page; the failure is logged.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	persons, err := h.service.Feed(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "feed unavailable, serving empty gallery",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteJSON(w, http.StatusOK, feedResponse{Persons: []profile.Profile{}})
		return
	}
	shared.WriteJSON(w, http.StatusOK, feedResponse{Persons: persons})
}

// HandleSubmit handles POST /api/persons.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	p, err := h.service.Submit(ctx, profile.SubmitInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
		Province:  req.Province,
		City:      req.City,
		Story:     req.Story,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "profile submitted",
		"request_id", middleware.GetRequestID(ctx),
		"profile_id", p.ID,
	)
	shared.WriteJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /api/persons/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

// HandleVote handles POST /api/persons/{id}/vote. The voter identity comes
// from the device middleware, never from the request body.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID := chi.URLParam(r, "id")

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	choice, err := profile.ParseChoice(req.Choice)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	voterID := middleware.GetDeviceID(ctx)
	if err := h.service.Vote(ctx, profileID, voterID, choice); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeAlreadyVoted) && !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "vote failed",
				"request_id", middleware.GetRequestID(ctx),
				"profile_id", profileID,
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// HandlePending handles GET /api/admin/pending.
func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	persons, err := h.service.Pending(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, feedResponse{Persons: persons})
}

// HandleApprove handles POST /api/admin/persons/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.service.Approve, "profile approved")
}

// HandleReject handles POST /api/admin/persons/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.service.Reject, "profile rejected")
}

// HandleDelete handles DELETE /api/admin/persons/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.service.Delete, "profile deleted")
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error, msg string) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := op(ctx, id); err != nil {
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"profile_id", id,
		"actor", middleware.GetUserID(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
