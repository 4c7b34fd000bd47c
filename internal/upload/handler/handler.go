package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conocida/internal/platform/middleware"
	"conocida/internal/transport/http/shared"
	"conocida/internal/upload"
	dErrors "conocida/pkg/domain-errors"
)

// Handler exposes the multipart photo upload endpoint.
type Handler struct {
	service *upload.Service
	logger  *slog.Logger
}

func New(service *upload.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/upload", h.HandleUpload)
}

type uploadResponse struct {
	Success bool     `json:"success"`
	URLs    []string `json:"urls"`
}

// HandleUpload handles POST /api/upload. Fields: personId plus up to ten
// photos parts, each capped at 10 MB.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// One extra MB of headroom for the non-file fields.
	r.Body = http.MaxBytesReader(w, r.Body, int64(upload.MaxFiles)*upload.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "upload too large"))
			return
		}
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	personID := r.FormValue("personId")

	var files []upload.File
	for _, header := range r.MultipartForm.File["photos"] {
		if header.Size > upload.MaxFileSize {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file exceeds the 10MB limit"))
			return
		}
		part, err := header.Open()
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable file part"))
			return
		}
		data, err := io.ReadAll(io.LimitReader(part, upload.MaxFileSize+1))
		_ = part.Close()
		if err != nil || len(data) > upload.MaxFileSize {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file exceeds the 10MB limit"))
			return
		}
		files = append(files, upload.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	urls, err := h.service.Store(ctx, personID, files)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "upload failed",
				"request_id", middleware.GetRequestID(ctx),
				"profile_id", personID,
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, uploadResponse{Success: true, URLs: urls})
}
