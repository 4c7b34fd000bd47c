// Package version serves the client update-check manifest.
package version

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"conocida/internal/platform/config"
	"conocida/internal/transport/http/shared"
	"conocida/pkg/requestcontext"
)

// Manifest is the app update descriptor clients poll for.
type Manifest struct {
	Version        string   `json:"version"`
	Build          int      `json:"build"`
	ReleaseDate    string   `json:"releaseDate"`
	DownloadURL    string   `json:"downloadUrl"`
	UpdateRequired bool     `json:"updateRequired"`
	UpdateMessage  string   `json:"updateMessage"`
	Changelog      []string `json:"changelog"`
}

// Handler serves GET /version.json.
type Handler struct {
	cfg    config.VersionConfig
	logger *slog.Logger
}

func NewHandler(cfg config.VersionConfig, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, logger: logger}
}

// ServeHTTP reads the manifest file on every request so a deploy can swap it
// without a restart. A missing or malformed file degrades to the default.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.manifest(r))
}

func (h *Handler) manifest(r *http.Request) Manifest {
	data, err := os.ReadFile(h.cfg.File)
	if err != nil {
		return h.fallback(r)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil || m.Version == "" {
		h.logger.WarnContext(r.Context(), "malformed version manifest, serving default",
			"file", h.cfg.File,
			"error", err,
		)
		return h.fallback(r)
	}
	if m.Changelog == nil {
		m.Changelog = []string{}
	}
	return m
}

func (h *Handler) fallback(r *http.Request) Manifest {
	downloadURL := h.cfg.DownloadURL
	if downloadURL == "" {
		downloadURL = "https://conocida.example/app-release.apk"
	}
	return Manifest{
		Version:     "1.0.0",
		Build:       1,
		ReleaseDate: requestcontext.Now(r.Context()).UTC().Format("2006-01-02T15:04:05Z07:00"),
		DownloadURL: downloadURL,
		Changelog:   []string{},
	}
}
