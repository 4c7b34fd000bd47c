// Package httptransport assembles the HTTP surface from the vertical
// handlers and the shared middleware chain.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"conocida/internal/auth"
	authhandler "conocida/internal/auth/handler"
	identityhandler "conocida/internal/identity/handler"
	"conocida/internal/platform/metrics"
	"conocida/internal/platform/middleware"
	profilehandler "conocida/internal/profile/handler"
	pushhandler "conocida/internal/push/handler"
	"conocida/internal/transport/http/shared"
	uploadhandler "conocida/internal/upload/handler"
	"conocida/internal/version"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	JWT      middleware.JWTValidator
	StepUp   *auth.StepUpService
	Profiles *profilehandler.Handler
	StepUpH  *authhandler.Handler
	Uploads  *uploadhandler.Handler
	Push     *pushhandler.Handler
	Users    *identityhandler.Handler
	VersionH *version.Handler
}

// NewRouter builds the full route tree. Public routes need no identity beyond
// the device fingerprint; /api/admin and the other privileged routes sit
// behind JWT auth plus the PIN step-up.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	r.Use(middleware.DeviceIdentity)

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Method(http.MethodGet, "/version.json", d.VersionH)

	r.Route("/api", func(api chi.Router) {
		d.Profiles.Register(api)
		d.Push.Register(api)
		d.Uploads.Register(api)

		api.Group(func(priv chi.Router) {
			priv.Use(middleware.RequireAuth(d.JWT, d.Logger))

			priv.Route("/admin", func(admin chi.Router) {
				d.StepUpH.Register(admin)

				admin.Group(func(gated chi.Router) {
					gated.Use(auth.RequireStepUp(d.StepUp))
					d.Profiles.RegisterAdmin(gated)
				})
			})

			priv.Group(func(gated chi.Router) {
				gated.Use(auth.RequireStepUp(d.StepUp))
				d.Push.RegisterAdmin(gated)
				d.Users.Register(gated)
			})
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "conocida server is running",
	})
}
