package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Uploads stream up to ten 10MB files; keep the write window generous.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}
