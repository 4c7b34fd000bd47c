package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"

	"github.com/mssola/useragent"
)

type contextKeyDeviceID struct{}

// GetDeviceID retrieves the voter device identifier from the context.
func GetDeviceID(ctx context.Context) string {
	if deviceID, ok := ctx.Value(contextKeyDeviceID{}).(string); ok {
		return deviceID
	}
	return ""
}

// WithDeviceID injects a device identifier into a context. Useful for service
// unit tests that don't run the full HTTP middleware chain.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, contextKeyDeviceID{}, deviceID)
}

// DeviceIdentity resolves the opaque voter identity for this request. Clients
// send a persisted X-Device-ID; without one we fall back to fingerprinting
// user agent plus source address. The fingerprint is weaker than a client key
// but still prevents casual repeat voting from the same browser.
func DeviceIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get("X-Device-ID")
		if deviceID == "" {
			deviceID = fingerprint(r)
		}
		next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), deviceID)))
	})
}

func fingerprint(r *http.Request) string {
	ua := useragent.New(r.UserAgent())
	name, version := ua.Browser()

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}

	sum := sha256.Sum256([]byte(host + "|" + ua.OS() + "|" + name + "|" + version))
	return "fp:" + hex.EncodeToString(sum[:16])
}
