package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"conocida/internal/platform/config"
	dErrors "conocida/pkg/domain-errors"
)

// HTTPDirectory proxies the auth provider's admin REST API.
type HTTPDirectory struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPDirectory returns nil when no base URL is configured; the handler
// turns a nil directory into 503s.
func NewHTTPDirectory(cfg config.DirectoryConfig) *HTTPDirectory {
	if cfg.BaseURL == "" {
		return nil
	}
	return &HTTPDirectory{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type listResponse struct {
	Users []Account `json:"users"`
}

func (d *HTTPDirectory) List(ctx context.Context) ([]Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/users?limit=%d", d.baseURL, listCap), nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "user directory unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, directoryError(resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "malformed directory response")
	}
	if len(body.Users) > listCap {
		body.Users = body.Users[:listCap]
	}
	return body.Users, nil
}

func (d *HTTPDirectory) Delete(ctx context.Context, uid string) error {
	if uid == "" {
		return dErrors.New(dErrors.CodeBadRequest, "uid is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		d.baseURL+"/users/"+url.PathEscape(uid), nil)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "user directory unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return directoryError(resp.StatusCode)
	}
	return nil
}

func (d *HTTPDirectory) authorize(req *http.Request) {
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}
}

func directoryError(status int) error {
	switch status {
	case http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case http.StatusUnauthorized, http.StatusForbidden:
		return dErrors.New(dErrors.CodeUnavailable, "directory rejected admin credentials")
	default:
		return dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("directory returned status %d", status))
	}
}
