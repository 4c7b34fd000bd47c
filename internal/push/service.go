package push

import (
	"context"
	"fmt"
	"log/slog"

	"conocida/internal/platform/metrics"
	dErrors "conocida/pkg/domain-errors"
	"conocida/pkg/requestcontext"
)

// Service registers device tokens and dispatches notifications.
type Service struct {
	store      TokenStore
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type ServiceOption func(*Service)

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the push service. A nil dispatcher disables sending but
// keeps registration working so tokens survive until FCM is configured.
func NewService(store TokenStore, dispatcher Dispatcher, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{store: store, dispatcher: dispatcher, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register upserts a device token.
func (s *Service) Register(ctx context.Context, token, platform string) error {
	if token == "" {
		return dErrors.New(dErrors.CodeBadRequest, "token is required")
	}
	return s.store.Register(ctx, DeviceToken{
		Token:        token,
		Platform:     platform,
		RegisteredAt: requestcontext.Now(ctx).UTC(),
	})
}

// Broadcast sends msg to the given tokens, or to every registered token when
// none are given. Each delivery is independent; failures are collected, never
// fatal to the batch.
func (s *Service) Broadcast(ctx context.Context, tokens []string, msg Message) (Report, error) {
	if msg.Title == "" || msg.Body == "" {
		return Report{}, dErrors.New(dErrors.CodeBadRequest, "title and body are required")
	}
	if s.dispatcher == nil {
		return Report{}, dErrors.New(dErrors.CodeUnavailable, "push delivery is not configured")
	}

	if len(tokens) == 0 {
		registered, err := s.store.List(ctx)
		if err != nil {
			return Report{}, err
		}
		for _, t := range registered {
			tokens = append(tokens, t.Token)
		}
	}
	if len(tokens) == 0 {
		return Report{}, dErrors.New(dErrors.CodeBadRequest, "no tokens to send to")
	}

	var report Report
	for _, token := range tokens {
		if err := s.dispatcher.Send(ctx, token, msg); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, TokenError{Token: token, Error: err.Error()})
			s.metrics.IncPushFailed()
			continue
		}
		report.Sent++
		s.metrics.IncPushSent()
	}

	s.logger.InfoContext(ctx, "push broadcast finished",
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return report, nil
}

// ProfileNotifier adapts the push service to the profile vertical's
// new-submission alert.
type ProfileNotifier struct {
	service *Service
}

func NewProfileNotifier(service *Service) *ProfileNotifier {
	return &ProfileNotifier{service: service}
}

func (n *ProfileNotifier) NotifyNewSubmission(ctx context.Context, fullName, city, country string) error {
	_, err := n.service.Broadcast(ctx, nil, Message{
		Title: "Nueva persona pendiente",
		Body:  fmt.Sprintf("%s (%s, %s) espera aprobación", fullName, city, country),
		Data:  map[string]string{"kind": "submission"},
	})
	return err
}
