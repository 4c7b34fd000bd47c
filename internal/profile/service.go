package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"conocida/internal/audit"
	"conocida/internal/platform/metrics"
	dErrors "conocida/pkg/domain-errors"
	"conocida/pkg/requestcontext"
)

var tracer = otel.Tracer("conocida/profile")

// Authorizer decides whether the actor in ctx may perform moderation.
type Authorizer interface {
	CanModerate(ctx context.Context) error
}

// Notifier alerts moderators about new submissions. Implementations are
// best-effort; the service never fails a submit on a notification error.
type Notifier interface {
	NotifyNewSubmission(ctx context.Context, fullName, city, country string) error
}

// PhotoPurger removes stored photo objects when a profile is deleted.
type PhotoPurger interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// Service orchestrates submissions, the public feed, moderation and voting.
type Service struct {
	store   Store
	authz   Authorizer
	notify  Notifier
	purger  PhotoPurger
	audit   audit.Publisher
	metrics *metrics.Metrics
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithNotifier wires the moderator alert channel.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notify = n
		}
	}
}

// WithPhotoPurger wires object-storage cleanup for deletions.
func WithPhotoPurger(p PhotoPurger) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.purger = p
		}
	}
}

// WithMetrics wires Prometheus counters.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the profile service. store, authz and auditPublisher
// are required; everything else is optional.
func NewService(store Store, authz Authorizer, auditPublisher audit.Publisher, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		authz: authz,
		audit: auditPublisher,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit validates and persists a new profile. It enters the moderation queue
// unapproved; the moderator alert is fire-and-forget.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Profile, error) {
	ctx, span := tracer.Start(ctx, "profile.Submit")
	defer span.End()

	if err := in.Validate(); err != nil {
		return Profile{}, err
	}

	p := Profile{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Country:   in.Country,
		Province:  in.Province,
		City:      in.City,
		Story:     in.Story,
		Photos:    []string{},
		Approved:  false,
		CreatedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return Profile{}, err
	}

	s.metrics.IncProfilesSubmitted()
	s.audit.Record(ctx, audit.NewEvent(ctx, audit.KindProfileSubmitted, p.ID))

	if s.notify != nil {
		// Failure here must never surface to the submitter.
		_ = s.notify.NotifyNewSubmission(ctx, p.FirstName+" "+p.LastName, p.City, p.Country)
	}

	return p, nil
}

// Feed returns the ranked public listing: approved profiles only, always.
func (s *Service) Feed(ctx context.Context) ([]Profile, error) {
	ctx, span := tracer.Start(ctx, "profile.Feed")
	defer span.End()

	visible, err := s.store.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(visible), nil
}

// Get fetches one profile regardless of approval; exposure of moderation
// actions on it is the transport layer's concern.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.store.GetByID(ctx, id)
}

// Pending returns the moderation queue, newest first. Unauthorized actors get
// nothing, not even the count.
func (s *Service) Pending(ctx context.Context) ([]Profile, error) {
	ctx, span := tracer.Start(ctx, "profile.Pending")
	defer span.End()

	if err := s.authz.CanModerate(ctx); err != nil {
		return nil, err
	}
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(pending), nil
}

// Approve flips a profile into the public feed.
func (s *Service) Approve(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "profile.Approve")
	defer span.End()

	if err := s.authz.CanModerate(ctx); err != nil {
		return err
	}
	if err := s.store.SetApproved(ctx, id); err != nil {
		return err
	}
	s.metrics.IncProfilesApproved()
	s.audit.Record(ctx, audit.NewEvent(ctx, audit.KindProfileApproved, id))
	return nil
}

// Vote records one decision per voter per profile. Duplicates are rejected
// with no mutation; replays of a rejected vote never change counters.
func (s *Service) Vote(ctx context.Context, profileID, voterID string, choice Choice) error {
	ctx, span := tracer.Start(ctx, "profile.Vote")
	defer span.End()

	if voterID == "" {
		// No identity means no way to enforce one vote per voter.
		return dErrors.New(dErrors.CodeBadRequest, "voter identity required")
	}

	err := s.store.CastVote(ctx, Vote{
		ProfileID: profileID,
		VoterID:   voterID,
		Choice:    choice,
		CreatedAt: requestcontext.Now(ctx).UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			s.metrics.IncVoteRejected()
		}
		return err
	}

	s.metrics.IncVoteAccepted(string(choice))
	s.audit.Record(ctx, audit.NewEvent(ctx, audit.KindVoteCast, profileID))
	return nil
}

// AddPhotos appends already-hosted photo URLs to a profile. An empty append
// still verifies the profile exists, which lets callers pre-check ownership.
func (s *Service) AddPhotos(ctx context.Context, id string, urls []string) error {
	if len(urls) == 0 {
		_, err := s.store.GetByID(ctx, id)
		return err
	}
	if err := s.store.AppendPhotos(ctx, id, urls); err != nil {
		return err
	}
	s.metrics.AddPhotosUploaded(len(urls))
	return nil
}

// Delete removes a profile and everything it owns: votes cascade in the
// store, photo objects are purged best-effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "profile.Delete")
	defer span.End()

	if err := s.authz.CanModerate(ctx); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.IncProfilesDeleted()
	s.audit.Record(ctx, audit.NewEvent(ctx, audit.KindProfileDeleted, id))

	if s.purger != nil {
		_ = s.purger.DeletePrefix(ctx, "persons/"+id+"/")
	}
	return nil
}

// Reject is the moderation refusal: an audited delete of a pending profile.
func (s *Service) Reject(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "profile.Reject")
	defer span.End()

	if err := s.authz.CanModerate(ctx); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.IncProfilesDeleted()
	s.audit.Record(ctx, audit.NewEvent(ctx, audit.KindProfileRejected, id))

	if s.purger != nil {
		_ = s.purger.DeletePrefix(ctx, "persons/"+id+"/")
	}
	return nil
}
