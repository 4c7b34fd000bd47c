// Package audit records who did what to which profile. Events are emitted by
// the domain services and persisted out-of-band by a worker so audit latency
// never sits on the request path.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"conocida/internal/platform/middleware"
	"conocida/pkg/requestcontext"
)

// Kind labels the audited action.
type Kind string

const (
	KindProfileSubmitted Kind = "profile.submitted"
	KindProfileApproved  Kind = "profile.approved"
	KindProfileRejected  Kind = "profile.rejected"
	KindProfileDeleted   Kind = "profile.deleted"
	KindVoteCast         Kind = "vote.cast"
	KindUserDeleted      Kind = "user.deleted"
	KindPushBroadcast    Kind = "push.broadcast"
)

// Event is one audited action. Actor is empty for anonymous actions
// (submissions, votes).
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	SubjectID string    `json:"subject_id"`
	Actor     string    `json:"actor,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// NewEvent builds an event stamped from the request context.
func NewEvent(ctx context.Context, kind Kind, subjectID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		SubjectID: subjectID,
		Actor:     middleware.GetUserID(ctx),
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx).UTC(),
	}
}
