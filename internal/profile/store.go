package profile

import (
	"context"

	dErrors "conocida/pkg/domain-errors"
)

// Storage-level sentinels shared by all implementations.
var (
	ErrNotFound     = dErrors.New(dErrors.CodeNotFound, "profile not found")
	ErrAlreadyVoted = dErrors.New(dErrors.CodeAlreadyVoted, "voter already has a recorded vote for this profile")
)

// Store persists profiles and their votes. Implementations must make CastVote
// atomic: the duplicate check and the counter increment land together or not
// at all, and concurrent distinct voters on one profile are all counted.
type Store interface {
	Create(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, id string) (Profile, error)
	ListApproved(ctx context.Context) ([]Profile, error)
	ListPending(ctx context.Context) ([]Profile, error)
	SetApproved(ctx context.Context, id string) error
	AppendPhotos(ctx context.Context, id string, urls []string) error
	CastVote(ctx context.Context, vote Vote) error
	Delete(ctx context.Context, id string) error
}
