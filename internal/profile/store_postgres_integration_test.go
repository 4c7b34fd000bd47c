//go:build integration

package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"conocida/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), Schema)
	s.store = NewPostgresStore(s.pg.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "votes", "profiles"))
}

func (s *PostgresStoreSuite) insert(approved bool, createdAt time.Time) Profile {
	p := Profile{
		ID:        uuid.NewString(),
		FirstName: "Ana",
		LastName:  "González",
		Country:   "Paraguay",
		Province:  "Central",
		City:      "Luque",
		Photos:    []string{},
		Approved:  approved,
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.store.Create(context.Background(), p))
	return p
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	p := s.insert(false, time.Now().UTC().Truncate(time.Microsecond))

	got, err := s.store.GetByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal(p.FirstName, got.FirstName)
	s.False(got.Approved)
	s.Empty(got.Photos)
	s.True(p.CreatedAt.Equal(got.CreatedAt))
}

func (s *PostgresStoreSuite) TestGetByID_NotFound() {
	_, err := s.store.GetByID(context.Background(), uuid.NewString())
	s.ErrorIs(err, ErrNotFound)

	// Non-UUID ids arrive from HTTP paths; they must read as missing, not
	// as a database failure.
	_, err = s.store.GetByID(context.Background(), "not-a-uuid")
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostgresStoreSuite) TestApprovalPartition() {
	ctx := context.Background()
	hidden := s.insert(false, time.Now().UTC())
	visible := s.insert(true, time.Now().UTC())

	approved, err := s.store.ListApproved(ctx)
	s.Require().NoError(err)
	s.Require().Len(approved, 1)
	s.Equal(visible.ID, approved[0].ID)

	pending, err := s.store.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(hidden.ID, pending[0].ID)

	s.Require().NoError(s.store.SetApproved(ctx, hidden.ID))
	approved, err = s.store.ListApproved(ctx)
	s.Require().NoError(err)
	s.Len(approved, 2)
}

func (s *PostgresStoreSuite) TestCastVote() {
	ctx := context.Background()
	p := s.insert(true, time.Now().UTC())

	s.Require().NoError(s.store.CastVote(ctx, Vote{
		ProfileID: p.ID, VoterID: "d1", Choice: ChoiceYes, CreatedAt: time.Now().UTC(),
	}))
	err := s.store.CastVote(ctx, Vote{
		ProfileID: p.ID, VoterID: "d1", Choice: ChoiceNo, CreatedAt: time.Now().UTC(),
	})
	s.ErrorIs(err, ErrAlreadyVoted)

	got, err := s.store.GetByID(ctx, p.ID)
	s.Require().NoError(err)
	s.EqualValues(1, got.KnownYes)
	s.EqualValues(0, got.KnownNo)

	err = s.store.CastVote(ctx, Vote{
		ProfileID: uuid.NewString(), VoterID: "d1", Choice: ChoiceYes, CreatedAt: time.Now().UTC(),
	})
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostgresStoreSuite) TestCastVote_ConcurrentNoLostUpdates() {
	ctx := context.Background()
	p := s.insert(true, time.Now().UTC())

	const voters = 40
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < voters; i++ {
		n := i
		g.Go(func() error {
			choice := ChoiceYes
			if n%2 == 1 {
				choice = ChoiceNo
			}
			return s.store.CastVote(gctx, Vote{
				ProfileID: p.ID,
				VoterID:   fmt.Sprintf("device-%d", n),
				Choice:    choice,
				CreatedAt: time.Now().UTC(),
			})
		})
	}
	s.Require().NoError(g.Wait())

	got, err := s.store.GetByID(ctx, p.ID)
	s.Require().NoError(err)
	s.EqualValues(voters/2, got.KnownYes)
	s.EqualValues(voters/2, got.KnownNo)
}

func (s *PostgresStoreSuite) TestDeleteCascadesVotes() {
	ctx := context.Background()
	p := s.insert(true, time.Now().UTC())
	s.Require().NoError(s.store.CastVote(ctx, Vote{
		ProfileID: p.ID, VoterID: "d1", Choice: ChoiceYes, CreatedAt: time.Now().UTC(),
	}))

	s.Require().NoError(s.store.Delete(ctx, p.ID))
	_, err := s.store.GetByID(ctx, p.ID)
	s.ErrorIs(err, ErrNotFound)

	var count int
	s.Require().NoError(s.pg.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM votes WHERE profile_id = $1", p.ID).Scan(&count))
	s.Zero(count)

	s.ErrorIs(s.store.Delete(ctx, p.ID), ErrNotFound)
}

func (s *PostgresStoreSuite) TestAppendPhotos() {
	ctx := context.Background()
	p := s.insert(false, time.Now().UTC())

	s.Require().NoError(s.store.AppendPhotos(ctx, p.ID, []string{"https://cdn/a.jpg"}))
	s.Require().NoError(s.store.AppendPhotos(ctx, p.ID, []string{"https://cdn/b.jpg", "https://cdn/c.jpg"}))

	got, err := s.store.GetByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal([]string{"https://cdn/a.jpg", "https://cdn/b.jpg", "https://cdn/c.jpg"}, got.Photos)

	s.ErrorIs(s.store.AppendPhotos(ctx, uuid.NewString(), []string{"x"}), ErrNotFound)
}
