package profile

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredProfile(t *testing.T, s *InMemoryStore, id string) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), Profile{
		ID:        id,
		FirstName: "Ana",
		LastName:  "González",
		Photos:    []string{},
		CreatedAt: time.Now().UTC(),
	}))
}

func TestInMemoryStore_CastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate voter is rejected without mutation", func(t *testing.T) {
		s := NewInMemoryStore()
		newStoredProfile(t, s, "p1")

		require.NoError(t, s.CastVote(ctx, Vote{ProfileID: "p1", VoterID: "d1", Choice: ChoiceYes}))
		err := s.CastVote(ctx, Vote{ProfileID: "p1", VoterID: "d1", Choice: ChoiceNo})
		require.ErrorIs(t, err, ErrAlreadyVoted)

		got, err := s.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.KnownYes)
		assert.EqualValues(t, 0, got.KnownNo)
	})

	t.Run("same voter may vote on different profiles", func(t *testing.T) {
		s := NewInMemoryStore()
		newStoredProfile(t, s, "p1")
		newStoredProfile(t, s, "p2")

		require.NoError(t, s.CastVote(ctx, Vote{ProfileID: "p1", VoterID: "d1", Choice: ChoiceYes}))
		require.NoError(t, s.CastVote(ctx, Vote{ProfileID: "p2", VoterID: "d1", Choice: ChoiceNo}))
	})

	t.Run("unknown profile is ErrNotFound", func(t *testing.T) {
		s := NewInMemoryStore()
		err := s.CastVote(ctx, Vote{ProfileID: "missing", VoterID: "d1", Choice: ChoiceYes})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no lost updates under concurrency", func(t *testing.T) {
		s := NewInMemoryStore()
		newStoredProfile(t, s, "p1")

		const voters = 200
		var wg sync.WaitGroup
		for i := 0; i < voters; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				choice := ChoiceYes
				if n%3 == 0 {
					choice = ChoiceNo
				}
				require.NoError(t, s.CastVote(ctx, Vote{
					ProfileID: "p1",
					VoterID:   fmt.Sprintf("device-%d", n),
					Choice:    choice,
				}))
			}(i)
		}
		wg.Wait()

		got, err := s.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.EqualValues(t, voters, got.KnownYes+got.KnownNo)
	})
}

func TestInMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	newStoredProfile(t, s, "p1")

	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, s.SetApproved(ctx, "p1"))

	approved, err := s.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	pending, err = s.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, s.AppendPhotos(ctx, "p1", []string{"a", "b"}))
	got, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Photos)

	require.NoError(t, s.Delete(ctx, "p1"))
	_, err = s.GetByID(ctx, "p1")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "p1"), ErrNotFound)
	require.ErrorIs(t, s.SetApproved(ctx, "p1"), ErrNotFound)
	require.ErrorIs(t, s.AppendPhotos(ctx, "p1", []string{"x"}), ErrNotFound)
}
