package profile

import (
	"context"
	"sync"
)

type memoryRecord struct {
	profile Profile
	votes   map[string]Choice // voterID -> choice
}

// InMemoryStore keeps profiles in process memory. It backs unit tests and
// local development without a database.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*memoryRecord)}
}

func (s *InMemoryStore) Create(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[p.ID] = &memoryRecord{profile: p, votes: make(map[string]Choice)}
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return rec.profile, nil
}

func (s *InMemoryStore) ListApproved(_ context.Context) ([]Profile, error) {
	return s.list(func(p Profile) bool { return p.Approved }), nil
}

func (s *InMemoryStore) ListPending(_ context.Context) ([]Profile, error) {
	return s.list(func(p Profile) bool { return !p.Approved }), nil
}

func (s *InMemoryStore) list(keep func(Profile) bool) []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.records))
	for _, rec := range s.records {
		if keep(rec.profile) {
			out = append(out, rec.profile)
		}
	}
	return out
}

func (s *InMemoryStore) SetApproved(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.profile.Approved = true
	return nil
}

func (s *InMemoryStore) AppendPhotos(_ context.Context, id string, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.profile.Photos = append(rec.profile.Photos, urls...)
	return nil
}

// CastVote holds the write lock across the duplicate check and the counter
// increment, which is what makes the pair atomic here.
func (s *InMemoryStore) CastVote(_ context.Context, vote Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[vote.ProfileID]
	if !ok {
		return ErrNotFound
	}
	if _, voted := rec.votes[vote.VoterID]; voted {
		return ErrAlreadyVoted
	}
	rec.votes[vote.VoterID] = vote.Choice
	if vote.Choice == ChoiceYes {
		rec.profile.KnownYes++
	} else {
		rec.profile.KnownNo++
	}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}
