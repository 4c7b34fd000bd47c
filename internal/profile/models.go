package profile

import (
	"strings"
	"time"

	dErrors "conocida/pkg/domain-errors"

	"conocida/internal/geo"
)

// Profile is the root entity: a submitted entry awaiting moderation, its
// photos and its vote counters. Counters only ever increase; Approved is only
// ever set by a moderator.
type Profile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Country   string    `json:"country"`
	Province  string    `json:"province"`
	City      string    `json:"city"`
	Story     string    `json:"story,omitempty"`
	Photos    []string  `json:"photos"`
	Approved  bool      `json:"approved"`
	KnownYes  int64     `json:"knownYes"`
	KnownNo   int64     `json:"knownNo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Score is the ranking input derived from community votes.
func (p Profile) Score() int64 {
	return p.KnownYes - p.KnownNo
}

// Choice is a vote decision.
type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// ParseChoice validates a wire-level choice value.
func ParseChoice(raw string) (Choice, error) {
	switch Choice(strings.ToLower(raw)) {
	case ChoiceYes:
		return ChoiceYes, nil
	case ChoiceNo:
		return ChoiceNo, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "choice must be yes or no")
	}
}

// Vote records that a device has cast a decision for a profile. At most one
// vote exists per (profile, voter); votes cannot be changed or retracted.
type Vote struct {
	ProfileID string
	VoterID   string
	Choice    Choice
	CreatedAt time.Time
}

// SubmitInput carries the fields of a new submission.
type SubmitInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Story     string `json:"story"`
}

// Validate enforces required fields and the geographic invariant.
func (in SubmitInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "last name is required")
	}
	return geo.Validate(in.Country, in.Province, in.City)
}
