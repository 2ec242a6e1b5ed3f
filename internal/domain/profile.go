package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Profile bounds and defaults.
const (
	MinCycleLength      = 21
	MaxCycleLength      = 35
	MinPeriodLength     = 3
	MaxPeriodLength     = 10
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

// DefaultSymptoms is the vocabulary offered to a fresh installation.
var DefaultSymptoms = []string{
	"Cramps",
	"Headache",
	"Mood swings",
	"Bloating",
	"Fatigue",
	"Nausea",
	"Tender breasts",
	"Acne",
	"Back pain",
	"Constipation",
	"Diarrhea",
	"Food cravings",
	"Irritability",
	"Anxiety",
	"Insomnia",
}

var validate = validator.New()

// Profile holds the user's cycle preferences and symptom vocabulary.
type Profile struct {
	AverageCycleLength  int       `json:"averageCycleLength" validate:"min=21,max=35"`
	AveragePeriodLength int       `json:"averagePeriodLength" validate:"min=3,max=10"`
	Symptoms            []string  `json:"symptoms"`
	CreatedAt           time.Time `json:"createdAt"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// DefaultProfile returns the profile of a fresh installation created at now.
func DefaultProfile(now time.Time) Profile {
	return Profile{
		AverageCycleLength:  DefaultCycleLength,
		AveragePeriodLength: DefaultPeriodLength,
		Symptoms:            append([]string{}, DefaultSymptoms...),
		CreatedAt:           now.UTC(),
		LastUpdated:         now.UTC(),
	}
}

// Validate checks the cycle and period length bounds.
func (p Profile) Validate() error {
	return profileError(validate.Struct(p))
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	p.Symptoms = append([]string{}, p.Symptoms...)
	return p
}

// ProfileUpdate is a partial profile; nil fields are left untouched.
type ProfileUpdate struct {
	AverageCycleLength  *int     `json:"averageCycleLength,omitempty" validate:"omitempty,min=21,max=35"`
	AveragePeriodLength *int     `json:"averagePeriodLength,omitempty" validate:"omitempty,min=3,max=10"`
	Symptoms            []string `json:"symptoms,omitempty"`
}

// Validate checks the bounds of the fields that are set.
func (u ProfileUpdate) Validate() error {
	return profileError(validate.Struct(u))
}

// Apply merges the set fields of u into p.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.AverageCycleLength != nil {
		p.AverageCycleLength = *u.AverageCycleLength
	}
	if u.AveragePeriodLength != nil {
		p.AveragePeriodLength = *u.AveragePeriodLength
	}
	if u.Symptoms != nil {
		p.Symptoms = NormalizeSymptoms(u.Symptoms)
	}
	return p
}

func profileError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	switch verrs[0].Field() {
	case "AverageCycleLength":
		return fmt.Errorf("%w: cycle length must be between %d and %d days", ErrInvalidProfile, MinCycleLength, MaxCycleLength)
	case "AveragePeriodLength":
		return fmt.Errorf("%w: period length must be between %d and %d days", ErrInvalidProfile, MinPeriodLength, MaxPeriodLength)
	}
	return fmt.Errorf("%w: %v", ErrInvalidProfile, verrs[0])
}
