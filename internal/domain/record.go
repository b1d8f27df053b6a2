package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults for a freshly created record.
const (
	DefaultEaseFactor   = 2.5
	DefaultIntervalDays = 1

	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3
)

// ErrValidation reports an attempt to build a record that violates an
// invariant. Check with errors.Is.
var ErrValidation = errors.New("domain: invalid review record")

// Record is the scheduling state for one (learner, item) pair. It is a
// value type: the scheduler takes a Record and returns a new one, and
// callers that need the prior state must keep their own copy. NextReview
// is nil until the record has been scored at least once.
type Record struct {
	EaseFactor   float64 `validate:"gte=1.3"`
	IntervalDays int     `validate:"gte=1"`
	NextReview   *time.Time
	ReviewCount  int `validate:"gte=0"`
	History      History
}

var validate = validator.New()

// NewRecord returns a record with default scheduling state: ease 2.5,
// interval 1 day, no reviews, no next-review date.
func NewRecord() Record {
	return Record{
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: DefaultIntervalDays,
	}
}

// Restore rebuilds a record from persisted fields, validating every
// invariant. nextReview may be nil for a record that was never scored.
// Violations return an error wrapping ErrValidation.
func Restore(ease float64, intervalDays int, nextReview *time.Time, reviewCount int, history History) (Record, error) {
	r := Record{
		EaseFactor:   ease,
		IntervalDays: intervalDays,
		ReviewCount:  reviewCount,
		History:      history,
	}
	if nextReview != nil {
		t := *nextReview
		r.NextReview = &t
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the record's invariants.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if r.History.Len() > HistorySize {
		return fmt.Errorf("%w: history exceeds %d entries", ErrValidation, HistorySize)
	}
	return nil
}

// Clone returns a deep copy of the record. The NextReview pointer is
// copied by value so the clone shares nothing with the original.
func (r Record) Clone() Record {
	out := r
	if r.NextReview != nil {
		t := *r.NextReview
		out.NextReview = &t
	}
	return out
}

// State reports whether the record has ever been scheduled.
func (r Record) State() State {
	if r.NextReview == nil && r.ReviewCount == 0 {
		return Unseen
	}
	return Scheduled
}
