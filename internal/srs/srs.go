// Package srs implements the SM-2 spaced-repetition scheduling
// algorithm over review records, extended with a bounded rolling
// history of recall-quality scores.
//
// Score is a pure function: it reads no clock, performs no I/O and
// never mutates its input record, so concurrent calls are safe as long
// as each operates on its own record value. Serializing concurrent
// updates to the same stored record is the persistence layer's job.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/lingoreps/lingoreps/internal/domain"
)

// Score applies one review outcome to a record and returns the updated
// record. today is the calendar date the review happened on; the next
// review date is computed from it in calendar days. A quality outside
// [0,5] returns an error wrapping ErrInvalidQuality and leaves the
// record unused.
func Score(rec domain.Record, q Quality, today time.Time) (domain.Record, error) {
	if !q.IsValid() {
		return domain.Record{}, fmt.Errorf("%w: got %d", ErrInvalidQuality, int(q))
	}

	out := rec.Clone()

	// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored at 1.3.
	miss := float64(5 - q)
	ease := rec.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
	if ease < domain.MinEaseFactor {
		ease = domain.MinEaseFactor
	}
	out.EaseFactor = ease

	if !q.Successful() {
		// Failed recall: the interval restarts from one day. The ease
		// factor keeps the penalty applied above.
		out.IntervalDays = 1
	} else {
		switch rec.ReviewCount {
		case 0:
			out.IntervalDays = 1
		case 1:
			out.IntervalDays = 6
		default:
			out.IntervalDays = int(math.Round(float64(rec.IntervalDays) * ease))
		}
	}

	next := today.AddDate(0, 0, out.IntervalDays)
	out.NextReview = &next

	out.History = rec.History.Append(int(q))
	out.ReviewCount = rec.ReviewCount + 1

	return out, nil
}

// IsDue reports whether the record should be presented for review as of
// the given date. A record that was never scheduled is always due.
func IsDue(rec domain.Record, asOf time.Time) bool {
	if rec.NextReview == nil {
		return true
	}
	return !rec.NextReview.After(asOf)
}
