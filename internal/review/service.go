// Package review coordinates the scheduler with durable storage. The
// scheduler itself is pure; this package supplies the serialization the
// scheduler requires of its callers: concurrent submissions for the
// same (learner, item) record go through a record-scoped lock and the
// store's optimistic version check, so no update is silently lost.
package review

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lingoreps/lingoreps/internal/domain"
	"github.com/lingoreps/lingoreps/internal/srs"
	"github.com/lingoreps/lingoreps/internal/storage"
)

// ErrUnknownItem reports a submission against an item that is not in
// the store.
var ErrUnknownItem = errors.New("review: unknown item")

// Service applies review outcomes to stored records.
type Service struct {
	db  *storage.DB
	log *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a Service over the given store.
func NewService(db *storage.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:    db,
		log:   logger,
		locks: make(map[string]*sync.Mutex),
	}
}

// recordLock returns the mutex guarding one (learner, item) record,
// creating it on first use. Locks are never removed; the map grows with
// the number of distinct records touched by this process.
func (s *Service) recordLock(learnerID, itemKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := learnerID + "\x00" + itemKey
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Submit applies one review outcome for the learner and item and
// persists the updated record. A learner reviewing an item for the
// first time gets a fresh record implicitly. today is the calendar date
// of the review. The update is retried once if another writer bumped
// the record's version between read and write.
func (s *Service) Submit(learnerID, itemKey string, q srs.Quality, today time.Time) (domain.Record, error) {
	if !q.IsValid() {
		return domain.Record{}, fmt.Errorf("%w: got %d", srs.ErrInvalidQuality, int(q))
	}

	lock := s.recordLock(learnerID, itemKey)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; ; attempt++ {
		row, err := s.db.GetRecord(learnerID, itemKey)
		if err != nil {
			return domain.Record{}, fmt.Errorf("submit review: %w", err)
		}
		if row == nil {
			rec, err := s.enrollOne(learnerID, itemKey)
			if err != nil {
				return domain.Record{}, err
			}
			row = &storage.ReviewRow{LearnerID: learnerID, ItemKey: itemKey, Record: rec, Version: 1}
		}

		scored, err := srs.Score(row.Record, q, today)
		if err != nil {
			return domain.Record{}, fmt.Errorf("submit review: %w", err)
		}

		err = s.db.UpdateRecord(learnerID, itemKey, scored, row.Version)
		if err == nil {
			s.log.Info("review recorded",
				"learner", learnerID,
				"item", itemKey,
				"quality", q.String(),
				"interval_days", scored.IntervalDays,
				"next_review", scored.NextReview,
			)
			return scored, nil
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt == 0 {
			s.log.Warn("review record changed underneath, retrying",
				"learner", learnerID, "item", itemKey)
			continue
		}
		return domain.Record{}, fmt.Errorf("submit review: %w", err)
	}
}

// enrollOne creates the learner's record for an item on first encounter.
func (s *Service) enrollOne(learnerID, itemKey string) (domain.Record, error) {
	item, err := s.db.FindItemByKey(itemKey)
	if err != nil {
		return domain.Record{}, fmt.Errorf("submit review: %w", err)
	}
	if item == nil {
		return domain.Record{}, fmt.Errorf("%w: %s", ErrUnknownItem, itemKey)
	}
	rec := domain.NewRecord()
	if err := s.db.InsertRecord(learnerID, itemKey, rec); err != nil {
		return domain.Record{}, fmt.Errorf("submit review: %w", err)
	}
	return rec, nil
}

// Due returns the learner's records due for review as of the given
// time, never-scheduled first.
func (s *Service) Due(learnerID string, asOf time.Time, limit int) ([]storage.ReviewRow, error) {
	rows, err := s.db.DueRecords(learnerID, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("list due records: %w", err)
	}
	return rows, nil
}

// Enroll creates an unseen record for every item the learner has none
// for, and returns how many were created. Fresh records have no next
// review date, which makes them due immediately.
func (s *Service) Enroll(learnerID string) (int, error) {
	keys, err := s.db.ItemKeysWithoutRecord(learnerID)
	if err != nil {
		return 0, fmt.Errorf("enroll learner %s: %w", learnerID, err)
	}
	created := 0
	for _, key := range keys {
		if err := s.db.InsertRecord(learnerID, key, domain.NewRecord()); err != nil {
			return created, fmt.Errorf("enroll learner %s: %w", learnerID, err)
		}
		created++
	}
	if created > 0 {
		s.log.Info("learner enrolled", "learner", learnerID, "new_records", created)
	}
	return created, nil
}
