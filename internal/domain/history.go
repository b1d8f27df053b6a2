package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// HistorySize is the number of recent quality scores a record retains.
const HistorySize = 5

// History is a fixed-capacity ring of the most recent quality scores.
// Appending beyond capacity evicts the oldest entry. The zero value is
// an empty history. History is a value type: Append returns a new
// History and never mutates its receiver.
type History struct {
	scores [HistorySize]int
	start  int
	count  int
}

// Append returns a copy of h with q added as the newest entry,
// evicting the oldest entry if the ring is full.
func (h History) Append(q int) History {
	if h.count < HistorySize {
		h.scores[(h.start+h.count)%HistorySize] = q
		h.count++
		return h
	}
	h.scores[h.start] = q
	h.start = (h.start + 1) % HistorySize
	return h
}

// Len returns the number of scores held, at most HistorySize.
func (h History) Len() int {
	return h.count
}

// Values returns the scores in chronological order, oldest first.
// An empty history returns nil.
func (h History) Values() []int {
	if h.count == 0 {
		return nil
	}
	out := make([]int, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.scores[(h.start+i)%HistorySize]
	}
	return out
}

// Last returns the most recent score. ok is false for an empty history.
func (h History) Last() (score int, ok bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.scores[(h.start+h.count-1)%HistorySize], true
}

// Encode serializes the history as comma-separated decimals, oldest
// first, e.g. "3,5,4". An empty history encodes as "". This is the
// persistence format for the quality_history column; ParseHistory is
// its inverse.
func (h History) Encode() string {
	vals := h.Values()
	if len(vals) == 0 {
		return ""
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// ParseHistory decodes the comma-separated format produced by Encode.
// It rejects more than HistorySize entries and any entry outside [0,5].
func ParseHistory(s string) (History, error) {
	var h History
	if s == "" {
		return h, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > HistorySize {
		return History{}, fmt.Errorf("%w: history has %d entries, maximum %d", ErrValidation, len(parts), HistorySize)
	}
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return History{}, fmt.Errorf("%w: bad history entry %q", ErrValidation, p)
		}
		if v < 0 || v > 5 {
			return History{}, fmt.Errorf("%w: history score %d outside [0,5]", ErrValidation, v)
		}
		h = h.Append(v)
	}
	return h, nil
}
