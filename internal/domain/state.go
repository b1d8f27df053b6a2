package domain

import "fmt"

// State is the scheduling stage of a record. There are only two: a
// record is Unseen until its first scoring pass and Scheduled forever
// after.
type State int

const (
	Unseen State = iota + 1
	Scheduled
)

var stateNames = [...]string{Unseen: "Unseen", Scheduled: "Scheduled"}

// String returns "Unseen" or "Scheduled"; invalid values render as
// "State(n)".
func (s State) String() string {
	if s >= Unseen && s <= Scheduled {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}
