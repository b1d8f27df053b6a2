package srs

import "fmt"

// Quality is the learner's self-assessed recall score for one review
// attempt, on the SM-2 scale of 0 (blackout) to 5 (perfect recall).
// Scores of 3 and above count as successful recall.
type Quality int

const (
	Blackout          Quality = 0 // no recall at all
	Incorrect         Quality = 1 // wrong, but the answer was recognized
	IncorrectFamiliar Quality = 2 // wrong, but the answer felt familiar
	CorrectDifficult  Quality = 3 // correct with serious effort
	CorrectHesitant   Quality = 4 // correct after hesitation
	Perfect           Quality = 5 // correct without hesitation
)

var qualityNames = [...]string{
	Blackout:          "Blackout",
	Incorrect:         "Incorrect",
	IncorrectFamiliar: "IncorrectFamiliar",
	CorrectDifficult:  "CorrectDifficult",
	CorrectHesitant:   "CorrectHesitant",
	Perfect:           "Perfect",
}

// IsValid reports whether q is on the 0..5 scale.
func (q Quality) IsValid() bool {
	return q >= Blackout && q <= Perfect
}

// Successful reports whether q counts as a successful recall.
func (q Quality) Successful() bool {
	return q >= CorrectDifficult
}

// String returns the name of the score; invalid values render as
// "Quality(n)".
func (q Quality) String() string {
	if q.IsValid() {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}
