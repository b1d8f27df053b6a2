package srs

import (
	"errors"
	"fmt"
	"testing"
)

func TestQualityIsValid(t *testing.T) {
	for q := Blackout; q <= Perfect; q++ {
		if !q.IsValid() {
			t.Errorf("Quality(%d).IsValid = false", int(q))
		}
	}
	for _, q := range []Quality{-1, 6, 100} {
		if q.IsValid() {
			t.Errorf("Quality(%d).IsValid = true", int(q))
		}
	}
}

func TestQualitySuccessful(t *testing.T) {
	tests := []struct {
		q    Quality
		want bool
	}{
		{Blackout, false},
		{Incorrect, false},
		{IncorrectFamiliar, false},
		{CorrectDifficult, true},
		{CorrectHesitant, true},
		{Perfect, true},
	}
	for _, tc := range tests {
		if got := tc.q.Successful(); got != tc.want {
			t.Errorf("%v.Successful = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestQualityString(t *testing.T) {
	if Perfect.String() != "Perfect" {
		t.Errorf("Perfect.String = %q", Perfect.String())
	}
	if Blackout.String() != "Blackout" {
		t.Errorf("Blackout.String = %q", Blackout.String())
	}
	if got := Quality(7).String(); got != "Quality(7)" {
		t.Errorf("invalid Quality String = %q, want Quality(7)", got)
	}
}

func TestErrInvalidQualityWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit review: %w", ErrInvalidQuality)
	if !errors.Is(wrapped, ErrInvalidQuality) {
		t.Error("errors.Is lost ErrInvalidQuality through wrapping")
	}
}
