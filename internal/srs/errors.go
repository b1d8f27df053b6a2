package srs

import "errors"

// ErrInvalidQuality reports a quality score outside [0,5]. Scores are
// never clamped: a clamped score would silently corrupt the learning
// signal, so the caller must correct and retry. Check with errors.Is.
var ErrInvalidQuality = errors.New("srs: quality score outside [0,5]")
