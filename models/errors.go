package models

import (
	"errors"
	"fmt"
)

// Engine-level error taxonomy. Every error here is recoverable at the
// request boundary; none of them leaves the identity store modified.
var (
	// ErrInvalidFrame marks malformed or undecodable frame input
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrNoFaceDetected is returned when an enrollment shot contains no face
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrMultipleFacesDetected is returned when an enrollment shot contains
	// more than one face
	ErrMultipleFacesDetected = errors.New("multiple faces detected")

	// ErrDegenerateFace marks a face crop too small to produce a signature
	ErrDegenerateFace = errors.New("face crop too small")

	// ErrDuplicateName is returned when an identity name is already taken
	// (case-normalized comparison)
	ErrDuplicateName = errors.New("name already registered")

	// ErrNotFound is returned when an identity does not exist
	ErrNotFound = errors.New("identity not found")
)

// DuplicatePersonError aborts an enrollment whose face already matches an
// enrolled identity under a different name
type DuplicatePersonError struct {
	ExistingName string
	Score        float64
}

func (e *DuplicatePersonError) Error() string {
	return fmt.Sprintf("face already registered as %q (similarity %.2f)", e.ExistingName, e.Score)
}

// QualityError rejects a single enrollment shot without consuming it. The
// caller retries the same shot.
type QualityError struct {
	Reason string
}

func (e *QualityError) Error() string {
	return "shot failed quality check: " + e.Reason
}
