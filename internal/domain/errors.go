package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the session engine. Every specific error below wraps one of
// these three so callers (service, api) classify them with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// --- NotFound ---
// Missing and foreign-owned entities are reported identically.
var (
	ErrSessionNotFound         = fmt.Errorf("session %w", ErrNotFound)
	ErrProgramNotFound         = fmt.Errorf("program %w", ErrNotFound)
	ErrSessionExerciseNotFound = fmt.Errorf("session exercise %w", ErrNotFound)
	ErrSessionSetNotFound      = fmt.Errorf("session set %w", ErrNotFound)
	ErrExerciseNotFound        = fmt.Errorf("exercise %w", ErrNotFound)
	ErrMediaNotFound           = fmt.Errorf("media %w", ErrNotFound)
)

// --- Validation ---
var (
	ErrExerciseIdentityRequired = fmt.Errorf("%w: select catalog exercise or provide custom name", ErrValidation)
	ErrPlannedExerciseRemoval   = fmt.Errorf("%w: only ad-hoc exercises can be removed", ErrValidation)
	ErrPlannedSetRemoval        = fmt.Errorf("%w: planned sets can only be removed when explicitly allowed", ErrValidation)
	ErrInvalidExerciseOrder     = fmt.Errorf("%w: exercise order must list every session exercise exactly once", ErrValidation)
	ErrInvalidDateRange         = fmt.Errorf("%w: 'from' must not be after 'to'", ErrValidation)
	ErrInvalidStatusFilter      = fmt.Errorf("%w: status must be one of active, completed, all", ErrValidation)
	ErrInvalidMediaContentType  = fmt.Errorf("%w: content type must be a video/* type", ErrValidation)
	ErrInvalidMediaObjectKey    = fmt.Errorf("%w: object key does not belong to this session exercise", ErrValidation)
)

// --- Conflict ---
var (
	ErrSessionCompleted = fmt.Errorf("%w: session already completed", ErrConflict)
	ErrSessionModified  = fmt.Errorf("%w: session was modified concurrently, reload and retry", ErrConflict)
)
