// Package workerrors defines the error-kind taxonomy the core worker uses
// to decide propagation policy (spec.md §7): logged-and-continue versus
// fatal-at-startup versus warn-and-commit-empty. It is modeled on
// pkg/apperrors' AppError shape but re-keyed from HTTP status codes to the
// spec's Kind enum, and carries an optional job fingerprint for log
// correlation.
package workerrors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds named in spec.md §7.
type Kind string

const (
	ConfigLoad       Kind = "ConfigLoad"
	CandleRead       Kind = "CandleRead"
	InsufficientData Kind = "InsufficientData"
	InvalidParameter Kind = "InvalidParameter"
	KernelInternal   Kind = "KernelInternal"
	UpsertConflict   Kind = "UpsertConflict"
	UpsertIO         Kind = "UpsertIO"
	LeaseIO          Kind = "LeaseIO"
	CacheIO          Kind = "CacheIO"
	InitFatal        Kind = "InitFatal"
)

// WorkerError carries a Kind, an optional fingerprint for log correlation,
// and the wrapped cause.
type WorkerError struct {
	Kind        Kind
	Fingerprint string
	Message     string
	Err         error
}

func (e *WorkerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// Cause satisfies github.com/pkg/errors' Causer interface.
func (e *WorkerError) Cause() error { return e.Err }

// New builds a WorkerError of the given kind, wrapping err with a stack
// trace via github.com/pkg/errors when err is non-nil.
func New(kind Kind, fingerprint string, err error) *WorkerError {
	var wrapped error
	if err != nil {
		wrapped = errors.WithStack(err)
	}
	return &WorkerError{Kind: kind, Fingerprint: fingerprint, Err: wrapped}
}

// WithMessage attaches a human-readable message and returns the receiver
// for chaining.
func (e *WorkerError) WithMessage(msg string) *WorkerError {
	e.Message = msg
	return e
}

// Is reports whether err (or any error it wraps) is a WorkerError of kind k.
func Is(err error, k Kind) bool {
	var we *WorkerError
	if stderrors.As(err, &we) {
		return we.Kind == k
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to KernelInternal when err
// is not a WorkerError — an unexpected error from a kernel is treated as an
// internal kernel defect rather than silently swallowed.
func KindOf(err error) Kind {
	var we *WorkerError
	if stderrors.As(err, &we) {
		return we.Kind
	}
	return KernelInternal
}

// Fatal reports whether this error's kind halts the process before the
// worker loop starts (spec.md §7).
func (e *WorkerError) Fatal() bool {
	return e.Kind == InitFatal
}

// Retryable reports whether the worker continues and retries on the next
// sweep after this error (every kind except InitFatal).
func (e *WorkerError) Retryable() bool {
	return e.Kind != InitFatal
}

// CommitsEmpty reports whether this error's kind should be treated as a
// committed Job with zero points rather than a failed one (InsufficientData,
// InvalidParameter — spec.md §7).
func (e *WorkerError) CommitsEmpty() bool {
	return e.Kind == InsufficientData || e.Kind == InvalidParameter
}
