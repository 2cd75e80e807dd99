// Package pkgerr defines the error taxonomy used across cimipkg.
package pkgerr

import (
	"errors"
	"fmt"
)

// Kind tags an error with the category the orchestrator and CLI use to
// decide exit codes and diagnostic wording.
type Kind int

const (
	// BadInput covers a missing archive path or an unsupported extension.
	BadInput Kind = iota
	// ArchiveNotFound means the given path does not exist.
	ArchiveNotFound
	// CorruptArchive means structural validation failed before extraction.
	CorruptArchive
	// MalformedEntry means an archive entry would escape the scratch root.
	MalformedEntry
	// BadMetadata means YAML or XML decoding failed, or a required field was missing.
	BadMetadata
	// NeedsElevation means the planned work requires administrator rights that are not held.
	NeedsElevation
	// ScriptFailed means a pre- or post-install script exited nonzero.
	ScriptFailed
	// CleanupFailed means the scratch directory could not be removed; never fatal.
	CleanupFailed
)

func (k Kind) String() string {
	switch k {
	case BadInput:
		return "BadInput"
	case ArchiveNotFound:
		return "ArchiveNotFound"
	case CorruptArchive:
		return "CorruptArchive"
	case MalformedEntry:
		return "MalformedEntry"
	case BadMetadata:
		return "BadMetadata"
	case NeedsElevation:
		return "NeedsElevation"
	case ScriptFailed:
		return "ScriptFailed"
	case CleanupFailed:
		return "CleanupFailed"
	default:
		return "Unknown"
	}
}

// Error is a taxonomy-tagged error. It wraps an underlying cause so
// errors.Is/errors.As still see through it.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// ExitCode overrides the default exit code mapping (used for
	// ScriptFailed errors that must propagate the child's own exit code).
	ExitCode int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a tagged error with no underlying cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a tagged error around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// As reports whether err is (or wraps) a *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ExitCode maps an error to a process exit code per the propagation policy:
// script failures propagate the child's exit code when known, classification,
// metadata, and elevation errors use 1, and anything uncategorized also uses 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := As(err); ok {
		if e.Kind == ScriptFailed && e.ExitCode != 0 {
			return e.ExitCode
		}
		return 1
	}
	return 1
}
