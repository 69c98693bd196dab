package ecs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies why an operation degraded. Every public operation
// that can fail reports failure via a bool/none return; ErrorKind exists
// only so the internal diagnostics path (see log.go) can say *which* kind
// of failure applied.
type ErrorKind int

const (
	// BadArgument: null/empty/zero where forbidden.
	BadArgument ErrorKind = iota
	// DuplicateRegistration: re-registering an existing type or system name.
	DuplicateRegistration
	// UnknownType: lookup of an unregistered component type.
	UnknownType
	// UnknownSystem: lookup of an unregistered system.
	UnknownSystem
	// UnknownEntity: lookup of a nonexistent entity.
	UnknownEntity
	// OutOfMemory: an allocation failure.
	OutOfMemory
	// InvariantViolation: a defensive assertion failed; degrade and log.
	InvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case BadArgument:
		return "bad_argument"
	case DuplicateRegistration:
		return "duplicate_registration"
	case UnknownType:
		return "unknown_type"
	case UnknownSystem:
		return "unknown_system"
	case UnknownEntity:
		return "unknown_entity"
	case OutOfMemory:
		return "out_of_memory"
	case InvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// dispatchError carries an ErrorKind plus a wrapped cause. It never
// crosses a public function boundary as a return value — public
// operations return bool/none — it only exists to give logDegrade
// something structured to print.
type dispatchError struct {
	kind  ErrorKind
	cause error
}

func (e *dispatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.cause)
}

func (e *dispatchError) Unwrap() error {
	return e.cause
}

func newDispatchError(kind ErrorKind, format string, args ...any) *dispatchError {
	return &dispatchError{kind: kind, cause: errors.Errorf(format, args...)}
}

// logDegrade logs a failed-but-handled operation at a level appropriate
// to its kind, then discards the error. Callers still return their own
// bool/none to the caller; this only produces the "why" in the log.
func logDegrade(err *dispatchError) {
	log := withComponent("dispatch")
	ev := log.Warn()
	if err.kind == OutOfMemory {
		ev = log.Error()
	}
	ev.Str("kind", err.kind.String()).Msg(err.cause.Error())
}
