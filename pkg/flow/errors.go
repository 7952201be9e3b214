package flow

import "errors"

var (
	// ErrTerminal is returned when a question operation is attempted after the
	// question flow ended.
	ErrTerminal = errors.New("flow: question flow already ended")
	// ErrUnknownOption is returned when a picked value matches no option of
	// the current question.
	ErrUnknownOption = errors.New("flow: option not found on current question")
	// ErrHasOptions is returned when a question with options is skipped
	// instead of answered.
	ErrHasOptions = errors.New("flow: question has options")
	// ErrNotOrdinaryField is returned when a value targets a field that is not
	// part of the ordinary field stage.
	ErrNotOrdinaryField = errors.New("flow: field is not an ordinary field of this form")
	// ErrWrongPhase is returned when an operation does not apply to the
	// session's current stage.
	ErrWrongPhase = errors.New("flow: operation not valid in current phase")
	// ErrStaleSnapshot is returned when a snapshot references fields the form
	// no longer has.
	ErrStaleSnapshot = errors.New("flow: snapshot does not match form")
	// ErrSnapshotNotFound is returned by stores when no snapshot exists.
	ErrSnapshotNotFound = errors.New("flow: snapshot not found")
)
