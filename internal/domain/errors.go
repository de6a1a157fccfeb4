package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestionSet is returned when a session is created without questions,
	// typically because the filter criteria matched nothing.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrInvalidTransition is returned when an operation is not allowed in the current status.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrInvalidAnswerIndex indicates a selected option index outside the question's options.
	ErrInvalidAnswerIndex = errors.New("answer index out of range")
	// ErrOutOfRange indicates a question index outside the session's question set.
	ErrOutOfRange = errors.New("question index out of range")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidQuestion marks question data that violates the question invariants.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidCriteria marks filter criteria with an unknown difficulty.
	ErrInvalidCriteria = errors.New("invalid filter criteria")
)

// TransitionError reports an operation attempted in a status that forbids it.
type TransitionError struct {
	Op     string
	Status Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: session is %s", e.Op, e.Status)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// IndexError reports an index outside its valid domain [0, Len).
// Err is ErrInvalidAnswerIndex or ErrOutOfRange.
type IndexError struct {
	Err   error
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: %d not in [0,%d)", e.Err, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return e.Err }
