package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation     = errors.New("invalid")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyInState = errors.New("already in state")
)

// ValidationError reports a malformed or out-of-range field.
// It satisfies errors.Is(err, ErrValidation).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil || strings.TrimSpace(e.Field) == "" {
		return "invalid"
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a referenced id or name that is absent.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Kind == "" {
		return "not found"
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyInStateError is informational: the requested state already holds
// and nothing was changed.
type AlreadyInStateError struct {
	ID    int
	State string
}

func (e *AlreadyInStateError) Error() string {
	return fmt.Sprintf("task %d is already %s", e.ID, e.State)
}

func (e *AlreadyInStateError) Is(target error) bool {
	return target == ErrAlreadyInState
}

func taskNotFound(id int) error {
	return &NotFoundError{Kind: "task", Key: fmt.Sprintf("#%d", id)}
}

func noteNotFound(taskID, noteID int) error {
	return &NotFoundError{Kind: "note", Key: fmt.Sprintf("#%d on task #%d", noteID, taskID)}
}
