package types

import (
	"errors"
	"fmt"
)

// Status is the result code surfaced to callers that cannot carry a Go error
type Status uint8

const (
	None Status = iota
	ErrMissingDriver
	ErrFileNotFound
	ErrIncompatibleMesh
	ErrIncompatibleDatasetGroup
	ErrIncompatibleDataset
	ErrInvalidData
	ErrMissingDriverCapability
)

func (s Status) String() string {
	return [...]string{
		"None",
		"MissingDriver",
		"FileNotFound",
		"IncompatibleMesh",
		"IncompatibleDatasetGroup",
		"IncompatibleDataset",
		"InvalidData",
		"MissingDriverCapability",
	}[s]
}

// Error lets a bare Status be returned and matched with errors.Is
func (s Status) Error() string {
	return s.String()
}

// Error carries a Status along with a message and an optional cause
type Error struct {
	Status Status
	Msg    string
	Err    error
}

func Errorf(status Status, format string, args ...any) error {
	return &Error{Status: status, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a status to err, nil stays nil
func Wrap(status Status, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Status: status, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Status, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Status, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Status, e.Err)
	}
	return e.Status.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if s, ok := target.(Status); ok {
		return s == e.Status
	}
	return false
}

// StatusOf recovers the outermost status of err. Errors without one map to InvalidData.
func StatusOf(err error) Status {
	if err == nil {
		return None
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return ErrInvalidData
}
