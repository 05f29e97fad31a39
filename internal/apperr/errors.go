// Package apperr defines the error kinds shared by every layer and maps them
// to the messages shown in the status bar.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrStorage       = errors.New("storage error")

	ErrPayloadTooLarge = fmt.Errorf("%w: file too large", ErrStorage)
	ErrUnsupportedType = fmt.Errorf("%w: unsupported file type", ErrStorage)
)

// Kind groups errors by how the presentation layer reacts to them.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindValidation
	KindNotFound
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// ErrorInfo describes how an error kind is surfaced to the user.
type ErrorInfo struct {
	Kind Kind
	Hint string
}

// errorMap maps sentinel errors to their kind and user-facing hint.
var errorMap = map[error]ErrorInfo{
	ErrConfiguration: {Kind: KindConfiguration},
	ErrValidation:    {Kind: KindValidation},
	ErrNotFound:      {Kind: KindNotFound, Hint: "the list has been refreshed"},
	ErrConflict:      {Kind: KindConflict, Hint: "choose a different name"},
	ErrStorage:       {Kind: KindStorage},
}

// LookupError returns the ErrorInfo for the first sentinel err wraps.
func LookupError(err error) (ErrorInfo, bool) {
	if err == nil {
		return ErrorInfo{}, false
	}
	for sentinel, info := range errorMap {
		if errors.Is(err, sentinel) {
			return info, true
		}
	}
	return ErrorInfo{}, false
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	info, _ := LookupError(err)
	return info.Kind
}

// UserMessage renders err for the status bar.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	info, ok := LookupError(err)
	if !ok {
		return "Unexpected error: " + err.Error()
	}
	if info.Hint == "" {
		return err.Error()
	}
	return err.Error() + " (" + info.Hint + ")"
}

// Validationf wraps a formatted message as a validation error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps a formatted message as a not-found error.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
