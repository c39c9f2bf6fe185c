package component

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is matched by every UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("invalid component definition")
)

// UnsupportedFormatError is returned when a definition file does not carry a
// .yml or .yaml extension.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s %q for %s: use .yaml or .yml", ErrUnsupportedFormat, e.Extension, e.Path)
}

// Is reports ErrUnsupportedFormat as a match.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ValidationError describes a definition that parsed but does not describe a
// component. Field is empty when the document as a whole is wrong.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: field %q %s", ErrValidation, e.Field, e.Message)
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
