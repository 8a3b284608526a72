package dataset

import (
	"errors"
	"fmt"
)

// ErrorKind classifies load failures.
type ErrorKind int

const (
	// ParseError covers any malformed input that is neither empty nor missing.
	ParseError ErrorKind = iota
	// EmptyFile means the input has no data rows.
	EmptyFile
	// NotFound means the path does not exist.
	NotFound
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyFile:
		return "empty_file"
	case NotFound:
		return "not_found"
	default:
		return "parse_error"
	}
}

// Sentinels matched by LoadError through errors.Is.
var (
	ErrEmptyFile = errors.New("the CSV file is empty")
	ErrNotFound  = errors.New("the CSV file was not found")
	ErrParse     = errors.New("the CSV file could not be parsed")
)

// LoadError reports why a table could not be loaded.
type LoadError struct {
	Kind   ErrorKind
	Source Source
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	switch e.Kind {
	case EmptyFile:
		return fmt.Sprintf("%s: %s", ErrEmptyFile.Error(), e.Source)
	case NotFound:
		return fmt.Sprintf("the CSV file '%s' was not found", e.Source.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("an unexpected error occurred reading %s: %v", e.Source, e.Err)
		}
		return fmt.Sprintf("%s: %s", ErrParse.Error(), e.Source)
	}
}

// Unwrap exposes the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrEmptyFile:
		return e.Kind == EmptyFile
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrParse:
		return e.Kind == ParseError
	}
	return false
}

// KindOf returns the kind of a load error, and false if err is not one.
func KindOf(err error) (ErrorKind, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return ParseError, false
}

// UserMessage renders a load failure the way it is shown to people.
func UserMessage(err error) string {
	var le *LoadError
	if !errors.As(err, &le) {
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
	switch le.Kind {
	case EmptyFile:
		return "Error: The CSV file is empty."
	case NotFound:
		return fmt.Sprintf("Error: The CSV file '%s' was not found.", le.Source.Path)
	default:
		cause := le.Err
		if cause == nil {
			cause = ErrParse
		}
		return fmt.Sprintf("An unexpected error occurred: %v", cause)
	}
}
