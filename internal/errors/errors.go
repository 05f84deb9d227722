// internal/errors/errors.go

// Package errors provides the categorized error type used across a build pass,
// so callers can tell a broken config apart from a broken post or template.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Category classifies where an error came from.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryParse    Category = "parse"
	CategoryTemplate Category = "template"
	CategoryIO       Category = "io"
	CategoryWatch    Category = "watch"
)

// Error is a categorized error with enough location context (file path and
// line) for a user to find the cause.
type Error struct {
	Category Category
	Message  string
	Path     string
	Line     int
	Cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Category))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// At sets the file path the error refers to, keeping an existing one.
func (e *Error) At(path string) *Error {
	if e.Path == "" {
		e.Path = path
	}
	return e
}

// New creates an Error without an underlying cause.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Wrap creates an Error around an existing error.
func Wrap(err error, category Category, message string) *Error {
	return &Error{Category: category, Message: message, Cause: err}
}

// IsCategory reports whether any error in err's chain is an *Error of the given category.
func IsCategory(err error, category Category) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category == category
	}
	return false
}

// GetCategory returns the category of the first *Error in err's chain, or "" when there is none.
func GetCategory(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}
