// Package upstream normalizes failures from external collaborators (registry,
// payments store, literature index, directory pages) into one taxonomy. The
// engine converts these into stage diagnostics; it never branches on concrete
// client types, and no category triggers an automatic retry.
package upstream

import (
	"context"
	"errors"
	"fmt"
)

// Category classifies a collaborator failure.
type Category string

const (
	// CategoryTimeout indicates the collaborator took too long to respond.
	CategoryTimeout Category = "timeout"

	// CategoryUnavailable indicates the collaborator is down or unreachable.
	CategoryUnavailable Category = "unavailable"

	// CategoryBadResponse indicates the collaborator returned malformed data.
	CategoryBadResponse Category = "bad_response"

	// CategoryNotFound indicates the requested resource does not exist upstream.
	CategoryNotFound Category = "not_found"

	// CategoryInternal indicates an unexpected failure in the client itself.
	CategoryInternal Category = "internal"
)

// Source names used in errors, diagnostics, logs, and metrics labels.
const (
	SourceRegistry  = "registry"
	SourcePayments  = "payments_store"
	SourceLitIndex  = "literature_index"
	SourceDirectory = "directory"
	SourceCache     = "cache"
)

// Error wraps a collaborator failure with its source and normalized category.
type Error struct {
	Source   string
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Source, e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Source, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a categorized collaborator error.
func New(source string, category Category, message string, err error) *Error {
	return &Error{Source: source, Category: category, Message: message, Err: err}
}

// Classify wraps err with a category inferred from its kind: context deadline
// and cancellation map to timeout, everything else to unavailable.
func Classify(source, message string, err error) *Error {
	category := CategoryUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		category = CategoryTimeout
	}
	return New(source, category, message, err)
}

// CategoryOf extracts the category from an error chain, defaulting to internal.
func CategoryOf(err error) Category {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Category
	}
	return CategoryInternal
}

// SourceOf extracts the source name from an error chain, or empty when unknown.
func SourceOf(err error) string {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Source
	}
	return ""
}

// Diagnostic renders err as the short human-readable string stage results carry.
func Diagnostic(err error) string {
	var ue *Error
	if errors.As(err, &ue) {
		return fmt.Sprintf("%s %s: %s", ue.Source, ue.Category, ue.Message)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
