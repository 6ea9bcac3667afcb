package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrTemporary          = errors.New("temporary failure")
	ErrSizeLimitExceeded  = errors.New("size limit exceeded")
	ErrUnreadableDocument = errors.New("unreadable document")
	ErrEmptyExtraction    = errors.New("empty extraction")
	ErrCanceled           = errors.New("batch canceled")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// FailureKind names the error kind of a per-document failure for reports.
func FailureKind(err error) string {
	switch {
	case IsKind(err, ErrEmptyExtraction):
		return "EmptyExtraction"
	case IsKind(err, ErrCanceled):
		return "Canceled"
	default:
		return "UnreadableDocument"
	}
}
