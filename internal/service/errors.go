package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrForbidden  = errors.New("forbidden: insufficient permissions")
	ErrSuperseded = errors.New("search superseded by a newer request")

	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("an account with this login already exists for the portal")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// TransientError is any store failure other than "no rows". The message is
// meant to be shown to the user as is; nothing retries automatically.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return e.Op + ": the record store did not respond in time, please try again"
	case errors.Is(e.Err, gobreaker.ErrOpenState), errors.Is(e.Err, gobreaker.ErrTooManyRequests):
		return e.Op + ": the record store is temporarily unavailable, please try again shortly"
	default:
		return e.Op + ": " + e.Err.Error()
	}
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

type AuditEntry struct {
	AccountID    uuid.UUID
	Role         domain.Role
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Changes      string
}
