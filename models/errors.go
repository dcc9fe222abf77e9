package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrEmailInUse           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	// ErrPersistence marks store failures, including a failed compensating
	// rollback of a tentative membership mutation. Never a business outcome.
	ErrPersistence = errors.New("persistence failure")
)

// CompositionError reports a member set that would violate the area-coverage
// rule, naming the required areas that are missing.
type CompositionError struct {
	Missing []AreaName
}

func (e *CompositionError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, a := range e.Missing {
		names = append(names, string(a))
	}
	return fmt.Sprintf("project must include at least one of each: GESTAO, BACKEND, FRONTEND (missing: %s)", strings.Join(names, ", "))
}

// TransitionError reports a lifecycle operation not permitted from the
// project's current status.
type TransitionError struct {
	Status    ProjectStatus
	Operation string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a project in status %s", e.Operation, e.Status)
}
