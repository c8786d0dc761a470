package services

import (
	"fmt"
	"strings"

	"student-application-api/models"
)

// All core errors are deterministic and recoverable: the caller corrects its
// input or permissions and retries. None of them rolls the process over.

// PermissionError means the actor's role or ownership does not allow the
// attempted action. Maps to 403.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return e.Reason
}

// TransitionError means the requested stage is not reachable from the current
// one. Maps to 409.
type TransitionError struct {
	From models.Stage
	To   models.Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move application from %s to %s", e.From, e.To)
}

// LockedError means the application left DRAFT and its form sections can no
// longer be edited. Maps to 409.
type LockedError struct {
	Stage models.Stage
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("application is locked in stage %s; sections can only be edited while in DRAFT", e.Stage)
}

// Precondition gate codes.
const (
	GateIncompleteForm      = "INCOMPLETE_FORM"
	GateDocumentsUnverified = "DOCUMENTS_UNVERIFIED"
)

// PreconditionError means a gate blocked the transition. Missing names the
// sections or document types still outstanding. Maps to 409.
type PreconditionError struct {
	Code    string
	Missing []string
}

func (e *PreconditionError) Error() string {
	switch e.Code {
	case GateIncompleteForm:
		return fmt.Sprintf("application form incomplete; missing sections: %s", strings.Join(e.Missing, ", "))
	case GateDocumentsUnverified:
		return fmt.Sprintf("mandatory documents not verified: %s", strings.Join(e.Missing, ", "))
	}
	return "precondition failed"
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail for a malformed payload.
// Maps to 422.
type ValidationError struct {
	Section string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid payload for section %s", e.Section)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("invalid payload for section %s (%s)", e.Section, strings.Join(parts, "; "))
}

// NotFoundError means a referenced entity is absent. Maps to 404.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// ConflictError means the entity was already decided by a concurrent writer,
// e.g. a second verify on a document that is no longer pending. Maps to 409.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
