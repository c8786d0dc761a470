package services

import (
	"strings"
	"testing"

	"student-application-api/models"
)

func TestPreconditionErrorNamesMissingItems(t *testing.T) {
	err := &PreconditionError{Code: GateIncompleteForm, Missing: []string{"usi", "survey"}}
	msg := err.Error()
	if !strings.Contains(msg, "usi") || !strings.Contains(msg, "survey") {
		t.Fatalf("incomplete-form error should name missing sections, got %q", msg)
	}

	err = &PreconditionError{Code: GateDocumentsUnverified, Missing: []string{"passport"}}
	if !strings.Contains(err.Error(), "passport") {
		t.Fatalf("documents-unverified error should name missing types, got %q", err.Error())
	}
}

func TestTransitionErrorMentionsBothStages(t *testing.T) {
	err := &TransitionError{From: models.StageDraft, To: models.StageEnrolled}
	msg := err.Error()
	if !strings.Contains(msg, string(models.StageDraft)) || !strings.Contains(msg, string(models.StageEnrolled)) {
		t.Fatalf("transition error should mention both stages, got %q", msg)
	}
}

func TestValidationErrorCarriesFieldDetail(t *testing.T) {
	err := &ValidationError{Section: "usi", Fields: []FieldError{
		{Field: "usi", Message: "must be exactly 10 alphanumeric characters"},
	}}
	if !strings.Contains(err.Error(), "usi: must be exactly 10 alphanumeric characters") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
