package services

import (
	"errors"
	"testing"

	"student-application-api/models"
)

func TestTransitionTableMatchesWorkflow(t *testing.T) {
	cases := []struct {
		from    models.Stage
		to      models.Stage
		allowed bool
	}{
		{models.StageDraft, models.StageSubmitted, true},
		{models.StageSubmitted, models.StageStaffReview, true},
		{models.StageSubmitted, models.StageAwaitingDocuments, true},
		{models.StageSubmitted, models.StageRejected, true},
		{models.StageStaffReview, models.StageAwaitingDocuments, true},
		{models.StageStaffReview, models.StageGSAssessment, true},
		{models.StageStaffReview, models.StageOfferGenerated, true},
		{models.StageStaffReview, models.StageRejected, true},
		{models.StageAwaitingDocuments, models.StageStaffReview, true},
		{models.StageAwaitingDocuments, models.StageRejected, true},
		{models.StageGSAssessment, models.StageStaffReview, true},
		{models.StageGSAssessment, models.StageRejected, true},
		{models.StageOfferGenerated, models.StageOfferAccepted, true},
		{models.StageOfferGenerated, models.StageWithdrawn, true},
		{models.StageOfferAccepted, models.StageEnrolled, true},

		// No orphan jumps.
		{models.StageDraft, models.StageEnrolled, false},
		{models.StageDraft, models.StageOfferGenerated, false},
		{models.StageDraft, models.StageRejected, false},
		{models.StageSubmitted, models.StageOfferGenerated, false},
		{models.StageSubmitted, models.StageDraft, false},
		{models.StageAwaitingDocuments, models.StageOfferGenerated, false},
		{models.StageOfferGenerated, models.StageEnrolled, false},
		{models.StageOfferAccepted, models.StageWithdrawn, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTerminalStagesHaveNoExits(t *testing.T) {
	for _, stage := range []models.Stage{models.StageEnrolled, models.StageRejected, models.StageWithdrawn} {
		if !stage.IsTerminal() {
			t.Errorf("expected %s to be terminal", stage)
		}
		if exits := AllowedTransitions(stage); len(exits) != 0 {
			t.Errorf("terminal stage %s has exits %v", stage, exits)
		}
	}
}

func TestEveryTransitionTargetIsValidStage(t *testing.T) {
	for from, targets := range stageTransitions {
		if !from.IsValid() {
			t.Errorf("transition table source %s not in stage enum", from)
		}
		for _, to := range targets {
			if !to.IsValid() {
				t.Errorf("transition table target %s (from %s) not in stage enum", to, from)
			}
		}
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	exits := AllowedTransitions(models.StageSubmitted)
	if len(exits) == 0 {
		t.Fatal("expected exits from SUBMITTED")
	}
	exits[0] = models.StageEnrolled
	if CanTransition(models.StageSubmitted, models.StageEnrolled) {
		t.Fatal("mutating the returned slice changed the transition table")
	}
}

func TestActionForTargetCoversEveryStage(t *testing.T) {
	want := map[models.Stage]Action{
		models.StageSubmitted:         ActionSubmit,
		models.StageStaffReview:       ActionReview,
		models.StageAwaitingDocuments: ActionRequestDocuments,
		models.StageGSAssessment:      ActionRecordGSAssessment,
		models.StageOfferGenerated:    ActionApprove,
		models.StageOfferAccepted:     ActionSignOffer,
		models.StageEnrolled:          ActionEnroll,
		models.StageRejected:          ActionReject,
		models.StageWithdrawn:         ActionWithdraw,
	}
	for stage, action := range want {
		if got := actionForTarget(stage); got != action {
			t.Errorf("actionForTarget(%s) = %s, want %s", stage, got, action)
		}
	}
}

// An illegal move must surface as a transition error even when the actor's
// role would not be allowed to perform the corresponding action either. The
// table check runs before the permission check, so no storage is touched.
func TestIllegalMoveReportsTransitionNotPermission(t *testing.T) {
	staff := &models.User{UserID: 7, RoleID: models.RoleStaff}
	app := &models.Application{ApplicationID: 1, CurrentStage: models.StageSubmitted}

	err := transitionLocked(nil, app, TransitionInput{ToStage: models.StageDraft}, staff)
	if err == nil {
		t.Fatal("expected error moving SUBMITTED back to DRAFT")
	}

	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected *TransitionError, got %T: %v", err, err)
	}
	var permErr *PermissionError
	if errors.As(err, &permErr) {
		t.Fatalf("illegal move misreported as a permission failure: %v", err)
	}
	if transitionErr.From != models.StageSubmitted || transitionErr.To != models.StageDraft {
		t.Errorf("error names stages %s -> %s, want SUBMITTED -> DRAFT", transitionErr.From, transitionErr.To)
	}
}

func TestUnknownTargetStageReportsTransitionError(t *testing.T) {
	staff := &models.User{UserID: 7, RoleID: models.RoleStaff}
	app := &models.Application{ApplicationID: 1, CurrentStage: models.StageSubmitted}

	err := transitionLocked(nil, app, TransitionInput{ToStage: models.Stage("BOGUS")}, staff)
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected *TransitionError for unknown stage, got %T: %v", err, err)
	}
}

func TestGSAssessmentNotesCarryOutcome(t *testing.T) {
	if got := gsAssessmentNotes(models.GSOutcomePass, ""); got != "GS assessment pass" {
		t.Errorf("gsAssessmentNotes(pass, \"\") = %q", got)
	}
	if got := gsAssessmentNotes(models.GSOutcomeFail, "inconsistent study history"); got != "GS assessment fail: inconsistent study history" {
		t.Errorf("gsAssessmentNotes with notes = %q", got)
	}
}

func TestEntryTypeForTarget(t *testing.T) {
	if got := entryTypeForTarget(models.StageOfferGenerated); got != models.TimelineOfferGenerated {
		t.Errorf("offer generation should log %s, got %s", models.TimelineOfferGenerated, got)
	}
	if got := entryTypeForTarget(models.StageOfferAccepted); got != models.TimelineOfferSigned {
		t.Errorf("offer signing should log %s, got %s", models.TimelineOfferSigned, got)
	}
	if got := entryTypeForTarget(models.StageSubmitted); got != models.TimelineStageChanged {
		t.Errorf("submission should log %s, got %s", models.TimelineStageChanged, got)
	}
}
