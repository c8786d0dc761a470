package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-application-api/models"
)

// stageTransitions is the legal transition table. A transition absent from
// this table is invalid no matter who asks.
var stageTransitions = map[models.Stage][]models.Stage{
	models.StageDraft:     {models.StageSubmitted},
	models.StageSubmitted: {models.StageStaffReview, models.StageAwaitingDocuments, models.StageRejected},
	models.StageStaffReview: {
		models.StageAwaitingDocuments,
		models.StageGSAssessment,
		models.StageOfferGenerated,
		models.StageRejected,
	},
	models.StageAwaitingDocuments: {models.StageStaffReview, models.StageRejected},
	models.StageGSAssessment:      {models.StageStaffReview, models.StageRejected},
	models.StageOfferGenerated:    {models.StageOfferAccepted, models.StageWithdrawn},
	models.StageOfferAccepted:     {models.StageEnrolled},
}

// CanTransition reports whether the table contains the edge from → to.
func CanTransition(from, to models.Stage) bool {
	for _, allowed := range stageTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal destinations from a stage. Terminal
// stages return an empty slice.
func AllowedTransitions(from models.Stage) []models.Stage {
	return append([]models.Stage(nil), stageTransitions[from]...)
}

// actionForTarget maps a destination stage to the permission-guard action the
// actor must hold.
func actionForTarget(to models.Stage) Action {
	switch to {
	case models.StageSubmitted:
		return ActionSubmit
	case models.StageStaffReview:
		return ActionReview
	case models.StageAwaitingDocuments:
		return ActionRequestDocuments
	case models.StageGSAssessment:
		return ActionRecordGSAssessment
	case models.StageOfferGenerated:
		return ActionApprove
	case models.StageOfferAccepted:
		return ActionSignOffer
	case models.StageEnrolled:
		return ActionEnroll
	case models.StageRejected:
		return ActionReject
	case models.StageWithdrawn:
		return ActionWithdraw
	}
	return Action("")
}

// entryTypeForTarget picks the timeline entry type for a transition.
func entryTypeForTarget(to models.Stage) string {
	switch to {
	case models.StageOfferGenerated:
		return models.TimelineOfferGenerated
	case models.StageOfferAccepted:
		return models.TimelineOfferSigned
	default:
		return models.TimelineStageChanged
	}
}

// TransitionInput carries the requested transition and its side payload.
type TransitionInput struct {
	ToStage      models.Stage
	Notes        string
	OfferDetails json.RawMessage // stored when entering OFFER_GENERATED
}

// RequestTransition moves an application to a new stage. The whole check-and-
// mutate runs in one transaction locked on the application row, so concurrent
// requests serialize and the second is validated against the committed stage
// (first-committed-wins). Exactly one notification is dispatched per
// successful transition, never on a failed attempt.
func RequestTransition(db *gorm.DB, applicationID int, in TransitionInput, actor *models.User) (*models.Application, error) {
	var app models.Application
	var fromStage models.Stage

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ?", applicationID).
			First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "application"}
			}
			return err
		}
		fromStage = app.CurrentStage
		return transitionLocked(tx, &app, in, actor)
	})
	if err != nil {
		return nil, err
	}

	dispatchStageChange(db, &app, actor, fromStage, in.Notes)
	return &app, nil
}

// transitionLocked performs table, guard and gate checks, then mutates the
// locked application row and appends the audit entry. Callers own the
// transaction and the row lock. The table check runs first: an unreachable
// stage is an invalid transition for everyone, not a permission problem.
func transitionLocked(tx *gorm.DB, app *models.Application, in TransitionInput, actor *models.User) error {
	if !in.ToStage.IsValid() || !CanTransition(app.CurrentStage, in.ToStage) {
		return &TransitionError{From: app.CurrentStage, To: in.ToStage}
	}

	if allowed, reason := CanPerform(actor.RoleID, actor.UserID, app, actionForTarget(in.ToStage)); !allowed {
		return &PermissionError{Reason: reason}
	}

	// Precondition gates.
	if app.CurrentStage == models.StageDraft && in.ToStage == models.StageSubmitted {
		var sections []models.ApplicationSection
		if err := tx.Where("application_id = ?", app.ApplicationID).Find(&sections).Error; err != nil {
			return err
		}
		if missing := MissingSections(CompletedSet(sections)); len(missing) > 0 {
			return &PreconditionError{Code: GateIncompleteForm, Missing: missing}
		}
	}
	if in.ToStage == models.StageOfferGenerated {
		verified, missing, err := AllMandatoryVerified(tx, app.ApplicationID)
		if err != nil {
			return err
		}
		if !verified {
			return &PreconditionError{Code: GateDocumentsUnverified, Missing: missing}
		}
	}

	now := time.Now()
	fromStage := app.CurrentStage
	app.CurrentStage = in.ToStage
	app.UpdateAt = &now

	switch in.ToStage {
	case models.StageSubmitted:
		app.SubmittedAt = &now
	case models.StageOfferGenerated, models.StageRejected, models.StageWithdrawn:
		app.DecisionAt = &now
	}
	if in.ToStage == models.StageOfferGenerated && len(in.OfferDetails) > 0 {
		app.OfferDetails = in.OfferDetails
	}

	if err := tx.Save(app).Error; err != nil {
		return err
	}

	message := fmt.Sprintf("%s moved application from %s to %s", actor.FullName(), fromStage, in.ToStage)
	if in.Notes != "" {
		message += ": " + in.Notes
	}
	return Append(tx, app.ApplicationID, actor.UserID, entryTypeForTarget(in.ToStage), message, nil)
}

// RecordGSAssessment stores a genuine-student interview outcome. A fail moves
// the application straight to REJECTED; a pass returns it to STAFF_REVIEW;
// pending records the outcome without a stage change.
func RecordGSAssessment(db *gorm.DB, applicationID int, outcome, notes string, actor *models.User) (*models.Application, error) {
	switch outcome {
	case models.GSOutcomePass, models.GSOutcomeFail, models.GSOutcomePending:
	default:
		return nil, &ValidationError{Section: "gs-assessment", Fields: []FieldError{
			{Field: "outcome", Message: "must be pass, fail or pending"},
		}}
	}

	var app models.Application
	var fromStage models.Stage
	moved := false
	gsNotes := gsAssessmentNotes(outcome, notes)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ?", applicationID).
			First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "application"}
			}
			return err
		}
		fromStage = app.CurrentStage

		if allowed, reason := CanPerform(actor.RoleID, actor.UserID, &app, ActionRecordGSAssessment); !allowed {
			return &PermissionError{Reason: reason}
		}
		if app.CurrentStage != models.StageGSAssessment {
			return &TransitionError{From: app.CurrentStage, To: models.StageGSAssessment}
		}

		now := time.Now()
		app.GSOutcome = &outcome
		app.UpdateAt = &now
		if err := tx.Save(&app).Error; err != nil {
			return err
		}

		var toStage models.Stage
		switch outcome {
		case models.GSOutcomePass:
			toStage = models.StageStaffReview
		case models.GSOutcomeFail:
			toStage = models.StageRejected
		default:
			return Append(tx, app.ApplicationID, actor.UserID, models.TimelineCommentAdded,
				actor.FullName()+" recorded "+gsNotes, nil)
		}

		moved = true
		return transitionLocked(tx, &app, TransitionInput{ToStage: toStage, Notes: gsNotes}, actor)
	})
	if err != nil {
		return nil, err
	}

	if moved {
		dispatchStageChange(db, &app, actor, fromStage, gsNotes)
	}
	return &app, nil
}

// gsAssessmentNotes is the one message used for the timeline entry and the
// notification fan-out, so the audit trail and the email tell the same story.
func gsAssessmentNotes(outcome, notes string) string {
	message := "GS assessment " + outcome
	if notes != "" {
		message += ": " + notes
	}
	return message
}
