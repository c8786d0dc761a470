package models

import (
	"encoding/json"
	"time"
)

// Stage is one discrete step in an application's fixed lifecycle.
type Stage string

const (
	StageDraft             Stage = "DRAFT"
	StageSubmitted         Stage = "SUBMITTED"
	StageStaffReview       Stage = "STAFF_REVIEW"
	StageAwaitingDocuments Stage = "AWAITING_DOCUMENTS"
	StageGSAssessment      Stage = "GS_ASSESSMENT"
	StageOfferGenerated    Stage = "OFFER_GENERATED"
	StageOfferAccepted     Stage = "OFFER_ACCEPTED"
	StageEnrolled          Stage = "ENROLLED"
	StageRejected          Stage = "REJECTED"
	StageWithdrawn         Stage = "WITHDRAWN"
)

// AllStages lists every stage in workflow order.
var AllStages = []Stage{
	StageDraft,
	StageSubmitted,
	StageStaffReview,
	StageAwaitingDocuments,
	StageGSAssessment,
	StageOfferGenerated,
	StageOfferAccepted,
	StageEnrolled,
	StageRejected,
	StageWithdrawn,
}

// IsValid reports whether s is a member of the fixed stage enum.
func (s Stage) IsValid() bool {
	for _, stage := range AllStages {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Stage) IsTerminal() bool {
	return s == StageEnrolled || s == StageRejected || s == StageWithdrawn
}

// GS assessment outcomes recorded by staff.
const (
	GSOutcomePending = "pending"
	GSOutcomePass    = "pass"
	GSOutcomeFail    = "fail"
)

type Application struct {
	ApplicationID     int             `gorm:"primaryKey;column:application_id" json:"application_id"`
	ApplicationNumber string          `gorm:"column:application_number;unique" json:"application_number"`
	StudentID         int             `gorm:"column:student_id" json:"student_id"`
	AgentID           *int            `gorm:"column:agent_id" json:"agent_id,omitempty"`
	CourseOfferingID  int             `gorm:"column:course_offering_id" json:"course_offering_id"`
	CurrentStage      Stage           `gorm:"column:current_stage" json:"current_stage"`
	AssignedStaffID   *int            `gorm:"column:assigned_staff_id" json:"assigned_staff_id,omitempty"`
	GSOutcome         *string         `gorm:"column:gs_outcome" json:"gs_outcome,omitempty"`
	OfferDetails      json.RawMessage `gorm:"column:offer_details;type:json" json:"offer_details,omitempty"`
	SubmittedAt       *time.Time      `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	DecisionAt        *time.Time      `gorm:"column:decision_at" json:"decision_at,omitempty"`
	LastSavedAt       *time.Time      `gorm:"column:last_saved_at" json:"last_saved_at,omitempty"`
	CreateAt          *time.Time      `gorm:"column:create_at" json:"create_at"`
	UpdateAt          *time.Time      `gorm:"column:update_at" json:"update_at"`

	// Relations
	Student        User                 `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Agent          *User                `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	AssignedStaff  *User                `gorm:"foreignKey:AssignedStaffID" json:"assigned_staff,omitempty"`
	CourseOffering CourseOffering       `gorm:"foreignKey:CourseOfferingID" json:"course_offering,omitempty"`
	Sections       []ApplicationSection `gorm:"foreignKey:ApplicationID" json:"sections,omitempty"`
	Documents      []Document           `gorm:"foreignKey:ApplicationID" json:"documents,omitempty"`
}

// ApplicationSection holds one structured slot of form data. One row per
// section name per application; the payload is replaced in full on each save.
type ApplicationSection struct {
	SectionID     int             `gorm:"primaryKey;column:section_id" json:"section_id"`
	ApplicationID int             `gorm:"column:application_id" json:"application_id"`
	SectionName   string          `gorm:"column:section_name" json:"section_name"`
	Payload       json.RawMessage `gorm:"column:payload;type:json" json:"payload"`
	CompletedAt   *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	UpdateAt      *time.Time      `gorm:"column:update_at" json:"update_at"`
}

type CourseOffering struct {
	CourseOfferingID int        `gorm:"primaryKey;column:course_offering_id" json:"course_offering_id"`
	CourseCode       string     `gorm:"column:course_code" json:"course_code"`
	CourseName       string     `gorm:"column:course_name" json:"course_name"`
	CampusName       string     `gorm:"column:campus_name" json:"campus_name"`
	IntakeDate       *time.Time `gorm:"column:intake_date" json:"intake_date,omitempty"`
	IsActive         bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (Application) TableName() string {
	return "applications"
}

func (ApplicationSection) TableName() string {
	return "application_sections"
}

func (CourseOffering) TableName() string {
	return "course_offerings"
}
