package services

import (
	"time"

	"gorm.io/gorm"

	"student-application-api/models"
)

var timelineEntryTypes = map[string]bool{
	models.TimelineApplicationCreated: true,
	models.TimelineStepUpdated:        true,
	models.TimelineStageChanged:       true,
	models.TimelineDocumentUploaded:   true,
	models.TimelineDocumentVerified:   true,
	models.TimelineCommentAdded:       true,
	models.TimelineOfferGenerated:     true,
	models.TimelineOfferSigned:        true,
}

// IsValidTimelineEntryType reports whether entryType is in the fixed catalog.
func IsValidTimelineEntryType(entryType string) bool {
	return timelineEntryTypes[entryType]
}

// Append writes one immutable audit entry for an application. It is called
// inside the transaction of the mutation it records so a rolled-back mutation
// leaves no entry behind.
func Append(db *gorm.DB, applicationID, actorID int, entryType, message string, linkedDocumentID *int) error {
	if !IsValidTimelineEntryType(entryType) {
		return &ValidationError{Section: "timeline", Fields: []FieldError{
			{Field: "entry_type", Message: "unknown entry type " + entryType},
		}}
	}
	if message == "" {
		return &ValidationError{Section: "timeline", Fields: []FieldError{
			{Field: "message", Message: "required"},
		}}
	}

	entry := models.TimelineEntry{
		ApplicationID:    applicationID,
		ActorID:          actorID,
		EntryType:        entryType,
		Message:          message,
		LinkedDocumentID: linkedDocumentID,
		CreatedAt:        time.Now(),
	}
	return db.Create(&entry).Error
}

// Timeline returns an application's entries in insertion order.
func Timeline(db *gorm.DB, applicationID int) ([]models.TimelineEntry, error) {
	var entries []models.TimelineEntry
	err := db.Preload("Actor").
		Where("application_id = ?", applicationID).
		Order("entry_id ASC").
		Find(&entries).Error
	return entries, err
}
