package models

import "time"

// Timeline entry types. The catalog is fixed; the recorder rejects anything
// outside it.
const (
	TimelineApplicationCreated = "APPLICATION_CREATED"
	TimelineStepUpdated        = "STEP_UPDATED"
	TimelineStageChanged       = "STAGE_CHANGED"
	TimelineDocumentUploaded   = "DOCUMENT_UPLOADED"
	TimelineDocumentVerified   = "DOCUMENT_VERIFIED"
	TimelineCommentAdded       = "COMMENT_ADDED"
	TimelineOfferGenerated     = "OFFER_GENERATED"
	TimelineOfferSigned        = "OFFER_SIGNED"
)

// TimelineEntry is an append-only audit record of one action taken on an
// application. Entries are never edited or removed.
type TimelineEntry struct {
	EntryID          int       `gorm:"primaryKey;column:entry_id" json:"entry_id"`
	ApplicationID    int       `gorm:"column:application_id;index:idx_timeline_app" json:"application_id"`
	ActorID          int       `gorm:"column:actor_id" json:"actor_id"`
	EntryType        string    `gorm:"column:entry_type" json:"entry_type"`
	Message          string    `gorm:"column:message" json:"message"`
	LinkedDocumentID *int      `gorm:"column:linked_document_id" json:"linked_document_id,omitempty"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`

	// Relations
	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName specifies the table for TimelineEntry.
func (TimelineEntry) TableName() string {
	return "timeline_entries"
}
