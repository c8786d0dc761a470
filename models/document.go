package models

import (
	"encoding/json"
	"time"
)

// Document verification statuses.
const (
	DocStatusPending  = "pending"
	DocStatusVerified = "verified"
	DocStatusRejected = "rejected"
)

// OCR processing statuses. A failed OCR run degrades the document, it never
// fails the upload that triggered it.
const (
	OCRStatusNone      = "none"
	OCRStatusQueued    = "queued"
	OCRStatusCompleted = "completed"
	OCRStatusFailed    = "failed"
)

// Document is one uploaded file version tied to an application and a document
// type. Re-uploads create a new version; prior versions are kept for audit and
// only the highest version per type is active.
type Document struct {
	DocumentID       int             `gorm:"primaryKey;column:document_id" json:"document_id"`
	ApplicationID    int             `gorm:"column:application_id" json:"application_id"`
	DocumentTypeID   int             `gorm:"column:document_type_id" json:"document_type_id"`
	VersionNumber    int             `gorm:"column:version_number" json:"version_number"`
	Status           string          `gorm:"column:status" json:"status"`
	OCRStatus        string          `gorm:"column:ocr_status" json:"ocr_status"`
	OCRExtract       json.RawMessage `gorm:"column:ocr_extract;type:json" json:"ocr_extract,omitempty"`
	UploadedBy       int             `gorm:"column:uploaded_by" json:"uploaded_by"`
	OriginalFilename string          `gorm:"column:original_filename" json:"original_filename"`
	StoredFilename   string          `gorm:"column:stored_filename" json:"stored_filename"`
	FileSize         int64           `gorm:"column:file_size" json:"file_size"`
	MimeType         string          `gorm:"column:mime_type" json:"mime_type"`
	VerifiedBy       *int            `gorm:"column:verified_by" json:"verified_by,omitempty"`
	VerifiedAt       *time.Time      `gorm:"column:verified_at" json:"verified_at,omitempty"`
	VerifyNotes      *string         `gorm:"column:verify_notes" json:"verify_notes,omitempty"`
	UploadedAt       *time.Time      `gorm:"column:uploaded_at" json:"uploaded_at"`
	CreateAt         *time.Time      `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time      `gorm:"column:update_at" json:"update_at"`

	// Relations
	Application  Application  `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	DocumentType DocumentType `gorm:"foreignKey:DocumentTypeID" json:"document_type,omitempty"`
	Uploader     User         `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

// DocumentType is static catalog data seeded at startup.
type DocumentType struct {
	DocumentTypeID   int        `gorm:"primaryKey;column:document_type_id" json:"document_type_id"`
	DocumentTypeName string     `gorm:"column:document_type_name" json:"document_type_name"`
	Code             string     `gorm:"column:code;unique" json:"code"`
	Mandatory        bool       `gorm:"column:mandatory" json:"mandatory"`
	OCREligible      bool       `gorm:"column:ocr_eligible" json:"ocr_eligible"`
	DocumentOrder    int        `gorm:"column:document_order" json:"document_order"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (Document) TableName() string {
	return "documents"
}

func (DocumentType) TableName() string {
	return "document_types"
}

// Allowed upload MIME types, matching the front-end picker.
func (d *Document) HasValidMimeType() bool {
	validTypes := []string{
		"application/pdf",
		"image/jpeg",
		"image/jpg",
		"image/png",
	}
	for _, validType := range validTypes {
		if d.MimeType == validType {
			return true
		}
	}
	return false
}

func (d *Document) GetFileSizeInMB() float64 {
	return float64(d.FileSize) / (1024 * 1024)
}
