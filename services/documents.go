package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-application-api/models"
)

// ActiveDocuments picks the latest version per document type. Older versions
// are retained but no longer count toward verification.
func ActiveDocuments(docs []models.Document) map[int]models.Document {
	active := make(map[int]models.Document)
	for _, doc := range docs {
		if current, ok := active[doc.DocumentTypeID]; !ok || doc.VersionNumber > current.VersionNumber {
			active[doc.DocumentTypeID] = doc
		}
	}
	return active
}

// MissingMandatory lists mandatory document types whose active version is not
// VERIFIED (or that have no upload at all), in catalog order.
func MissingMandatory(docs []models.Document, types []models.DocumentType) []string {
	active := ActiveDocuments(docs)
	missing := make([]string, 0)
	for _, dt := range types {
		if !dt.Mandatory {
			continue
		}
		doc, ok := active[dt.DocumentTypeID]
		if !ok || doc.Status != models.DocStatusVerified {
			missing = append(missing, dt.Code)
		}
	}
	return missing
}

// AllMandatoryVerified is the single gate consulted before an offer can be
// generated.
func AllMandatoryVerified(db *gorm.DB, applicationID int) (bool, []string, error) {
	var docs []models.Document
	if err := db.Where("application_id = ?", applicationID).Find(&docs).Error; err != nil {
		return false, nil, err
	}
	types, err := DocumentTypes(db)
	if err != nil {
		return false, nil, err
	}
	missing := MissingMandatory(docs, types)
	return len(missing) == 0, missing, nil
}

// DocumentTypes returns the static catalog in display order.
func DocumentTypes(db *gorm.DB) ([]models.DocumentType, error) {
	var types []models.DocumentType
	err := db.Where("delete_at IS NULL").Order("document_order ASC").Find(&types).Error
	return types, err
}

// UploadMeta carries file details captured by the HTTP layer.
type UploadMeta struct {
	OriginalFilename string
	StoredFilename   string
	FileSize         int64
	MimeType         string
}

// RecordUpload creates a new document version for (application, type). The
// previous version is superseded, never overwritten. OCR for eligible types
// is queued after commit and never blocks or fails the upload.
func RecordUpload(db *gorm.DB, applicationID, documentTypeID int, meta UploadMeta, actor *models.User) (*models.Document, error) {
	var doc models.Document
	var docType models.DocumentType

	err := db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ?", applicationID).
			First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "application"}
			}
			return err
		}

		if allowed, reason := CanPerform(actor.RoleID, actor.UserID, &app, ActionUploadDocument); !allowed {
			return &PermissionError{Reason: reason}
		}
		if app.CurrentStage.IsTerminal() {
			return &LockedError{Stage: app.CurrentStage}
		}

		if err := tx.Where("document_type_id = ? AND delete_at IS NULL", documentTypeID).
			First(&docType).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "document type"}
			}
			return err
		}

		var maxVersion int
		if err := tx.Model(&models.Document{}).
			Where("application_id = ? AND document_type_id = ?", applicationID, documentTypeID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}

		now := time.Now()
		ocrStatus := models.OCRStatusNone
		if docType.OCREligible {
			ocrStatus = models.OCRStatusQueued
		}
		doc = models.Document{
			ApplicationID:    applicationID,
			DocumentTypeID:   documentTypeID,
			VersionNumber:    maxVersion + 1,
			Status:           models.DocStatusPending,
			OCRStatus:        ocrStatus,
			UploadedBy:       actor.UserID,
			OriginalFilename: meta.OriginalFilename,
			StoredFilename:   meta.StoredFilename,
			FileSize:         meta.FileSize,
			MimeType:         meta.MimeType,
			UploadedAt:       &now,
			CreateAt:         &now,
			UpdateAt:         &now,
		}
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}

		if err := Append(tx, applicationID, actor.UserID, models.TimelineDocumentUploaded,
			fmt.Sprintf("%s uploaded %s (v%d)", actor.FullName(), docType.DocumentTypeName, doc.VersionNumber),
			&doc.DocumentID); err != nil {
			return err
		}

		// A fresh pending version invalidates the auto-completed documents
		// section until staff verify it again.
		return syncDocumentsSection(tx, applicationID)
	})
	if err != nil {
		return nil, err
	}

	if docType.OCREligible {
		if err := EnqueueOCRJob(doc); err != nil {
			// Degraded, not fatal: record the failure on the document and move on.
			db.Model(&models.Document{}).
				Where("document_id = ?", doc.DocumentID).
				Update("ocr_status", models.OCRStatusFailed)
			doc.OCRStatus = models.OCRStatusFailed
		}
	}

	return &doc, nil
}

// Verify records a staff decision on a pending document. A document that has
// already been decided cannot be decided again (first-committed-wins): the
// competing caller gets a conflict and no second timeline entry is written.
func Verify(db *gorm.DB, documentID int, decision string, notes string, actor *models.User) (*models.Document, error) {
	if decision != models.DocStatusVerified && decision != models.DocStatusRejected {
		return nil, &ValidationError{Section: "verify", Fields: []FieldError{
			{Field: "decision", Message: "must be verified or rejected"},
		}}
	}

	var doc models.Document
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("DocumentType").
			Where("document_id = ?", documentID).
			First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "document"}
			}
			return err
		}

		var app models.Application
		if err := tx.Where("application_id = ?", doc.ApplicationID).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "application"}
			}
			return err
		}

		if allowed, reason := CanPerform(actor.RoleID, actor.UserID, &app, ActionVerifyDocument); !allowed {
			return &PermissionError{Reason: reason}
		}

		if err := checkVerifiable(&doc); err != nil {
			return err
		}

		now := time.Now()
		doc.Status = decision
		doc.VerifiedBy = &actor.UserID
		doc.VerifiedAt = &now
		doc.UpdateAt = &now
		if notes != "" {
			doc.VerifyNotes = &notes
		}
		if err := tx.Save(&doc).Error; err != nil {
			return err
		}

		message := fmt.Sprintf("%s marked %s as %s", actor.FullName(), doc.DocumentType.DocumentTypeName, decision)
		if notes != "" {
			message += ": " + notes
		}
		if err := Append(tx, doc.ApplicationID, actor.UserID, models.TimelineDocumentVerified,
			message, &doc.DocumentID); err != nil {
			return err
		}

		return syncDocumentsSection(tx, doc.ApplicationID)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkVerifiable enforces that only a pending document can receive a
// decision. Concurrent verify calls serialize on the row lock; the loser sees
// the committed decision here.
func checkVerifiable(doc *models.Document) error {
	if doc.Status != models.DocStatusPending {
		return &ConflictError{Reason: "document has already been " + doc.Status}
	}
	return nil
}

// RecordOCRResult stores the outcome of an asynchronous OCR run. Called by
// the external worker; it never touches verification status.
func RecordOCRResult(db *gorm.DB, documentID int, ocrStatus string, extract []byte) error {
	if ocrStatus != models.OCRStatusCompleted && ocrStatus != models.OCRStatusFailed {
		return &ValidationError{Section: "ocr", Fields: []FieldError{
			{Field: "ocr_status", Message: "must be completed or failed"},
		}}
	}
	now := time.Now()
	updates := map[string]interface{}{
		"ocr_status": ocrStatus,
		"update_at":  &now,
	}
	if len(extract) > 0 {
		updates["ocr_extract"] = extract
	}
	result := db.Model(&models.Document{}).
		Where("document_id = ?", documentID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "document"}
	}
	return nil
}

// syncDocumentsSection keeps the read-only documents step in line with the
// verification state: complete iff every mandatory type's active version is
// VERIFIED.
func syncDocumentsSection(tx *gorm.DB, applicationID int) error {
	var docs []models.Document
	if err := tx.Where("application_id = ?", applicationID).Find(&docs).Error; err != nil {
		return err
	}
	types, err := DocumentTypes(tx)
	if err != nil {
		return err
	}
	complete := len(MissingMandatory(docs, types)) == 0

	now := time.Now()
	var section models.ApplicationSection
	err = tx.Where("application_id = ? AND section_name = ?", applicationID, SectionDocuments).
		First(&section).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !complete {
			return nil
		}
		section = models.ApplicationSection{
			ApplicationID: applicationID,
			SectionName:   SectionDocuments,
			Payload:       []byte(`{}`),
			CompletedAt:   &now,
			UpdateAt:      &now,
		}
		return tx.Create(&section).Error
	case err != nil:
		return err
	}

	if complete && section.CompletedAt == nil {
		section.CompletedAt = &now
	} else if !complete && section.CompletedAt != nil {
		section.CompletedAt = nil
	} else {
		return nil
	}
	section.UpdateAt = &now
	return tx.Save(&section).Error
}
