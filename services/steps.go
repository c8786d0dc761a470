package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-application-api/models"
)

// Section names in canonical 12-step order. The documents section is
// read-only: it is marked complete by the document tracker once every
// mandatory document type has a verified active version, never via
// UpdateSection.
const (
	SectionPersonalDetails    = "personal-details"
	SectionEmergencyContact   = "emergency-contact"
	SectionHealthCover        = "health-cover"
	SectionLanguageCultural   = "language-cultural"
	SectionDisabilitySupport  = "disability-support"
	SectionSchoolingHistory   = "schooling-history"
	SectionQualifications     = "qualifications"
	SectionEmploymentHistory  = "employment-history"
	SectionUSI                = "usi"
	SectionAdditionalServices = "additional-services"
	SectionSurvey             = "survey"
	SectionDocuments          = "documents"
)

// SectionOrder is the canonical 12-step order used for next-step computation.
var SectionOrder = []string{
	SectionPersonalDetails,
	SectionEmergencyContact,
	SectionHealthCover,
	SectionLanguageCultural,
	SectionDisabilitySupport,
	SectionSchoolingHistory,
	SectionQualifications,
	SectionEmploymentHistory,
	SectionUSI,
	SectionAdditionalServices,
	SectionSurvey,
	SectionDocuments,
}

// IsValidSection reports whether name is in the fixed section catalog.
func IsValidSection(name string) bool {
	for _, s := range SectionOrder {
		if s == name {
			return true
		}
	}
	return false
}

// CompletedSet builds the set of completed section names from stored rows.
func CompletedSet(sections []models.ApplicationSection) map[string]bool {
	completed := make(map[string]bool, len(sections))
	for _, s := range sections {
		if s.CompletedAt != nil {
			completed[s.SectionName] = true
		}
	}
	return completed
}

// CompletionPercentage is the integer percentage of completed sections.
func CompletionPercentage(completed map[string]bool) int {
	count := 0
	for _, name := range SectionOrder {
		if completed[name] {
			count++
		}
	}
	return count * 100 / len(SectionOrder)
}

// NextStep returns the first section in canonical order not yet complete, or
// nil when all twelve are done.
func NextStep(completed map[string]bool) *string {
	for _, name := range SectionOrder {
		if !completed[name] {
			next := name
			return &next
		}
	}
	return nil
}

// MissingSections lists incomplete sections in canonical order.
func MissingSections(completed map[string]bool) []string {
	missing := make([]string, 0)
	for _, name := range SectionOrder {
		if !completed[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// StepProgress is the completion summary returned alongside section saves.
type StepProgress struct {
	CompletedSections []string `json:"completed_sections"`
	CompletionPercent int      `json:"completion_percentage"`
	NextStep          *string  `json:"next_step"`
}

// Progress computes the completion summary for stored section rows.
func Progress(sections []models.ApplicationSection) StepProgress {
	completed := CompletedSet(sections)
	names := make([]string, 0, len(completed))
	for _, name := range SectionOrder {
		if completed[name] {
			names = append(names, name)
		}
	}
	return StepProgress{
		CompletedSections: names,
		CompletionPercent: CompletionPercentage(completed),
		NextStep:          NextStep(completed),
	}
}

// UpdateSection validates and saves one section payload for an application.
// The payload replaces the stored slot in full; re-saving a complete section
// keeps it complete. Runs as a single transaction locked on the application
// row so concurrent saves serialize.
func UpdateSection(db *gorm.DB, applicationID int, sectionName string, payload json.RawMessage, actor *models.User) (*StepProgress, error) {
	if !IsValidSection(sectionName) {
		return nil, &NotFoundError{Entity: "section " + sectionName}
	}
	if sectionName == SectionDocuments {
		return nil, &ValidationError{Section: sectionName, Fields: []FieldError{
			{Field: "section", Message: "the documents section is completed automatically and cannot be edited"},
		}}
	}

	if err := ValidateSectionPayload(sectionName, payload); err != nil {
		return nil, err
	}

	var progress StepProgress
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

		if allowed, reason := CanPerform(actor.RoleID, actor.UserID, &app, ActionEdit); !allowed {
			return &PermissionError{Reason: reason}
		}

		if app.CurrentStage != models.StageDraft {
			return &LockedError{Stage: app.CurrentStage}
		}

		now := time.Now()

		var section models.ApplicationSection
		err := tx.Where("application_id = ? AND section_name = ?", applicationID, sectionName).
			First(&section).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			section = models.ApplicationSection{
				ApplicationID: applicationID,
				SectionName:   sectionName,
				Payload:       payload,
				CompletedAt:   &now,
				UpdateAt:      &now,
			}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			section.Payload = payload
			if section.CompletedAt == nil {
				section.CompletedAt = &now
			}
			section.UpdateAt = &now
			if err := tx.Save(&section).Error; err != nil {
				return err
			}
		}

		app.LastSavedAt = &now
		app.UpdateAt = &now
		if err := tx.Save(&app).Error; err != nil {
			return err
		}

		if err := Append(tx, applicationID, actor.UserID, models.TimelineStepUpdated,
			actor.FullName()+" updated section "+sectionName, nil); err != nil {
			return err
		}

		var sections []models.ApplicationSection
		if err := tx.Where("application_id = ?", applicationID).Find(&sections).Error; err != nil {
			return err
		}
		progress = Progress(sections)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

var usiPattern = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)

type dateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// checkDateRange appends field errors when the range is absent or inverted.
// Dates arrive as ISO days (2006-01-02).
func checkDateRange(prefix string, r dateRange, required bool, fields []FieldError) []FieldError {
	if r.StartDate == "" || r.EndDate == "" {
		if required {
			fields = append(fields, FieldError{Field: prefix, Message: "start_date and end_date are required"})
		}
		return fields
	}
	start, err1 := time.Parse("2006-01-02", r.StartDate)
	end, err2 := time.Parse("2006-01-02", r.EndDate)
	if err1 != nil || err2 != nil {
		fields = append(fields, FieldError{Field: prefix, Message: "dates must use YYYY-MM-DD"})
		return fields
	}
	if !end.After(start) {
		fields = append(fields, FieldError{Field: prefix, Message: "end_date must be after start_date"})
	}
	return fields
}

// ValidateSectionPayload checks one section payload against its schema.
// Returns a *ValidationError with field detail on failure.
func ValidateSectionPayload(sectionName string, payload json.RawMessage) error {
	fail := func(fields ...FieldError) error {
		return &ValidationError{Section: sectionName, Fields: fields}
	}

	if len(payload) == 0 {
		return fail(FieldError{Field: "payload", Message: "payload is required"})
	}

	switch sectionName {
	case SectionPersonalDetails:
		var body struct {
			FirstName   string `json:"first_name"`
			LastName    string `json:"last_name"`
			DateOfBirth string `json:"date_of_birth"`
			Email       string `json:"email"`
			Nationality string `json:"nationality"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fail(FieldError{Field: "payload", Message: "invalid JSON"})
		}
		var fields []FieldError
		if body.FirstName == "" {
			fields = append(fields, FieldError{Field: "first_name", Message: "required"})
		}
		if body.LastName == "" {
			fields = append(fields, FieldError{Field: "last_name", Message: "required"})
		}
		if body.DateOfBirth == "" {
			fields = append(fields, FieldError{Field: "date_of_birth", Message: "required"})
		} else if _, err := time.Parse("2006-01-02", body.DateOfBirth); err != nil {
			fields = append(fields, FieldError{Field: "date_of_birth", Message: "must use YYYY-MM-DD"})
		}
		if len(fields) > 0 {
			return fail(fields...)
		}

	case SectionEmergencyContact:
		var body struct {
			Contacts []struct {
				Name      string `json:"name"`
				Phone     string `json:"phone"`
				IsPrimary bool   `json:"is_primary"`
			} `json:"contacts"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fail(FieldError{Field: "payload", Message: "invalid JSON"})
		}
		if len(body.Contacts) < 1 || len(body.Contacts) > 5 {
			return fail(FieldError{Field: "contacts", Message: "between 1 and 5 contacts are required"})
		}
		primaries := 0
		var fields []FieldError
		for _, contact := range body.Contacts {
			if contact.Name == "" {
				fields = append(fields, FieldError{Field: "contacts", Message: "contact name is required"})
			}
			if contact.IsPrimary {
				primaries++
			}
		}
		if primaries != 1 {
			fields = append(fields, FieldError{Field: "contacts", Message: "exactly one contact must be marked primary"})
		}
		if len(fields) > 0 {
			return fail(fields...)
		}

	case SectionHealthCover:
		var body struct {
			Provider     string `json:"provider"`
			PolicyNumber string `json:"policy_number"`
			dateRange
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fail(FieldError{Field: "payload", Message: "invalid JSON"})
		}
		var fields []FieldError
		if body.Provider == "" {
			fields = append(fields, FieldError{Field: "provider", Message: "required"})
		}
		if body.PolicyNumber == "" {
			fields = append(fields, FieldError{Field: "policy_number", Message: "required"})
		}
		fields = checkDateRange("cover_period", body.dateRange, true, fields)
		if len(fields) > 0 {
			return fail(fields...)
		}

	case SectionSchoolingHistory, SectionEmploymentHistory:
		var body struct {
			Entries []struct {
				Name string `json:"name"`
				dateRange
			} `json:"entries"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fail(FieldError{Field: "payload", Message: "invalid JSON"})
		}
		var fields []FieldError
		for _, entry := range body.Entries {
			fields = checkDateRange("entries", entry.dateRange, false, fields)
		}
		if len(fields) > 0 {
			return fail(fields...)
		}

	case SectionUSI:
		var body struct {
			USI string `json:"usi"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fail(FieldError{Field: "payload", Message: "invalid JSON"})
		}
		if !usiPattern.MatchString(body.USI) {
			return fail(FieldError{Field: "usi", Message: "must be exactly 10 alphanumeric characters"})
		}

	case SectionLanguageCultural, SectionDisabilitySupport,
		SectionQualifications, SectionAdditionalServices, SectionSurvey:
		// Free-form sections: any well-formed JSON object is accepted.
		var body map[string]interface{}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fail(FieldError{Field: "payload", Message: "invalid JSON object"})
		}
	}

	return nil
}
