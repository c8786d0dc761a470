package services

import (
	"errors"
	"testing"

	"student-application-api/models"
)

func TestTimelineEntryTypeCatalog(t *testing.T) {
	for _, entryType := range []string{
		models.TimelineApplicationCreated,
		models.TimelineStepUpdated,
		models.TimelineStageChanged,
		models.TimelineDocumentUploaded,
		models.TimelineDocumentVerified,
		models.TimelineCommentAdded,
		models.TimelineOfferGenerated,
		models.TimelineOfferSigned,
	} {
		if !IsValidTimelineEntryType(entryType) {
			t.Errorf("catalog entry type %s not recognized", entryType)
		}
	}

	if IsValidTimelineEntryType("APPLICATION_DELETED") {
		t.Error("unknown entry type accepted")
	}
	if IsValidTimelineEntryType("") {
		t.Error("empty entry type accepted")
	}
}

func TestAppendRejectsBadInputBeforeTouchingStorage(t *testing.T) {
	// A nil DB proves validation short-circuits ahead of any write.
	err := Append(nil, 1, 1, "NOT_A_TYPE", "message", nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for unknown type, got %v", err)
	}

	err = Append(nil, 1, 1, models.TimelineCommentAdded, "", nil)
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for empty message, got %v", err)
	}
}
