package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"student-application-api/models"
)

func completedSections(names ...string) []models.ApplicationSection {
	now := time.Now()
	sections := make([]models.ApplicationSection, 0, len(names))
	for _, name := range names {
		sections = append(sections, models.ApplicationSection{
			SectionName: name,
			Payload:     json.RawMessage(`{}`),
			CompletedAt: &now,
		})
	}
	return sections
}

func TestSectionCatalogHasTwelveSteps(t *testing.T) {
	if len(SectionOrder) != 12 {
		t.Fatalf("expected 12 sections, got %d", len(SectionOrder))
	}
	if SectionOrder[11] != SectionDocuments {
		t.Fatalf("documents must be the final step, got %s", SectionOrder[11])
	}
	seen := map[string]bool{}
	for _, name := range SectionOrder {
		if seen[name] {
			t.Fatalf("duplicate section %s", name)
		}
		seen[name] = true
		if !IsValidSection(name) {
			t.Fatalf("catalog section %s not recognized", name)
		}
	}
	if IsValidSection("passport-details") {
		t.Fatal("unknown section accepted")
	}
}

func TestProgressComputation(t *testing.T) {
	progress := Progress(completedSections(SectionPersonalDetails, SectionUSI))
	if progress.CompletionPercent != 16 { // 2/12 truncated
		t.Fatalf("expected 16%%, got %d%%", progress.CompletionPercent)
	}
	if progress.NextStep == nil || *progress.NextStep != SectionEmergencyContact {
		t.Fatalf("expected next step emergency-contact, got %v", progress.NextStep)
	}
	if len(progress.CompletedSections) != 2 {
		t.Fatalf("expected 2 completed sections, got %v", progress.CompletedSections)
	}
}

func TestProgressIsIdempotentAcrossResaves(t *testing.T) {
	// Re-saving an already-complete section leaves one row per section, so the
	// derived numbers cannot drift.
	sections := completedSections(SectionOrder[:5]...)
	first := Progress(sections)
	second := Progress(sections)
	if first.CompletionPercent != second.CompletionPercent {
		t.Fatalf("completion drifted: %d vs %d", first.CompletionPercent, second.CompletionPercent)
	}
	if *first.NextStep != *second.NextStep {
		t.Fatalf("next step drifted: %s vs %s", *first.NextStep, *second.NextStep)
	}
}

func TestElevenOfTwelveIsIncomplete(t *testing.T) {
	sections := completedSections(SectionOrder[:11]...) // everything but documents
	completed := CompletedSet(sections)

	missing := MissingSections(completed)
	if len(missing) != 1 || missing[0] != SectionDocuments {
		t.Fatalf("expected only documents missing, got %v", missing)
	}
	if CompletionPercentage(completed) != 91 {
		t.Fatalf("expected 91%%, got %d%%", CompletionPercentage(completed))
	}

	// Auto-completing the documents step finishes the form.
	sections = completedSections(SectionOrder...)
	completed = CompletedSet(sections)
	if len(MissingSections(completed)) != 0 {
		t.Fatalf("expected nothing missing, got %v", MissingSections(completed))
	}
	if CompletionPercentage(completed) != 100 {
		t.Fatalf("expected 100%%, got %d%%", CompletionPercentage(completed))
	}
	if NextStep(completed) != nil {
		t.Fatalf("expected no next step, got %v", *NextStep(completed))
	}
}

func TestValidatePersonalDetails(t *testing.T) {
	valid := json.RawMessage(`{"first_name":"Mei","last_name":"Chen","date_of_birth":"2001-04-09","email":"mei@example.com"}`)
	if err := ValidateSectionPayload(SectionPersonalDetails, valid); err != nil {
		t.Fatalf("valid personal details rejected: %v", err)
	}

	missing := json.RawMessage(`{"first_name":"Mei"}`)
	err := ValidateSectionPayload(SectionPersonalDetails, missing)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.Fields) != 2 {
		t.Fatalf("expected 2 field errors (last_name, date_of_birth), got %v", vErr.Fields)
	}
}

func TestValidateEmergencyContacts(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"one primary", `{"contacts":[{"name":"A","phone":"1","is_primary":true}]}`, false},
		{"five contacts one primary", `{"contacts":[{"name":"A","is_primary":true},{"name":"B"},{"name":"C"},{"name":"D"},{"name":"E"}]}`, false},
		{"no contacts", `{"contacts":[]}`, true},
		{"six contacts", `{"contacts":[{"name":"A","is_primary":true},{"name":"B"},{"name":"C"},{"name":"D"},{"name":"E"},{"name":"F"}]}`, true},
		{"no primary", `{"contacts":[{"name":"A"},{"name":"B"}]}`, true},
		{"two primaries", `{"contacts":[{"name":"A","is_primary":true},{"name":"B","is_primary":true}]}`, true},
	}
	for _, tc := range cases {
		err := ValidateSectionPayload(SectionEmergencyContact, json.RawMessage(tc.payload))
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestValidateUSI(t *testing.T) {
	cases := []struct {
		usi     string
		wantErr bool
	}{
		{"ABC1234567", false},
		{"abcdefghij", false},
		{"1234567890", false},
		{"ABC123", true},
		{"ABC12345678", true},
		{"ABC123456!", true},
		{"", true},
	}
	for _, tc := range cases {
		payload, _ := json.Marshal(map[string]string{"usi": tc.usi})
		err := ValidateSectionPayload(SectionUSI, payload)
		if tc.wantErr && err == nil {
			t.Errorf("USI %q: expected error", tc.usi)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("USI %q: unexpected error %v", tc.usi, err)
		}
	}
}

func TestValidateDateRanges(t *testing.T) {
	good := json.RawMessage(`{"provider":"XYZ","policy_number":"P1","start_date":"2026-01-01","end_date":"2027-01-01"}`)
	if err := ValidateSectionPayload(SectionHealthCover, good); err != nil {
		t.Fatalf("valid health cover rejected: %v", err)
	}

	inverted := json.RawMessage(`{"provider":"XYZ","policy_number":"P1","start_date":"2027-01-01","end_date":"2026-01-01"}`)
	if err := ValidateSectionPayload(SectionHealthCover, inverted); err == nil {
		t.Fatal("inverted cover period accepted")
	}

	equal := json.RawMessage(`{"entries":[{"name":"School","start_date":"2020-01-01","end_date":"2020-01-01"}]}`)
	if err := ValidateSectionPayload(SectionSchoolingHistory, equal); err == nil {
		t.Fatal("zero-length schooling entry accepted")
	}

	ongoing := json.RawMessage(`{"entries":[{"name":"Employer"}]}`)
	if err := ValidateSectionPayload(SectionEmploymentHistory, ongoing); err != nil {
		t.Fatalf("entry without dates should be accepted, got %v", err)
	}
}

func TestFreeFormSectionsRequireJSONObject(t *testing.T) {
	if err := ValidateSectionPayload(SectionSurvey, json.RawMessage(`{"q1":"yes"}`)); err != nil {
		t.Fatalf("valid survey rejected: %v", err)
	}
	if err := ValidateSectionPayload(SectionSurvey, json.RawMessage(`"just a string"`)); err == nil {
		t.Fatal("non-object survey payload accepted")
	}
	if err := ValidateSectionPayload(SectionQualifications, nil); err == nil {
		t.Fatal("empty payload accepted")
	}
}
