package main

import "testing"

func TestCatalogCoversAllReferenceData(t *testing.T) {
	if len(roles) != 4 {
		t.Errorf("expected 4 roles, got %d", len(roles))
	}
	if len(documentTypes) == 0 {
		t.Fatal("document type catalog is empty")
	}
	if len(courseOfferings) == 0 {
		t.Fatal("course offering catalog is empty; a fresh install could not create applications")
	}

	for _, offering := range courseOfferings {
		if !offering.IsActive {
			t.Errorf("seeded offering %s should be active", offering.CourseCode)
		}
	}
}

func TestCatalogCodesAreUnique(t *testing.T) {
	seenDocs := make(map[string]bool)
	for _, dt := range documentTypes {
		if seenDocs[dt.Code] {
			t.Errorf("duplicate document type code %s", dt.Code)
		}
		seenDocs[dt.Code] = true
	}

	seenCourses := make(map[string]bool)
	for _, offering := range courseOfferings {
		if seenCourses[offering.CourseCode] {
			t.Errorf("duplicate course code %s", offering.CourseCode)
		}
		seenCourses[offering.CourseCode] = true
	}
}
