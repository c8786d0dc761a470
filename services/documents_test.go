package services

import (
	"errors"
	"testing"

	"student-application-api/models"
)

var testDocTypes = []models.DocumentType{
	{DocumentTypeID: 1, Code: "passport", Mandatory: true, OCREligible: true, DocumentOrder: 1},
	{DocumentTypeID: 2, Code: "transcript", Mandatory: true, DocumentOrder: 2},
	{DocumentTypeID: 3, Code: "portfolio", Mandatory: false, DocumentOrder: 3},
}

func TestActiveDocumentsPicksLatestVersion(t *testing.T) {
	docs := []models.Document{
		{DocumentID: 1, DocumentTypeID: 1, VersionNumber: 1, Status: models.DocStatusVerified},
		{DocumentID: 2, DocumentTypeID: 1, VersionNumber: 2, Status: models.DocStatusPending},
		{DocumentID: 3, DocumentTypeID: 2, VersionNumber: 1, Status: models.DocStatusVerified},
	}

	active := ActiveDocuments(docs)
	if len(active) != 2 {
		t.Fatalf("expected 2 active documents, got %d", len(active))
	}
	if active[1].DocumentID != 2 {
		t.Fatalf("expected v2 to be active for type 1, got document %d", active[1].DocumentID)
	}
	if active[2].DocumentID != 3 {
		t.Fatalf("expected v1 to be active for type 2, got document %d", active[2].DocumentID)
	}
}

func TestReuploadSupersedesVerifiedVersion(t *testing.T) {
	// Both mandatory types verified.
	docs := []models.Document{
		{DocumentTypeID: 1, VersionNumber: 1, Status: models.DocStatusVerified},
		{DocumentTypeID: 2, VersionNumber: 1, Status: models.DocStatusVerified},
	}
	if missing := MissingMandatory(docs, testDocTypes); len(missing) != 0 {
		t.Fatalf("expected all mandatory verified, missing %v", missing)
	}

	// A fresh pending upload of the passport supersedes the verified v1; the
	// gate now reflects only the latest version.
	docs = append(docs, models.Document{DocumentTypeID: 1, VersionNumber: 2, Status: models.DocStatusPending})
	missing := MissingMandatory(docs, testDocTypes)
	if len(missing) != 1 || missing[0] != "passport" {
		t.Fatalf("expected passport outstanding after re-upload, got %v", missing)
	}
}

func TestMissingMandatoryIgnoresOptionalTypes(t *testing.T) {
	docs := []models.Document{
		{DocumentTypeID: 1, VersionNumber: 1, Status: models.DocStatusVerified},
		{DocumentTypeID: 2, VersionNumber: 1, Status: models.DocStatusVerified},
		// Optional portfolio rejected; it must not block the gate.
		{DocumentTypeID: 3, VersionNumber: 1, Status: models.DocStatusRejected},
	}
	if missing := MissingMandatory(docs, testDocTypes); len(missing) != 0 {
		t.Fatalf("optional document blocked the gate: %v", missing)
	}
}

func TestMissingMandatoryWithNoUploads(t *testing.T) {
	missing := MissingMandatory(nil, testDocTypes)
	if len(missing) != 2 {
		t.Fatalf("expected both mandatory types missing, got %v", missing)
	}
	if missing[0] != "passport" || missing[1] != "transcript" {
		t.Fatalf("expected catalog order, got %v", missing)
	}
}

func TestRejectedOrPendingMandatoryBlocksGate(t *testing.T) {
	for _, status := range []string{models.DocStatusPending, models.DocStatusRejected} {
		docs := []models.Document{
			{DocumentTypeID: 1, VersionNumber: 1, Status: models.DocStatusVerified},
			{DocumentTypeID: 2, VersionNumber: 1, Status: status},
		}
		missing := MissingMandatory(docs, testDocTypes)
		if len(missing) != 1 || missing[0] != "transcript" {
			t.Fatalf("status %s: expected transcript outstanding, got %v", status, missing)
		}
	}
}

func TestOnlyPendingDocumentsAcceptDecisions(t *testing.T) {
	if err := checkVerifiable(&models.Document{Status: models.DocStatusPending}); err != nil {
		t.Fatalf("pending document should be verifiable: %v", err)
	}

	// A concurrent verify lost the race: the committed decision stands and
	// the loser gets a conflict, so only one timeline entry ever exists.
	for _, status := range []string{models.DocStatusVerified, models.DocStatusRejected} {
		err := checkVerifiable(&models.Document{Status: status})
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("status %s: expected ConflictError, got %v", status, err)
		}
	}
}
