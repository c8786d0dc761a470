package services

import (
	"strings"
	"testing"

	"student-application-api/models"
)

func appOwnedBy(agentID, studentID int) *models.Application {
	app := &models.Application{StudentID: studentID, CurrentStage: models.StageDraft}
	if agentID != 0 {
		app.AgentID = &agentID
	}
	return app
}

func TestStudentsCanOnlySignTheirOwnOffer(t *testing.T) {
	app := appOwnedBy(10, 20)

	if ok, _ := CanPerform(models.RoleStudent, 20, app, ActionSignOffer); !ok {
		t.Fatal("student should be able to sign their own offer")
	}
	if ok, _ := CanPerform(models.RoleStudent, 99, app, ActionSignOffer); ok {
		t.Fatal("student must not sign another student's offer")
	}

	for _, action := range []Action{ActionCreate, ActionEdit, ActionSubmit, ActionUploadDocument,
		ActionVerifyDocument, ActionAssign, ActionApprove, ActionReject, ActionRecordGSAssessment, ActionEnroll} {
		ok, reason := CanPerform(models.RoleStudent, 20, app, action)
		if ok {
			t.Errorf("student unexpectedly allowed to %s", action)
			continue
		}
		if !strings.Contains(reason, "contact your agent") {
			t.Errorf("student denial for %s should point at the agent, got %q", action, reason)
		}
	}
}

func TestAgentOwnershipGatesMutations(t *testing.T) {
	app := appOwnedBy(10, 20)

	for _, action := range []Action{ActionEdit, ActionSubmit, ActionUploadDocument} {
		if ok, _ := CanPerform(models.RoleAgent, 10, app, action); !ok {
			t.Errorf("owning agent should be allowed to %s", action)
		}
		if ok, reason := CanPerform(models.RoleAgent, 11, app, action); ok {
			t.Errorf("foreign agent allowed to %s", action)
		} else if reason == "" {
			t.Errorf("foreign agent denial for %s must carry a reason", action)
		}
	}

	// Staff-only actions are never agent territory, owned or not.
	for _, action := range []Action{ActionVerifyDocument, ActionAssign, ActionApprove,
		ActionReject, ActionRecordGSAssessment, ActionEnroll} {
		if ok, _ := CanPerform(models.RoleAgent, 10, app, action); ok {
			t.Errorf("agent unexpectedly allowed to %s", action)
		}
	}
}

func TestAgentCanCreateBeforeApplicationExists(t *testing.T) {
	if ok, _ := CanPerform(models.RoleAgent, 10, nil, ActionCreate); !ok {
		t.Fatal("agent should be able to create applications")
	}
}

func TestStaffHaveTenantWideAccess(t *testing.T) {
	// Assignment to someone else does not restrict other staff.
	other := 77
	app := appOwnedBy(10, 20)
	app.AssignedStaffID = &other

	for _, action := range []Action{ActionCreate, ActionEdit, ActionSubmit, ActionUploadDocument,
		ActionVerifyDocument, ActionAssign, ActionRequestDocuments, ActionApprove,
		ActionReject, ActionRecordGSAssessment, ActionEnroll} {
		if ok, reason := CanPerform(models.RoleStaff, 50, app, action); !ok {
			t.Errorf("staff should be allowed to %s, denied with %q", action, reason)
		}
	}
}

func TestAdminAllowedEverything(t *testing.T) {
	app := appOwnedBy(10, 20)
	for _, action := range []Action{ActionCreate, ActionEdit, ActionSubmit, ActionUploadDocument,
		ActionVerifyDocument, ActionAssign, ActionRequestDocuments, ActionApprove,
		ActionReject, ActionRecordGSAssessment, ActionSignOffer, ActionEnroll, ActionWithdraw} {
		if ok, _ := CanPerform(models.RoleAdmin, 1, app, action); !ok {
			t.Errorf("admin should be allowed to %s", action)
		}
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	if ok, _ := CanPerform(9, 1, appOwnedBy(10, 20), ActionEdit); ok {
		t.Fatal("unknown role must be denied")
	}
}

func TestDenyReasonNeverTrailsOff(t *testing.T) {
	for _, role := range []int{models.RoleStudent, models.RoleAgent, models.RoleStaff} {
		reason := denyReason(role, Action(""))
		if strings.HasSuffix(reason, " ") || strings.HasSuffix(reason, "cannot") {
			t.Errorf("role %d denial message is truncated: %q", role, reason)
		}
	}
	if got := actionLabel(""); got == "" {
		t.Error("actionLabel must fall back to a readable phrase for an empty action")
	}
}
