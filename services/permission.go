package services

import (
	"student-application-api/models"
)

// Action is one mutating operation an actor can attempt on an application.
type Action string

const (
	ActionCreate             Action = "create"
	ActionEdit               Action = "edit"
	ActionSubmit             Action = "submit"
	ActionUploadDocument     Action = "uploadDocument"
	ActionVerifyDocument     Action = "verifyDocument"
	ActionAssign             Action = "assign"
	ActionRequestDocuments   Action = "requestDocuments"
	ActionApprove            Action = "approve"
	ActionReject             Action = "reject"
	ActionRecordGSAssessment Action = "recordGsAssessment"
	ActionSignOffer          Action = "signOffer"
	ActionEnroll             Action = "enroll"
	ActionReview             Action = "review"
	ActionWithdraw           Action = "withdraw"
)

// ownership qualifies a policy row: some roles may only act on applications
// they own.
type ownership int

const (
	ownAny ownership = iota
	ownAgent
	ownStudent
)

type policyRule struct {
	allowed bool
	owner   ownership
}

// policyTable is the single source of truth for role-based access. Keeping it
// as data rather than per-role branching keeps the rule set auditable.
//
// Staff access is tenant-wide: assignment of an application to a staff member
// is informational and does not restrict other staff.
var policyTable = map[int]map[Action]policyRule{
	models.RoleAgent: {
		ActionCreate:         {allowed: true, owner: ownAgent},
		ActionEdit:           {allowed: true, owner: ownAgent},
		ActionSubmit:         {allowed: true, owner: ownAgent},
		ActionUploadDocument: {allowed: true, owner: ownAgent},
		ActionWithdraw:       {allowed: true, owner: ownAgent},
	},
	models.RoleStudent: {
		ActionSignOffer: {allowed: true, owner: ownStudent},
		ActionWithdraw:  {allowed: true, owner: ownStudent},
	},
	models.RoleStaff: {
		ActionCreate:             {allowed: true},
		ActionEdit:               {allowed: true},
		ActionSubmit:             {allowed: true},
		ActionUploadDocument:     {allowed: true},
		ActionVerifyDocument:     {allowed: true},
		ActionAssign:             {allowed: true},
		ActionRequestDocuments:   {allowed: true},
		ActionApprove:            {allowed: true},
		ActionReject:             {allowed: true},
		ActionRecordGSAssessment: {allowed: true},
		ActionSignOffer:          {allowed: true},
		ActionEnroll:             {allowed: true},
		ActionReview:             {allowed: true},
		ActionWithdraw:           {allowed: true},
	},
}

// CanPerform decides whether the actor may perform action on the application.
// It is a pure function over the policy table; every mutating operation must
// consult it before touching data, and a denial short-circuits the write.
func CanPerform(actorRole int, actorID int, app *models.Application, action Action) (bool, string) {
	if actorRole == models.RoleAdmin {
		return true, ""
	}

	rules, ok := policyTable[actorRole]
	if !ok {
		return false, "Unknown role"
	}

	rule, ok := rules[action]
	if !ok || !rule.allowed {
		return false, denyReason(actorRole, action)
	}

	switch rule.owner {
	case ownAgent:
		// Creation has no application row yet; ownership is checked once the
		// record exists.
		if app == nil {
			return true, ""
		}
		if app.AgentID == nil || *app.AgentID != actorID {
			return false, "Agents may only act on applications they manage"
		}
	case ownStudent:
		if app == nil || app.StudentID != actorID {
			return false, "Students may only act on their own application"
		}
	}

	return true, ""
}

func denyReason(actorRole int, action Action) string {
	switch actorRole {
	case models.RoleStudent:
		return "Students cannot " + actionLabel(action) + "; contact your agent"
	case models.RoleAgent:
		return "Agents cannot " + actionLabel(action) + "; this is a staff action"
	case models.RoleStaff:
		return "Staff cannot " + actionLabel(action)
	}
	return "Action not permitted"
}

func actionLabel(action Action) string {
	switch action {
	case ActionCreate:
		return "create applications"
	case ActionEdit:
		return "edit application forms"
	case ActionSubmit:
		return "submit applications"
	case ActionUploadDocument:
		return "upload documents"
	case ActionVerifyDocument:
		return "verify documents"
	case ActionAssign:
		return "assign applications"
	case ActionRequestDocuments:
		return "request documents"
	case ActionApprove:
		return "approve applications"
	case ActionReject:
		return "reject applications"
	case ActionRecordGSAssessment:
		return "record GS assessments"
	case ActionSignOffer:
		return "sign offers"
	case ActionEnroll:
		return "enrol applications"
	case ActionReview:
		return "review applications"
	case ActionWithdraw:
		return "withdraw applications"
	}
	if action == "" {
		return "perform this action"
	}
	return string(action)
}
