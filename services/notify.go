package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"student-application-api/config"
	"student-application-api/models"
)

// dispatchStageChange fans a successful transition out to the student, the
// agent and the assigned staff member: in-app notification rows, a queue
// event for the external worker, and email. Runs after the transaction has
// committed and never feeds failures back to the actor.
func dispatchStageChange(db *gorm.DB, app *models.Application, actor *models.User, fromStage models.Stage, notes string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("stage-change dispatch panic for application %d: %v", app.ApplicationID, r)
			}
		}()

		title := "Application " + app.ApplicationNumber + " update"
		message := fmt.Sprintf("Application %s moved from %s to %s", app.ApplicationNumber, fromStage, app.CurrentStage)
		if notes != "" {
			message += ": " + notes
		}

		recipients := stageChangeRecipients(db, app, actor)
		for _, user := range recipients {
			createNotificationRow(db, user.UserID, app.ApplicationID, title, message)
		}

		if err := EnqueueStageEvent(StageEvent{
			ApplicationID:     app.ApplicationID,
			ApplicationNumber: app.ApplicationNumber,
			FromStage:         fromStage,
			ToStage:           app.CurrentStage,
			ActorID:           actor.UserID,
			Notes:             notes,
		}); err != nil {
			log.Printf("stage event enqueue failed for application %d: %v", app.ApplicationID, err)
		}

		emails := make([]string, 0, len(recipients))
		for _, user := range recipients {
			if user.Email != "" {
				emails = append(emails, user.Email)
			}
		}
		sendMailSafe(emails, title, buildStageChangeHTML(app, fromStage, message))
	}()
}

// stageChangeRecipients loads the users who should hear about the change,
// excluding the actor who caused it.
func stageChangeRecipients(db *gorm.DB, app *models.Application, actor *models.User) []models.User {
	ids := make([]int, 0, 3)
	seen := map[int]bool{actor.UserID: true}

	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(app.StudentID)
	if app.AgentID != nil {
		add(*app.AgentID)
	}
	if app.AssignedStaffID != nil {
		add(*app.AssignedStaffID)
	}
	if len(ids) == 0 {
		return nil
	}

	var users []models.User
	if err := db.Where("user_id IN ? AND delete_at IS NULL", ids).Find(&users).Error; err != nil {
		log.Printf("failed to load notification recipients for application %d: %v", app.ApplicationID, err)
		return nil
	}
	return users
}

func createNotificationRow(db *gorm.DB, userID, applicationID int, title, message string) {
	appID := uint(applicationID)
	notification := models.Notification{
		UserID:               uint(userID),
		Title:                title,
		Message:              message,
		Type:                 "info",
		RelatedApplicationID: &appID,
		CreateAt:             time.Now(),
	}
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("failed to create notification for user %d: %v", userID, err)
	}
}

// sendMailSafe sends email without letting SMTP trouble reach the caller.
func sendMailSafe(to []string, subject, html string) {
	if len(to) == 0 {
		return
	}
	if err := config.SendMail(to, subject, html); err != nil {
		log.Printf("email dispatch failed (%s): %v", subject, err)
	}
}

func buildStageChangeHTML(app *models.Application, fromStage models.Stage, message string) string {
	return fmt.Sprintf(`<html><body>
<p>%s</p>
<table cellpadding="4">
<tr><td>Application</td><td>%s</td></tr>
<tr><td>Previous stage</td><td>%s</td></tr>
<tr><td>Current stage</td><td>%s</td></tr>
</table>
<p>Log in to the application portal for details.</p>
</body></html>`, message, app.ApplicationNumber, fromStage, app.CurrentStage)
}
