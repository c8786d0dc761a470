package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"student-application-api/config"
	"student-application-api/middleware"
	"student-application-api/models"
	"student-application-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransitionApplication moves an application to an arbitrary legal target
// stage. The stage machine enforces the transition table and gates; this
// handler only shapes the request.
func TransitionApplication(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type transitionRequest struct {
		ToStage string `json:"to_stage" binding:"required"`
		Notes   string `json:"notes"`
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	app, err := services.RequestTransition(config.DB, id, services.TransitionInput{
		ToStage: models.Stage(strings.ToUpper(req.ToStage)),
		Notes:   req.Notes,
	}, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application moved to " + string(app.CurrentStage),
		"application": app,
	})
}

// AssignApplication sets the responsible staff member. Assignment is
// informational: it does not restrict what other staff can do.
func AssignApplication(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type assignRequest struct {
		StaffID int `json:"staff_id" binding:"required"`
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)

	var staff models.User
	if err := config.DB.Where("user_id = ? AND role_id IN ? AND delete_at IS NULL",
		req.StaffID, []int{models.RoleStaff, models.RoleAdmin}).First(&staff).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff member"})
		return
	}

	var app models.Application
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("application_id = ?", id).First(&app).Error; err != nil {
			return &services.NotFoundError{Entity: "application"}
		}
		if allowed, reason := services.CanPerform(user.RoleID, user.UserID, &app, services.ActionAssign); !allowed {
			return &services.PermissionError{Reason: reason}
		}

		now := time.Now()
		app.AssignedStaffID = &req.StaffID
		app.UpdateAt = &now
		if err := tx.Save(&app).Error; err != nil {
			return err
		}
		return services.Append(tx, app.ApplicationID, user.UserID, models.TimelineCommentAdded,
			user.FullName()+" assigned application to "+staff.FullName(), nil)
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application assigned to " + staff.FullName(),
		"application": app,
	})
}

// RequestDocuments moves the application to AWAITING_DOCUMENTS with a note
// naming what is needed.
func RequestDocuments(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type requestDocumentsRequest struct {
		Notes string `json:"notes" binding:"required"`
	}
	var req requestDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	app, err := services.RequestTransition(config.DB, id, services.TransitionInput{
		ToStage: models.StageAwaitingDocuments,
		Notes:   req.Notes,
	}, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Documents requested",
		"application": app,
	})
}

// ApproveApplication generates an offer. Blocked until every mandatory
// document type has a verified active version.
func ApproveApplication(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type approveRequest struct {
		Notes        string          `json:"notes"`
		OfferDetails json.RawMessage `json:"offer_details" binding:"required"`
	}
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	app, err := services.RequestTransition(config.DB, id, services.TransitionInput{
		ToStage:      models.StageOfferGenerated,
		Notes:        req.Notes,
		OfferDetails: req.OfferDetails,
	}, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Offer generated",
		"application": app,
	})
}

// RejectApplication moves the application to the terminal REJECTED stage.
func RejectApplication(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type rejectRequest struct {
		Notes string `json:"notes" binding:"required"`
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	app, err := services.RequestTransition(config.DB, id, services.TransitionInput{
		ToStage: models.StageRejected,
		Notes:   req.Notes,
	}, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application rejected",
		"application": app,
	})
}

// RecordGSAssessment stores a genuine-student interview outcome and applies
// the resulting stage change.
func RecordGSAssessment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type gsRequest struct {
		Outcome string `json:"outcome" binding:"required"`
		Notes   string `json:"notes"`
	}
	var req gsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	app, err := services.RecordGSAssessment(config.DB, id, strings.ToLower(req.Outcome), req.Notes, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "GS assessment recorded",
		"application": app,
	})
}

// EnrollApplication completes the workflow for an accepted offer.
func EnrollApplication(c *gin.Context) {
	requestStage(c, models.StageEnrolled, "Student enrolled")
}

// AddComment appends a COMMENT_ADDED timeline entry without touching the
// application itself.
func AddComment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type commentRequest struct {
		Message string `json:"message" binding:"required"`
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)

	var app models.Application
	if err := config.DB.Where("application_id = ?", id).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if err := services.Append(config.DB, app.ApplicationID, user.UserID,
		models.TimelineCommentAdded, user.FullName()+": "+req.Message, nil); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Comment added"})
}
