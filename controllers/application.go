package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"student-application-api/config"
	"student-application-api/middleware"
	"student-application-api/models"
	"student-application-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetApplications returns the list of applications visible to the actor:
// agents see the applications they manage, students their own, staff and
// admin everything.
func GetApplications(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var applications []models.Application
	query := config.DB.Preload("Student").Preload("Agent").Preload("CourseOffering").
		Preload("AssignedStaff")

	switch user.RoleID {
	case models.RoleAgent:
		query = query.Where("agent_id = ?", user.UserID)
	case models.RoleStudent:
		query = query.Where("student_id = ?", user.UserID)
	}

	if stage := c.Query("stage"); stage != "" {
		query = query.Where("current_stage = ?", strings.ToUpper(stage))
	}
	if assigned := c.Query("assigned_staff_id"); assigned != "" {
		query = query.Where("assigned_staff_id = ?", assigned)
	}

	if err := query.Order("application_id DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

// GetApplication returns a single application with sections, documents and
// completion summary.
func GetApplication(c *gin.Context) {
	app, ok := loadVisibleApplication(c)
	if !ok {
		return
	}

	var sections []models.ApplicationSection
	if err := config.DB.Where("application_id = ?", app.ApplicationID).Find(&sections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sections"})
		return
	}
	progress := services.Progress(sections)

	c.JSON(http.StatusOK, gin.H{
		"application": app,
		"sections":    sections,
		"progress":    progress,
		"next_stages": services.AllowedTransitions(app.CurrentStage),
	})
}

// CreateApplication opens a new DRAFT application for a student. Agents
// create applications for students they represent; staff and admin can create
// on behalf of any student.
func CreateApplication(c *gin.Context) {
	type CreateApplicationRequest struct {
		StudentID        int `json:"student_id" binding:"required"`
		CourseOfferingID int `json:"course_offering_id" binding:"required"`
	}

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	if allowed, reason := services.CanPerform(user.RoleID, user.UserID, nil, services.ActionCreate); !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": reason})
		return
	}

	var student models.User
	if err := config.DB.Where("user_id = ? AND role_id = ? AND delete_at IS NULL",
		req.StudentID, models.RoleStudent).First(&student).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student"})
		return
	}

	var offering models.CourseOffering
	if err := config.DB.Where("course_offering_id = ? AND is_active = ? AND delete_at IS NULL",
		req.CourseOfferingID, true).First(&offering).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course offering"})
		return
	}

	now := time.Now()
	application := models.Application{
		ApplicationNumber: generateApplicationNumber(),
		StudentID:         req.StudentID,
		CourseOfferingID:  req.CourseOfferingID,
		CurrentStage:      models.StageDraft,
		CreateAt:          &now,
		UpdateAt:          &now,
	}
	// Staff-created applications carry no agent reference.
	if user.RoleID == models.RoleAgent {
		application.AgentID = &user.UserID
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			return err
		}
		return services.Append(tx, application.ApplicationID, user.UserID,
			models.TimelineApplicationCreated,
			user.FullName()+" created application "+application.ApplicationNumber, nil)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	config.DB.Preload("Student").Preload("Agent").Preload("CourseOffering").
		First(&application, application.ApplicationID)

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application created successfully",
		"application": application,
	})
}

// GetTimeline returns the application's audit entries in insertion order.
func GetTimeline(c *gin.Context) {
	app, ok := loadVisibleApplication(c)
	if !ok {
		return
	}

	entries, err := services.Timeline(config.DB, app.ApplicationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch timeline"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timeline": entries,
		"total":    len(entries),
	})
}

// loadVisibleApplication resolves :id and enforces read scoping. Writes the
// error response itself when it returns ok=false.
func loadVisibleApplication(c *gin.Context) (*models.Application, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return nil, false
	}

	user := middleware.CurrentUser(c)

	var app models.Application
	query := config.DB.Preload("Student").Preload("Agent").Preload("CourseOffering").
		Preload("AssignedStaff").
		Where("application_id = ?", id)

	switch user.RoleID {
	case models.RoleAgent:
		query = query.Where("agent_id = ?", user.UserID)
	case models.RoleStudent:
		query = query.Where("student_id = ?", user.UserID)
	}

	if err := query.First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return nil, false
	}
	return &app, true
}

// generateApplicationNumber builds a short, unique, human-quotable reference.
func generateApplicationNumber() string {
	return "APP-" + time.Now().Format("2006") + "-" +
		strings.ToUpper(uuid.NewString()[:8])
}
