package controllers

import (
	"net/http"

	"student-application-api/config"
	"student-application-api/models"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns per-stage application counts plus the document
// verification backlog. Read-only aggregation across applications; it carries
// no consistency guarantee beyond committed writes.
func GetDashboardStats(c *gin.Context) {
	type stageCount struct {
		CurrentStage models.Stage `json:"stage"`
		Total        int64        `json:"total"`
	}

	var counts []stageCount
	if err := config.DB.Model(&models.Application{}).
		Select("current_stage, COUNT(*) as total").
		Group("current_stage").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	byStage := make(map[models.Stage]int64, len(models.AllStages))
	for _, stage := range models.AllStages {
		byStage[stage] = 0
	}
	var total int64
	for _, row := range counts {
		byStage[row.CurrentStage] = row.Total
		total += row.Total
	}

	var pendingDocuments int64
	if err := config.DB.Model(&models.Document{}).
		Where("status = ?", models.DocStatusPending).
		Count(&pendingDocuments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications_by_stage": byStage,
		"total_applications":    total,
		"pending_documents":     pendingDocuments,
	})
}

// GetCourseOfferings lists the active course catalog.
func GetCourseOfferings(c *gin.Context) {
	var offerings []models.CourseOffering
	if err := config.DB.Where("is_active = ? AND delete_at IS NULL", true).
		Order("course_code ASC").Find(&offerings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course offerings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course_offerings": offerings,
		"total":            len(offerings),
	})
}
