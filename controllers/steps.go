package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"student-application-api/config"
	"student-application-api/middleware"
	"student-application-api/services"

	"github.com/gin-gonic/gin"
)

// GetStepCatalog lists the twelve sections in canonical order.
func GetStepCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sections": services.SectionOrder,
		"total":    len(services.SectionOrder),
	})
}

// UpdateStep saves one form section. The payload replaces the stored slot in
// full and the section is marked complete; saving twice with the same payload
// changes nothing.
func UpdateStep(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}
	sectionName := c.Param("name")

	// The step number in the path is redundant with the name; reject requests
	// where the two disagree rather than guessing which one the client meant.
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil || step < 1 || step > len(services.SectionOrder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step number"})
		return
	}
	if services.SectionOrder[step-1] != sectionName {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Step number does not match section name",
		})
		return
	}

	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be valid JSON"})
		return
	}

	user := middleware.CurrentUser(c)
	progress, err := services.UpdateSection(config.DB, id, sectionName, payload, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Section saved",
		"section":  sectionName,
		"progress": progress,
	})
}
