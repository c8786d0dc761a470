package controllers

import (
	"net/http"
	"strconv"

	"student-application-api/config"
	"student-application-api/middleware"
	"student-application-api/models"
	"student-application-api/services"

	"github.com/gin-gonic/gin"
)

// SubmitApplication moves a DRAFT application to SUBMITTED once every section
// is complete.
func SubmitApplication(c *gin.Context) {
	requestStage(c, models.StageSubmitted, "Application submitted")
}

// WithdrawApplication lets the student or agent pull out of a generated
// offer.
func WithdrawApplication(c *gin.Context) {
	requestStage(c, models.StageWithdrawn, "Application withdrawn")
}

// SignOffer records the student's acceptance of a generated offer.
func SignOffer(c *gin.Context) {
	requestStage(c, models.StageOfferAccepted, "Offer signed")
}

// requestStage handles the common body-and-transition shape of the
// self-service stage endpoints.
func requestStage(c *gin.Context, toStage models.Stage, successMessage string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	type stageRequest struct {
		Notes string `json:"notes"`
	}
	var req stageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	user := middleware.CurrentUser(c)
	app, err := services.RequestTransition(config.DB, id, services.TransitionInput{
		ToStage: toStage,
		Notes:   req.Notes,
	}, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     successMessage,
		"application": app,
	})
}
