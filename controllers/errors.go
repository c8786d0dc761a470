package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-application-api/services"
)

// respondServiceError maps core errors onto HTTP responses. Anything
// unrecognized is a 500 with a generic message; the detail goes to the log
// via gorm/gin middleware, not to the client.
func respondServiceError(c *gin.Context, err error) {
	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": permErr.Reason})
		return
	}

	var transErr *services.TransitionError
	if errors.As(err, &transErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": transErr.Error(),
			"from":  transErr.From,
			"to":    transErr.To,
		})
		return
	}

	var lockedErr *services.LockedError
	if errors.As(err, &lockedErr) {
		c.JSON(http.StatusConflict, gin.H{"error": lockedErr.Error()})
		return
	}

	var gateErr *services.PreconditionError
	if errors.As(err, &gateErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   gateErr.Error(),
			"code":    gateErr.Code,
			"missing": gateErr.Missing,
		})
		return
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  validationErr.Error(),
			"fields": validationErr.Fields,
		})
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Reason})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
