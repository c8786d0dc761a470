package controllers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"student-application-api/config"
	"student-application-api/middleware"
	"student-application-api/models"
	"student-application-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20 // 10 MB

func uploadPath() string {
	if path := os.Getenv("UPLOAD_PATH"); path != "" {
		return path
	}
	return "./uploads"
}

// UploadDocument stores a file and records a new document version. OCR for
// eligible types is queued in the background; the response never waits on it.
func UploadDocument(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	documentTypeID, err := strconv.Atoi(c.PostForm("document_type_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_type_id is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 10 MB limit"})
		return
	}

	mimeType := file.Header.Get("Content-Type")
	check := models.Document{MimeType: mimeType}
	if !check.HasValidMimeType() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF, JPEG and PNG files are accepted"})
		return
	}

	storedFilename := uuid.NewString() + filepath.Ext(file.Filename)
	storedPath := filepath.Join(uploadPath(), storedFilename)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	user := middleware.CurrentUser(c)
	doc, err := services.RecordUpload(config.DB, applicationID, documentTypeID, services.UploadMeta{
		OriginalFilename: file.Filename,
		StoredFilename:   storedFilename,
		FileSize:         file.Size,
		MimeType:         mimeType,
	}, user)
	if err != nil {
		os.Remove(storedPath)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded",
		"document": doc,
	})
}

// GetDocuments lists an application's documents, newest version first, and
// reports the verification gate state.
func GetDocuments(c *gin.Context) {
	app, ok := loadVisibleApplication(c)
	if !ok {
		return
	}

	var documents []models.Document
	if err := config.DB.Preload("DocumentType").Preload("Uploader").
		Where("application_id = ?", app.ApplicationID).
		Order("document_type_id ASC, version_number DESC").
		Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	verified, missing, err := services.AllMandatoryVerified(config.DB, app.ApplicationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute verification state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":              documents,
		"total":                  len(documents),
		"all_mandatory_verified": verified,
		"missing_document_types": missing,
	})
}

// DownloadDocument streams a stored file after the usual visibility check.
func DownloadDocument(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("document_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document id"})
		return
	}

	var doc models.Document
	if err := config.DB.Where("document_id = ?", documentID).First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	user := middleware.CurrentUser(c)
	var app models.Application
	query := config.DB.Where("application_id = ?", doc.ApplicationID)
	switch user.RoleID {
	case models.RoleAgent:
		query = query.Where("agent_id = ?", user.UserID)
	case models.RoleStudent:
		query = query.Where("student_id = ?", user.UserID)
	}
	if err := query.First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	storedPath := filepath.Join(uploadPath(), doc.StoredFilename)
	if _, err := os.Stat(storedPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stored file missing"})
		return
	}

	c.FileAttachment(storedPath, doc.OriginalFilename)
}

// GetDocumentTypes returns the static catalog.
func GetDocumentTypes(c *gin.Context) {
	types, err := services.DocumentTypes(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document types"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document_types": types,
		"total":          len(types),
	})
}

// VerifyDocument records a staff decision on a pending document.
func VerifyDocument(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("document_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document id"})
		return
	}

	type verifyRequest struct {
		Decision string `json:"decision" binding:"required"`
		Notes    string `json:"notes"`
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	doc, err := services.Verify(config.DB, documentID, req.Decision, req.Notes, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document " + doc.Status,
		"document": doc,
	})
}

// RecordOCRResult is called by the external OCR worker with the outcome of a
// queued job. A failed run degrades the document's OCR state only.
func RecordOCRResult(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("document_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document id"})
		return
	}

	type ocrResultRequest struct {
		Status  string          `json:"status" binding:"required"`
		Extract json.RawMessage `json:"extract"`
	}
	var req ocrResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.RecordOCRResult(config.DB, documentID, req.Status, req.Extract); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OCR result recorded"})
}
