package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"student-application-api/config"
	"student-application-api/models"
)

// Outbound queues consumed by external workers. The core only pushes
// messages; whether a worker ever picks them up does not affect the
// transaction that produced them.
const (
	queueOCRJobs      = "ocr:jobs"
	queueNotifyEvents = "notify:events"
)

var errQueueNotConfigured = errors.New("message queue not configured (REDIS_ADDR)")

// OCRJob is the payload handed to the external OCR worker.
type OCRJob struct {
	DocumentID     int    `json:"document_id"`
	ApplicationID  int    `json:"application_id"`
	StoredFilename string `json:"stored_filename"`
	MimeType       string `json:"mime_type"`
	QueuedAt       int64  `json:"queued_at"`
}

// StageEvent is the payload handed to the external notification worker.
type StageEvent struct {
	ApplicationID     int          `json:"application_id"`
	ApplicationNumber string       `json:"application_number"`
	FromStage         models.Stage `json:"from_stage"`
	ToStage           models.Stage `json:"to_stage"`
	ActorID           int          `json:"actor_id"`
	Notes             string       `json:"notes,omitempty"`
	OccurredAt        int64        `json:"occurred_at"`
}

// EnqueueOCRJob pushes an OCR request for an uploaded document. Returns an
// error when the queue is unreachable; callers record the degraded state
// instead of failing the upload.
func EnqueueOCRJob(doc models.Document) error {
	if config.Queue == nil {
		return errQueueNotConfigured
	}
	job := OCRJob{
		DocumentID:     doc.DocumentID,
		ApplicationID:  doc.ApplicationID,
		StoredFilename: doc.StoredFilename,
		MimeType:       doc.MimeType,
		QueuedAt:       time.Now().Unix(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return config.Queue.LPush(ctx, queueOCRJobs, payload).Err()
}

// EnqueueStageEvent pushes a stage-change event for the notification worker.
func EnqueueStageEvent(event StageEvent) error {
	if config.Queue == nil {
		return errQueueNotConfigured
	}
	event.OccurredAt = time.Now().Unix()
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return config.Queue.LPush(ctx, queueNotifyEvents, payload).Err()
}
