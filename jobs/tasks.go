package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/reviewdesk/reviewdesk/internal/jobs"
	"github.com/reviewdesk/reviewdesk/internal/records"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecordTransition carries one accepted status change to the audit sink.
	TaskRecordTransition = "records:transition"
)

// TransitionPayload is the wire form of a status transition.
type TransitionPayload struct {
	EntryID        string    `json:"entry_id"`
	RecordID       string    `json:"record_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewTransitionTask constructs an Asynq task for entry. The entry id doubles as
// the task id so a retried publish cannot enqueue the same transition twice.
func NewTransitionTask(entry records.HistoryEntry) (*asynq.Task, error) {
	data, err := json.Marshal(TransitionPayload{
		EntryID:        entry.ID.String(),
		RecordID:       entry.RecordID,
		PreviousStatus: string(entry.PreviousStatus),
		NewStatus:      string(entry.NewStatus),
		Note:           entry.Note,
		OccurredAt:     entry.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordTransition, data, asynq.TaskID(entry.ID.String()), asynq.MaxRetry(5)), nil
}

// DecodeTransition parses a transition task back into a history entry.
func DecodeTransition(t *asynq.Task) (records.HistoryEntry, error) {
	var payload TransitionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return records.HistoryEntry{}, fmt.Errorf("decode transition payload: %w", err)
	}
	id, err := uuid.Parse(payload.EntryID)
	if err != nil {
		return records.HistoryEntry{}, fmt.Errorf("decode transition payload: entry id: %w", err)
	}
	if payload.RecordID == "" {
		return records.HistoryEntry{}, errors.New("decode transition payload: record id missing")
	}
	return records.HistoryEntry{
		ID:             id,
		RecordID:       payload.RecordID,
		PreviousStatus: records.Status(payload.PreviousStatus),
		NewStatus:      records.Status(payload.NewStatus),
		Note:           payload.Note,
		Timestamp:      payload.OccurredAt,
	}, nil
}

// AuditSink stores transitions durably.
type AuditSink interface {
	RecordTransition(ctx context.Context, entry records.HistoryEntry) error
}

// TransitionHandler writes transition tasks to an AuditSink.
type TransitionHandler struct {
	Sink    AuditSink
	Metrics *jobmetrics.Metrics
}

// ProcessTask implements asynq.Handler. Malformed payloads are not retried.
func (h TransitionHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	tracker := h.Metrics.Track(TaskRecordTransition)
	entry, err := DecodeTransition(t)
	if err != nil {
		_ = tracker.End(err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if h.Sink == nil {
		return tracker.End(errors.New("transition handler: audit sink not configured"))
	}
	if err := h.Sink.RecordTransition(ctx, entry); err != nil {
		return tracker.End(fmt.Errorf("record transition %s: %w", entry.ID, err))
	}
	h.Metrics.AddAudited(string(entry.NewStatus))
	return tracker.End(nil)
}
