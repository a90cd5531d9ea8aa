package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/reviewdesk/reviewdesk/internal/jobs"
	"github.com/reviewdesk/reviewdesk/internal/records"
)

type memorySink struct {
	entries []records.HistoryEntry
	err     error
}

func (s *memorySink) RecordTransition(ctx context.Context, entry records.HistoryEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func sampleEntry() records.HistoryEntry {
	return records.HistoryEntry{
		ID:             uuid.MustParse("5f0c7d2e-8f2a-4a55-9d61-0f6b3c1d2e4f"),
		RecordID:       "1",
		PreviousStatus: records.StatusPending,
		NewStatus:      records.StatusApproved,
		Note:           "Reviewed and approved.",
		Timestamp:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransitionTaskRoundTrip(t *testing.T) {
	task, err := NewTransitionTask(sampleEntry())
	require.NoError(t, err)
	require.Equal(t, TaskRecordTransition, task.Type())

	entry, err := DecodeTransition(task)
	require.NoError(t, err)
	require.Equal(t, sampleEntry(), entry)
}

func TestTransitionHandlerWritesToSink(t *testing.T) {
	sink := &memorySink{}
	handler := TransitionHandler{Sink: sink, Metrics: jobmetrics.NewMetrics(prometheus.NewRegistry())}
	task, err := NewTransitionTask(sampleEntry())
	require.NoError(t, err)

	require.NoError(t, handler.ProcessTask(context.Background(), task))
	require.Len(t, sink.entries, 1)
	require.Equal(t, "1", sink.entries[0].RecordID)
}

func TestTransitionHandlerSkipsRetryOnBadPayload(t *testing.T) {
	handler := TransitionHandler{Sink: &memorySink{}}
	err := handler.ProcessTask(context.Background(), asynq.NewTask(TaskRecordTransition, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestTransitionHandlerPropagatesSinkFailure(t *testing.T) {
	handler := TransitionHandler{Sink: &memorySink{err: errors.New("db down")}}
	task, err := NewTransitionTask(sampleEntry())
	require.NoError(t, err)

	err = handler.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestNewWorkerRequiresSink(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	require.Error(t, err)
}
