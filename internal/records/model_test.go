package records

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPatchApplyMergesPresentFields(t *testing.T) {
	rec := Record{ID: "1", Name: "Specimen A", Status: StatusPending, Note: "old"}

	onlyStatus := NewPatch("1").WithStatus(StatusApproved).Apply(rec)
	require.Equal(t, StatusApproved, onlyStatus.Status)
	require.Equal(t, "old", onlyStatus.Note)

	onlyNote := NewPatch("1").WithNote("").Apply(rec)
	require.Equal(t, StatusPending, onlyNote.Status)
	require.Empty(t, onlyNote.Note)
}

func TestPatchJSONOmitsAbsentFields(t *testing.T) {
	raw, err := json.Marshal(NewPatch("7").WithNote("checked"))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"7","note":"checked"}`, string(raw))
	require.True(t, NewPatch("7").Empty())
}

func TestNewHistoryEntry(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, ok := NewHistoryEntry("1", StatusApproved, StatusApproved, "note only", at)
	require.False(t, ok)

	entry, ok := NewHistoryEntry("1", StatusPending, StatusApproved, "Reviewed and approved.", at)
	require.True(t, ok)
	require.Equal(t, "1", entry.RecordID)
	require.Equal(t, StatusPending, entry.PreviousStatus)
	require.Equal(t, StatusApproved, entry.NewStatus)
	require.Equal(t, "Reviewed and approved.", entry.Note)
	require.Equal(t, at, entry.Timestamp)
	require.NotEqual(t, [16]byte{}, [16]byte(entry.ID))
}
