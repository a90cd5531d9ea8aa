package records

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequiresNote(t *testing.T) {
	cases := map[Status]bool{
		StatusPending:       false,
		StatusApproved:      false,
		StatusFlagged:       true,
		StatusNeedsRevision: true,
	}
	for status, want := range cases {
		require.Equal(t, want, RequiresNote(status), status)
	}
}

func TestStatusesAreValidAndOrdered(t *testing.T) {
	statuses := Statuses()
	require.Equal(t, []Status{StatusPending, StatusApproved, StatusFlagged, StatusNeedsRevision}, statuses)
	for _, s := range statuses {
		require.True(t, s.Valid())
	}
	require.False(t, Status("archived").Valid())
	require.NotContains(t, ReviewStatuses(), StatusPending)
	require.Equal(t, "pending approved flagged needs_revision", StatusOneOf)
}

func TestStatusesReturnsCopy(t *testing.T) {
	statuses := Statuses()
	statuses[0] = "mutated"
	require.Equal(t, StatusPending, Statuses()[0])
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Needs_Revision ")
	require.NoError(t, err)
	require.Equal(t, StatusNeedsRevision, s)

	_, err = ParseStatus("done")
	require.Error(t, err)
}

func TestLabel(t *testing.T) {
	require.Equal(t, "Needs Revision", StatusNeedsRevision.Label())
	require.Equal(t, "Pending", StatusPending.Label())
}
