package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendify/internal/events"
)

func TestName(t *testing.T) {
	assert.Equal(t, "client_create", events.Name(events.KindClient, events.OpCreate))
	assert.Equal(t, "client_visit_create", events.Name(events.KindClientVisit, events.OpCreate))
	assert.Equal(t, "employee_update", events.Name(events.KindEmployee, events.OpUpdate))
	assert.Equal(t, "employee_attendance_delete", events.Name(events.KindEmployeeAttendance, events.OpDelete))
}

func TestNewSetsPartitionKey(t *testing.T) {
	env := events.New(events.KindClient, events.OpUpdate, "abc-123", map[string]any{"id": "abc-123"})

	assert.Equal(t, "client_update", env.Event)
	assert.Equal(t, "client:abc-123", env.Key)
}

func TestMarshalWireShape(t *testing.T) {
	env := events.New(events.KindEmployee, events.OpDelete, "e1", map[string]any{"id": "e1"})

	data, ok := env.Marshal()
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Exactly event + data; the partition key never reaches the wire.
	assert.Len(t, decoded, 2)
	assert.Equal(t, "employee_delete", decoded["event"])
	assert.Equal(t, map[string]any{"id": "e1"}, decoded["data"])
}

func TestMarshalDeterministic(t *testing.T) {
	env := events.New(events.KindClient, events.OpCreate, "c1", map[string]any{
		"id":          "c1",
		"visit_count": 1,
		"gender":      "female",
	})

	first, ok := env.Marshal()
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		again, ok := env.Marshal()
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	orig := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)

	parsed, err := events.ParseTime(events.FormatTime(orig))
	require.NoError(t, err)
	assert.True(t, orig.Equal(parsed))
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := events.ParseTime("14/03/2025 09:26")
	assert.Error(t, err)
}
