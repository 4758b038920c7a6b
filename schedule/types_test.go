package schedule_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/schedule"
)

func TestStatus_ParseRoundTrip(t *testing.T) {
	for _, st := range schedule.Statuses() {
		parsed, err := schedule.ParseStatus(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}

	none, err := schedule.ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusNone, none)

	_, err = schedule.ParseStatus("holiday")
	assert.ErrorIs(t, err, schedule.ErrUnknownStatus)
}

func TestShift_JSON(t *testing.T) {
	var s schedule.Shift
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","employee_id":"e1","day":1,"status":"CP"}`), &s))
	assert.Equal(t, schedule.StatusPaidLeave, s.Status)
	assert.False(t, s.IsWorking())
	assert.Equal(t, 0, s.Minutes())

	err := json.Unmarshal([]byte(`{"id":"s1","status":"vacation"}`), &s)
	assert.ErrorIs(t, err, schedule.ErrUnknownStatus)
}

func TestShift_IsWorking(t *testing.T) {
	assert.True(t, work("w", 0, "09:00", "17:00").IsWorking())
	assert.False(t, work("w", 0, "09:00", "").IsWorking())
	assert.False(t, mark("m", 0, schedule.StatusWeeklyRest).IsWorking())
	assert.Equal(t, 270, work("w", 0, "10:00", "14:30").Minutes())
}

func TestByDay_DropsInvalidDays(t *testing.T) {
	days := schedule.ByDay([]schedule.Shift{
		work("a", 0, "09:00", "12:00"),
		work("b", 9, "09:00", "12:00"),
		work("c", 0, "14:00", "18:00"),
	})
	assert.Len(t, days[0], 2)
	for d := 1; d < 7; d++ {
		assert.Empty(t, days[d])
	}
}
