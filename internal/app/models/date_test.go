package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-03-14"}`), &payload))
	assert.Equal(t, "2025-03-14", payload.Date.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-03-14"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"14/03/2025"}`), &payload))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 9, 1, 15, 30, 0, 0, time.FixedZone("x", 3600))))
	assert.Equal(t, "2025-09-01", d.String())

	require.NoError(t, d.Scan("2024-02-29"))
	assert.Equal(t, "2024-02-29", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestAcademicSession_Contains(t *testing.T) {
	start, _ := ParseDate("2025-09-01")
	end, _ := ParseDate("2025-12-31")
	s := &AcademicSession{StartDate: start, EndDate: end}

	assert.True(t, s.Contains(start))
	assert.True(t, s.Contains(end))
	inside, _ := ParseDate("2025-10-15")
	assert.True(t, s.Contains(inside))
	outside, _ := ParseDate("2026-01-01")
	assert.False(t, s.Contains(outside))
}

func TestAttendanceCounts_Total(t *testing.T) {
	c := AttendanceCounts{Present: 3, Absent: 1, Late: 2, Excused: 1}
	assert.EqualValues(t, 7, c.Total())
}
