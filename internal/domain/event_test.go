package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventNormalize(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	in := NewEvent{
		Name:     "  Summer Festival ",
		Date:     time.Date(2025, 1, 20, 21, 30, 0, 987654321, loc),
		Location: " Main stage ",
	}

	require.NoError(t, in.Normalize())
	assert.Equal(t, "Summer Festival", in.Name)
	assert.Equal(t, "Main stage", in.Location)
	assert.Equal(t, StatusPlanning, in.Status)
	assert.Equal(t, time.UTC, in.Date.Location())
	assert.Equal(t, 987000000, in.Date.Nanosecond())
	assert.True(t, in.Date.Equal(time.Date(2025, 1, 21, 0, 30, 0, 987000000, time.UTC)))
}

func TestNewEventNormalize_Rejects(t *testing.T) {
	date := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	for name, in := range map[string]NewEvent{
		"missing name":   {Name: " ", Date: date},
		"missing date":   {Name: "Gala"},
		"unknown status": {Name: "Gala", Date: date, Status: "postponed"},
	} {
		t.Run(name, func(t *testing.T) {
			err := in.Normalize()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestEventStatusValid(t *testing.T) {
	for _, s := range []EventStatus{StatusPlanning, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, EventStatus("").Valid())
	assert.False(t, EventStatus("Planning").Valid())
}
