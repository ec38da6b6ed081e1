package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowbook/models"
)

func TestCheckAgainst_HalfOpenRule(t *testing.T) {
	blocked := []models.BlockedInterval{{
		Date: testMonday, Start: mins(10, 0), End: mins(11, 0),
		Kind: models.BlockBooked, Reason: "Conflicts with an existing appointment",
	}}

	tests := []struct {
		name       string
		start, end int
		conflict   bool
	}{
		{"fully inside", mins(10, 15), mins(10, 45), true},
		{"straddles start", mins(9, 30), mins(10, 30), true},
		{"straddles end", mins(10, 30), mins(11, 30), true},
		{"covers whole block", mins(9, 0), mins(12, 0), true},
		{"touches end exactly", mins(11, 0), mins(11, 30), false},
		{"touches start exactly", mins(9, 0), mins(10, 0), false},
		{"well before", mins(8, 0), mins(9, 0), false},
		{"well after", mins(12, 0), mins(13, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckAgainst(blocked, tc.start, tc.end)
			assert.Equal(t, tc.conflict, got.HasConflict)
			if tc.conflict {
				assert.NotEmpty(t, got.Reasons)
			} else {
				assert.Empty(t, got.Reasons)
			}
		})
	}
}

// A slot immediately following a booking that ends at the same minute,
// with zero buffer, must not be flagged.
func TestCheckAgainst_TouchingIsNotConflicting(t *testing.T) {
	s := testSchedule("p1")
	s.Buffer = models.BufferPolicy{}
	appt := models.Appointment{
		ID: "a1", ProviderID: "p1", ClientID: "c1", Date: testMonday,
		Start:    models.TimeOfDay{Hour: 10},
		Duration: models.Duration{Hours: 1},
		Status:   models.StatusConfirmed,
	}
	blocked := DeriveBlocked(s, []models.Appointment{appt}, testMonday, time.Monday)

	got := CheckAgainst(blocked, mins(11, 0), mins(11, 30))
	assert.False(t, got.HasConflict)
}

// Break Monday 12:00-13:00; a 12:30-13:00 proposal must conflict with a
// break-specific reason.
func TestConflictDetector_BreakConflict(t *testing.T) {
	schedules := newFakeScheduleRepo()
	appointments := newFakeAppointmentRepo()
	ctx := context.Background()

	s, err := schedules.GetOrCreate(ctx, "p1")
	require.NoError(t, err)
	s.Breaks = []models.Break{{
		ID: "b1", Name: "Lunch",
		Days:  []time.Weekday{time.Monday},
		Start: models.TimeOfDay{Hour: 12},
		End:   models.TimeOfDay{Hour: 13},
	}}
	require.NoError(t, schedules.Replace(ctx, s))

	detector := &DefaultConflictDetector{Occupancy: &DefaultOccupancyIndex{
		Schedules: schedules, Appointments: appointments,
	}}

	verdict, err := detector.Check(ctx, "p1", testMonday, mins(12, 30), mins(13, 0))
	require.NoError(t, err)
	assert.True(t, verdict.HasConflict)

	found := false
	for _, r := range verdict.Reasons {
		if r == "Conflicts with break: Lunch" {
			found = true
		}
	}
	assert.True(t, found, "reasons %v must name the break", verdict.Reasons)
}

func TestConflictDetector_OutsideBusinessHours(t *testing.T) {
	schedules := newFakeScheduleRepo()
	appointments := newFakeAppointmentRepo()
	ctx := context.Background()
	_, err := schedules.GetOrCreate(ctx, "p1")
	require.NoError(t, err)

	detector := &DefaultConflictDetector{Occupancy: &DefaultOccupancyIndex{
		Schedules: schedules, Appointments: appointments,
	}}

	verdict, err := detector.Check(ctx, "p1", testMonday, mins(7, 0), mins(8, 0))
	require.NoError(t, err)
	assert.True(t, verdict.HasConflict)
	assert.Contains(t, verdict.Reasons, "Outside business hours")
}

func TestConflictDetector_InvalidRange(t *testing.T) {
	detector := &DefaultConflictDetector{Occupancy: &DefaultOccupancyIndex{
		Schedules: newFakeScheduleRepo(), Appointments: newFakeAppointmentRepo(),
	}}

	_, err := detector.Check(context.Background(), "p1", testMonday, mins(13, 0), mins(12, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestConflictDetector_UnknownProvider(t *testing.T) {
	detector := &DefaultConflictDetector{Occupancy: &DefaultOccupancyIndex{
		Schedules: newFakeScheduleRepo(), Appointments: newFakeAppointmentRepo(),
	}}

	_, err := detector.Check(context.Background(), "ghost", testMonday, mins(10, 0), mins(11, 0))
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
