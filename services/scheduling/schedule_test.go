package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowbook/models"
)

func newScheduleService(schedules *fakeScheduleRepo, appointments *fakeAppointmentRepo) *DefaultScheduleService {
	return &DefaultScheduleService{
		Schedules:    schedules,
		Appointments: appointments,
		Now:          func() time.Time { return testClock },
	}
}

func TestGet_SeedsDefaultSchedule(t *testing.T) {
	svc := newScheduleService(newFakeScheduleRepo(), newFakeAppointmentRepo())

	s, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", s.ProviderID)
	assert.True(t, s.WindowFor(time.Monday).Enabled)
	assert.False(t, s.WindowFor(time.Sunday).Enabled)
	assert.Equal(t, models.TimeOfDay{Hour: 9}, s.WindowFor(time.Friday).Start)
	assert.Equal(t, models.TimeOfDay{Hour: 17}, s.WindowFor(time.Friday).End)
	assert.Equal(t, 15, s.Buffer.BeforeMinutes)
	assert.Equal(t, 15, s.Buffer.AfterMinutes)
}

func TestUpdateWorkHours(t *testing.T) {
	svc := newScheduleService(newFakeScheduleRepo(), newFakeAppointmentRepo())
	ctx := context.Background()

	seeded, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	hours := seeded.WorkHours
	hours[time.Saturday] = models.WorkWindow{
		Enabled: true,
		Start:   models.TimeOfDay{Hour: 10},
		End:     models.TimeOfDay{Hour: 14},
	}

	updated, err := svc.UpdateWorkHours(ctx, "p1", hours)
	require.NoError(t, err)
	assert.True(t, updated.WindowFor(time.Saturday).Enabled)
	assert.Greater(t, updated.Version, seeded.Version)
}

// A rejected mutation must leave the stored schedule untouched.
func TestUpdateWorkHours_InvalidMutationIsAtomic(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newScheduleService(schedules, newFakeAppointmentRepo())
	ctx := context.Background()

	before, err := svc.Get(ctx, "p1")
	require.NoError(t, err)

	hours := before.WorkHours
	hours[time.Monday].End = models.TimeOfDay{Hour: 8} // before the 9:00 start
	_, err = svc.UpdateWorkHours(ctx, "p1", hours)
	var validation ValidationError
	require.ErrorAs(t, err, &validation)

	after, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, models.TimeOfDay{Hour: 17}, after.WindowFor(time.Monday).End)
}

func TestUpdateBuffer(t *testing.T) {
	svc := newScheduleService(newFakeScheduleRepo(), newFakeAppointmentRepo())
	ctx := context.Background()

	updated, err := svc.UpdateBuffer(ctx, "p1", models.BufferPolicy{BeforeMinutes: 5, AfterMinutes: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Buffer.BeforeMinutes)
	assert.Equal(t, 10, updated.Buffer.AfterMinutes)

	_, err = svc.UpdateBuffer(ctx, "p1", models.BufferPolicy{BeforeMinutes: -1})
	var validation ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBreakCRUD(t *testing.T) {
	svc := newScheduleService(newFakeScheduleRepo(), newFakeAppointmentRepo())
	ctx := context.Background()

	br := models.Break{
		Name:  "Lunch",
		Days:  []time.Weekday{time.Monday, time.Tuesday},
		Start: models.TimeOfDay{Hour: 12},
		End:   models.TimeOfDay{Hour: 13},
	}
	s, err := svc.AddBreak(ctx, "p1", br)
	require.NoError(t, err)
	require.Len(t, s.Breaks, 1)
	assert.NotEmpty(t, s.Breaks[0].ID, "an id is assigned when none is given")

	stored := s.Breaks[0]
	stored.End = models.TimeOfDay{Hour: 13, Minute: 30}
	s, err = svc.UpdateBreak(ctx, "p1", stored)
	require.NoError(t, err)
	assert.Equal(t, models.TimeOfDay{Hour: 13, Minute: 30}, s.Breaks[0].End)

	_, err = svc.UpdateBreak(ctx, "p1", models.Break{ID: "missing", Name: "X",
		Days: []time.Weekday{time.Monday},
		Start: models.TimeOfDay{Hour: 9}, End: models.TimeOfDay{Hour: 10}})
	var validation ValidationError
	assert.ErrorAs(t, err, &validation)

	s, err = svc.DeleteBreak(ctx, "p1", stored.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Breaks)

	_, err = svc.DeleteBreak(ctx, "p1", stored.ID)
	assert.ErrorAs(t, err, &validation)
}

// A new break template must not be carved out of time a client already
// holds.
func TestAddBreak_RejectedOverBookedTime(t *testing.T) {
	schedules := newFakeScheduleRepo()
	appointments := newFakeAppointmentRepo()
	svc := newScheduleService(schedules, appointments)
	ctx := context.Background()

	lc := newLifecycle(schedules, appointments, testClock)
	_, err := lc.Propose(ctx, testProposeRequest()) // Tuesday [14:00, 15:00)
	require.NoError(t, err)

	_, err = svc.AddBreak(ctx, "p1", models.Break{
		Name:  "Afternoon errand",
		Days:  []time.Weekday{time.Tuesday},
		Start: models.TimeOfDay{Hour: 14, Minute: 30},
		End:   models.TimeOfDay{Hour: 15, Minute: 30},
	})
	var conflict ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reasons[0], testTuesday)

	// The same template on a different weekday is fine.
	s, err := svc.AddBreak(ctx, "p1", models.Break{
		Name:  "Afternoon errand",
		Days:  []time.Weekday{time.Wednesday},
		Start: models.TimeOfDay{Hour: 14, Minute: 30},
		End:   models.TimeOfDay{Hour: 15, Minute: 30},
	})
	require.NoError(t, err)
	assert.Len(t, s.Breaks, 1)
}

// The gate covers every future booked date, not just the near term: a
// booking placed months ahead still blocks a colliding break template.
func TestAddBreak_RejectedOverDistantBooking(t *testing.T) {
	schedules := newFakeScheduleRepo()
	appointments := newFakeAppointmentRepo()
	svc := newScheduleService(schedules, appointments)
	ctx := context.Background()

	lc := newLifecycle(schedules, appointments, testClock)
	req := testProposeRequest()
	req.Date = "2026-03-10" // a Tuesday, over two months past testClock
	_, err := lc.Propose(ctx, req)
	require.NoError(t, err)

	_, err = svc.AddBreak(ctx, "p1", models.Break{
		Name:  "Afternoon errand",
		Days:  []time.Weekday{time.Tuesday},
		Start: models.TimeOfDay{Hour: 14, Minute: 30},
		End:   models.TimeOfDay{Hour: 15, Minute: 30},
	})
	var conflict ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reasons[0], "2026-03-10")
}

// A break outside the work window never gates on anything and simply
// stays inert.
func TestAddBreak_OutsideWorkHoursIsAllowed(t *testing.T) {
	svc := newScheduleService(newFakeScheduleRepo(), newFakeAppointmentRepo())

	s, err := svc.AddBreak(context.Background(), "p1", models.Break{
		Name:  "Early gym",
		Days:  []time.Weekday{time.Monday},
		Start: models.TimeOfDay{Hour: 6},
		End:   models.TimeOfDay{Hour: 7},
	})
	require.NoError(t, err)
	assert.Len(t, s.Breaks, 1)
}

func TestAddBreak_DuplicateID(t *testing.T) {
	svc := newScheduleService(newFakeScheduleRepo(), newFakeAppointmentRepo())
	ctx := context.Background()

	br := models.Break{
		ID:    "b1",
		Name:  "Lunch",
		Days:  []time.Weekday{time.Monday},
		Start: models.TimeOfDay{Hour: 12},
		End:   models.TimeOfDay{Hour: 13},
	}
	_, err := svc.AddBreak(ctx, "p1", br)
	require.NoError(t, err)

	_, err = svc.AddBreak(ctx, "p1", br)
	var validation ValidationError
	assert.ErrorAs(t, err, &validation)
}
