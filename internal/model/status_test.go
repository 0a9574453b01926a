package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentTransitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{AppointmentStatusScheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusScheduled, AppointmentStatusRescheduled, true},
		{AppointmentStatusScheduled, AppointmentStatusCompleted, false},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusInProgress, AppointmentStatusCancelled, true},
		{AppointmentStatusRescheduled, AppointmentStatusCompleted, true},
		{AppointmentStatusCompleted, AppointmentStatusScheduled, false},
		{AppointmentStatusCancelled, AppointmentStatusScheduled, false},
		{AppointmentStatusConfirmed, AppointmentStatusConfirmed, true},
		{AppointmentStatus("bogus"), AppointmentStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := tt.from.TransitionTo(tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var terr *TransitionError
			assert.ErrorAs(t, err, &terr)
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.False(t, AppointmentStatusScheduled.Terminal())
	assert.True(t, HomeVisitStatusCancelled.Terminal())
	assert.False(t, HomeVisitStatusInProgress.Terminal())
}

func TestHomeVisitTransitions(t *testing.T) {
	assert.NoError(t, HomeVisitStatusScheduled.TransitionTo(HomeVisitStatusInProgress))
	assert.NoError(t, HomeVisitStatusInProgress.TransitionTo(HomeVisitStatusCompleted))
	assert.Error(t, HomeVisitStatusCompleted.TransitionTo(HomeVisitStatusInProgress))
	assert.Error(t, HomeVisitStatusInProgress.TransitionTo(HomeVisitStatusScheduled))
}

func TestEmergencyTimestampsAreSetOnce(t *testing.T) {
	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	e := &Emergency{Status: EmergencyStatusReported}
	require.NoError(t, e.ApplyStatus(EmergencyStatusAcknowledged, first))
	require.NoError(t, e.ApplyStatus(EmergencyStatusAcknowledged, later))

	require.NotNil(t, e.AcknowledgedAt)
	assert.Equal(t, first, *e.AcknowledgedAt)
	assert.Nil(t, e.ResolvedAt)

	require.NoError(t, e.ApplyStatus(EmergencyStatusResolved, later))
	require.NoError(t, e.ApplyStatus(EmergencyStatusResolved, later.Add(time.Hour)))
	assert.Equal(t, later, *e.ResolvedAt)
	assert.Equal(t, first, *e.AcknowledgedAt)

	assert.Error(t, e.ApplyStatus(EmergencyStatusReported, later))
}

func TestPrescriptionCourse(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var p Prescription
	p.SetCourse(start, 10)
	assert.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), p.EndDate)

	p.SetCourse(p.StartDate, 20)
	assert.Equal(t, start, p.StartDate)
	assert.Equal(t, time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC), p.EndDate)
}

func TestAgeOn(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 18, AgeOn(today.AddDate(-18, 0, 0), today))
	assert.Equal(t, 17, AgeOn(today.AddDate(-18, 0, 1), today))
	assert.Equal(t, 40, AgeOn(time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC), today))
}

func TestScheduleKeepsEndInStep(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	var a Appointment
	a.Schedule(start, 45)
	assert.Equal(t, start.Add(45*time.Minute), a.EndsAt)

	var v HomeVisit
	v.Schedule(start, 90)
	assert.Equal(t, start.Add(90*time.Minute), v.EndsAt)
}
