package model

import "fmt"

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusInProgress  AppointmentStatus = "in_progress"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

type HomeVisitStatus string

const (
	HomeVisitStatusScheduled  HomeVisitStatus = "scheduled"
	HomeVisitStatusInProgress HomeVisitStatus = "in_progress"
	HomeVisitStatusCompleted  HomeVisitStatus = "completed"
	HomeVisitStatusCancelled  HomeVisitStatus = "cancelled"
)

type EmergencyStatus string

const (
	EmergencyStatusReported     EmergencyStatus = "reported"
	EmergencyStatusAcknowledged EmergencyStatus = "acknowledged"
	EmergencyStatusInProgress   EmergencyStatus = "in_progress"
	EmergencyStatusResolved     EmergencyStatus = "resolved"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {
		AppointmentStatusConfirmed,
		AppointmentStatusInProgress,
		AppointmentStatusCancelled,
		AppointmentStatusRescheduled,
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusInProgress,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusRescheduled,
	},
	AppointmentStatusRescheduled: {
		AppointmentStatusConfirmed,
		AppointmentStatusInProgress,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	},
	AppointmentStatusInProgress: {
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	},
	AppointmentStatusCompleted: nil,
	AppointmentStatusCancelled: nil,
}

var homeVisitTransitions = map[HomeVisitStatus][]HomeVisitStatus{
	HomeVisitStatusScheduled: {
		HomeVisitStatusInProgress,
		HomeVisitStatusCompleted,
		HomeVisitStatusCancelled,
	},
	HomeVisitStatusInProgress: {
		HomeVisitStatusCompleted,
		HomeVisitStatusCancelled,
	},
	HomeVisitStatusCompleted: nil,
	HomeVisitStatusCancelled: nil,
}

var emergencyTransitions = map[EmergencyStatus][]EmergencyStatus{
	EmergencyStatusReported: {
		EmergencyStatusAcknowledged,
		EmergencyStatusInProgress,
		EmergencyStatusResolved,
	},
	EmergencyStatusAcknowledged: {
		EmergencyStatusInProgress,
		EmergencyStatusResolved,
	},
	EmergencyStatusInProgress: {
		EmergencyStatusResolved,
	},
	EmergencyStatusResolved: nil,
}

// TransitionError reports a status change outside the transition table.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

func checkTransition[S ~string](table map[S][]S, from, to S) error {
	if from == to {
		if _, known := table[from]; known {
			return nil
		}
	}
	for _, next := range table[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{From: string(from), To: string(to)}
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && len(appointmentTransitions[s]) == 0
}

// TransitionTo validates a change from s to next. Re-applying the current
// status is allowed.
func (s AppointmentStatus) TransitionTo(next AppointmentStatus) error {
	return checkTransition(appointmentTransitions, s, next)
}

func (s HomeVisitStatus) Valid() bool {
	_, ok := homeVisitTransitions[s]
	return ok
}

func (s HomeVisitStatus) Terminal() bool {
	return s.Valid() && len(homeVisitTransitions[s]) == 0
}

func (s HomeVisitStatus) TransitionTo(next HomeVisitStatus) error {
	return checkTransition(homeVisitTransitions, s, next)
}

func (s EmergencyStatus) Valid() bool {
	_, ok := emergencyTransitions[s]
	return ok
}

func (s EmergencyStatus) TransitionTo(next EmergencyStatus) error {
	return checkTransition(emergencyTransitions, s, next)
}
