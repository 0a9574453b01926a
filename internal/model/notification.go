package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationChannel is the broker channel notification events travel on.
const NotificationChannel = "notifications"

const (
	EventAppointmentBooked     = "appointment.booked"
	EventAppointmentCancelled  = "appointment.cancelled"
	EventHomeVisitScheduled    = "home_visit.scheduled"
	EventEmergencyReported     = "emergency.reported"
	EventEmergencyAcknowledged = "emergency.acknowledged"
)

// NotificationEvent is published by services and delivered by the worker.
type NotificationEvent struct {
	ID         uuid.UUID         `json:"id"`
	Type       string            `json:"type"`
	EntityID   uuid.UUID         `json:"entity_id"`
	Recipients []Recipient       `json:"recipients"`
	Subject    string            `json:"subject"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Recipient struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}
