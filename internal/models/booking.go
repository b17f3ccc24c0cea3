package models

import "time"

type Booking struct {
	ID              string     `json:"id"`
	OwnerID         int64      `json:"owner_id"`
	ProviderID      int64      `json:"provider_id"`
	ServiceType     string     `json:"service_type"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes"`
	ConversationID  *string    `json:"conversation_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}
