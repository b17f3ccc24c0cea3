package models

import "time"

type Pet struct {
	ID        string     `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Name      string     `json:"name"`
	Breed     *string    `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     *string    `json:"notes"`
	IsActive  bool       `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type PetCareReminder struct {
	ID              string              `json:"id"`
	PetID           string              `json:"pet_id"`
	Title           string              `json:"title"`
	Description     *string             `json:"description"`
	CareType        string              `json:"care_type"`
	Priority        string              `json:"priority"`
	DueDate         time.Time           `json:"due_date"`
	Frequency       RecurrenceFrequency `json:"frequency"`
	Interval        int                 `json:"interval"`
	NextDueDate     *time.Time          `json:"next_due_date,omitempty"`
	IsCompleted     bool                `json:"is_completed"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CompletionNotes *string             `json:"completion_notes,omitempty"`
	IsActive        bool                `json:"-"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type PetCareReminderDetail struct {
	PetCareReminder
	IsOverdue bool `json:"is_overdue"`
}
