package models

import "time"

type ScheduledMessage struct {
	ID             string                 `json:"id"`
	SenderID       int64                  `json:"sender_id"`
	ConversationID string                 `json:"conversation_id"`
	MessageType    MessageType            `json:"message_type"`
	Content        string                 `json:"content"`
	ScheduledAt    time.Time              `json:"scheduled_at"`
	Frequency      RecurrenceFrequency    `json:"frequency"`
	Interval       int                    `json:"interval"`
	NextOccurrence *time.Time             `json:"next_occurrence,omitempty"`
	IsRecurring    bool                   `json:"is_recurring"`
	Status         ScheduledMessageStatus `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
