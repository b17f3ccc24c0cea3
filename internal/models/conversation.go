package models

import "time"

type Conversation struct {
	ID                 string           `json:"id"`
	ConversationType   ConversationType `json:"conversation_type"`
	Title              *string          `json:"title"`
	Description        *string          `json:"description"`
	ImageURL           *string          `json:"image_url"`
	CreatedBy          int64            `json:"created_by"`
	LastMessageID      *string          `json:"last_message_id,omitempty"`
	LastMessageAt      *time.Time       `json:"last_message_at,omitempty"`
	LastMessagePreview *string          `json:"last_message_preview,omitempty"`
	MessageCount       int              `json:"message_count"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type ConversationParticipant struct {
	ConversationID string           `json:"conversation_id"`
	UserID         int64            `json:"user_id"`
	Role           ConversationRole `json:"role"`
	JoinedAt       time.Time        `json:"joined_at"`
	LeftAt         *time.Time       `json:"left_at,omitempty"`
	UnreadCount    int              `json:"unread_count"`
	IsArchived     bool             `json:"is_archived"`
	IsPinned       bool             `json:"is_pinned"`
	IsMuted        bool             `json:"is_muted"`
	MutedUntil     *time.Time       `json:"muted_until,omitempty"`
	LastReadAt     *time.Time       `json:"last_read_at,omitempty"`
}

// Active reports whether the participant has not left the conversation.
func (p *ConversationParticipant) Active() bool {
	return p.LeftAt == nil
}

type ParticipantDetail struct {
	ConversationParticipant
	DisplayName string `json:"display_name"`
}

// ConversationDetail is the read model returned to the requesting user: the
// conversation plus that user's per-participant flags and the active roster.
type ConversationDetail struct {
	Conversation
	DisplayTitle string              `json:"display_title"`
	UnreadCount  int                 `json:"unread_count"`
	IsArchived   bool                `json:"is_archived"`
	IsPinned     bool                `json:"is_pinned"`
	IsMuted      bool                `json:"is_muted"`
	Participants []ParticipantDetail `json:"participants"`
}
