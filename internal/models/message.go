package models

import "time"

type Message struct {
	ID              string        `json:"id"`
	ConversationID  string        `json:"conversation_id"`
	SenderID        int64         `json:"sender_id"`
	MessageType     MessageType   `json:"message_type"`
	Content         string        `json:"content"`
	ParentMessageID *string       `json:"parent_message_id,omitempty"`
	Status          MessageStatus `json:"status"`
	IsEdited        bool          `json:"is_edited"`
	EditedAt        *time.Time    `json:"edited_at,omitempty"`
	IsDeleted       bool          `json:"-"`
	DeletedAt       *time.Time    `json:"-"`
	DeletedBy       *int64        `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
}

type MessageAttachment struct {
	ID             string         `json:"id"`
	MessageID      string         `json:"message_id"`
	AttachmentType AttachmentType `json:"attachment_type"`
	FileName       string         `json:"file_name"`
	FileURL        string         `json:"file_url"`
	ThumbnailURL   *string        `json:"thumbnail_url,omitempty"`
	FileSize       int64          `json:"file_size"`
	MimeType       string         `json:"mime_type"`
	Width          *int           `json:"width,omitempty"`
	Height         *int           `json:"height,omitempty"`
	Duration       *int           `json:"duration,omitempty"`
	UploadedAt     time.Time      `json:"uploaded_at"`
}

type MessageReaction struct {
	MessageID string    `json:"message_id"`
	UserID    int64     `json:"user_id"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionAggregate groups reactions on a message by value for display.
type ReactionAggregate struct {
	Reaction string  `json:"reaction"`
	Count    int     `json:"count"`
	UserIDs  []int64 `json:"user_ids"`
}

type MessageDetail struct {
	Message
	SenderName  string              `json:"sender_name"`
	Attachments []MessageAttachment `json:"attachments"`
	Reactions   []ReactionAggregate `json:"reactions"`
}

type MessageSearchResult struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	Snippet        string    `json:"snippet"`
	CreatedAt      time.Time `json:"created_at"`
}
