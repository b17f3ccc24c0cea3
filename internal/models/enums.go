package models

import "strings"

// Domain enums are persisted as their string names. Parsing is
// case-insensitive and coerces unknown values to a per-enum default so
// malformed rows never fail a read.

type ConversationType string

const (
	ConversationTypeDirect  ConversationType = "Direct"
	ConversationTypeGroup   ConversationType = "Group"
	ConversationTypeBooking ConversationType = "Booking"
	ConversationTypeSystem  ConversationType = "System"
)

// ParseConversationType defaults to Direct.
func ParseConversationType(s string) ConversationType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "group":
		return ConversationTypeGroup
	case "booking":
		return ConversationTypeBooking
	case "system":
		return ConversationTypeSystem
	default:
		return ConversationTypeDirect
	}
}

func (t ConversationType) String() string { return string(t) }

type ConversationRole string

const (
	RoleOwner  ConversationRole = "Owner"
	RoleAdmin  ConversationRole = "Admin"
	RoleMember ConversationRole = "Member"
)

// ParseConversationRole defaults to Member.
func ParseConversationRole(s string) ConversationRole {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owner":
		return RoleOwner
	case "admin":
		return RoleAdmin
	default:
		return RoleMember
	}
}

func (r ConversationRole) String() string { return string(r) }

type MessageType string

const (
	MessageTypeText     MessageType = "Text"
	MessageTypeImage    MessageType = "Image"
	MessageTypeVoice    MessageType = "Voice"
	MessageTypeVideo    MessageType = "Video"
	MessageTypeLocation MessageType = "Location"
	MessageTypeSystem   MessageType = "System"
)

// ParseMessageType defaults to Text.
func ParseMessageType(s string) MessageType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image":
		return MessageTypeImage
	case "voice":
		return MessageTypeVoice
	case "video":
		return MessageTypeVideo
	case "location":
		return MessageTypeLocation
	case "system":
		return MessageTypeSystem
	default:
		return MessageTypeText
	}
}

func (t MessageType) String() string { return string(t) }

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "Sent"
	MessageStatusDelivered MessageStatus = "Delivered"
	MessageStatusRead      MessageStatus = "Read"
	MessageStatusFailed    MessageStatus = "Failed"
)

// ParseMessageStatus defaults to Sent.
func ParseMessageStatus(s string) MessageStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delivered":
		return MessageStatusDelivered
	case "read":
		return MessageStatusRead
	case "failed":
		return MessageStatusFailed
	default:
		return MessageStatusSent
	}
}

func (s MessageStatus) String() string { return string(s) }

type AttachmentType string

const (
	AttachmentTypeImage AttachmentType = "Image"
	AttachmentTypeVideo AttachmentType = "Video"
	AttachmentTypeAudio AttachmentType = "Audio"
	AttachmentTypeFile  AttachmentType = "File"
)

// ParseAttachmentType defaults to File.
func ParseAttachmentType(s string) AttachmentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image":
		return AttachmentTypeImage
	case "video":
		return AttachmentTypeVideo
	case "audio":
		return AttachmentTypeAudio
	default:
		return AttachmentTypeFile
	}
}

func (t AttachmentType) String() string { return string(t) }

type ScheduledMessageStatus string

const (
	ScheduledStatusPending   ScheduledMessageStatus = "Pending"
	ScheduledStatusPaused    ScheduledMessageStatus = "Paused"
	ScheduledStatusSent      ScheduledMessageStatus = "Sent"
	ScheduledStatusFailed    ScheduledMessageStatus = "Failed"
	ScheduledStatusCancelled ScheduledMessageStatus = "Cancelled"
)

// ParseScheduledMessageStatus defaults to Pending.
func ParseScheduledMessageStatus(s string) ScheduledMessageStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paused":
		return ScheduledStatusPaused
	case "sent":
		return ScheduledStatusSent
	case "failed":
		return ScheduledStatusFailed
	case "cancelled":
		return ScheduledStatusCancelled
	default:
		return ScheduledStatusPending
	}
}

func (s ScheduledMessageStatus) String() string { return string(s) }

type RecurrenceFrequency string

const (
	FrequencyOnce    RecurrenceFrequency = "Once"
	FrequencyDaily   RecurrenceFrequency = "Daily"
	FrequencyWeekly  RecurrenceFrequency = "Weekly"
	FrequencyMonthly RecurrenceFrequency = "Monthly"
	FrequencyYearly  RecurrenceFrequency = "Yearly"
)

// ParseRecurrenceFrequency defaults to Once.
func ParseRecurrenceFrequency(s string) RecurrenceFrequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return FrequencyDaily
	case "weekly":
		return FrequencyWeekly
	case "monthly":
		return FrequencyMonthly
	case "yearly":
		return FrequencyYearly
	default:
		return FrequencyOnce
	}
}

func (f RecurrenceFrequency) String() string { return string(f) }

// IsRecurring reports whether the frequency produces follow-up occurrences.
func (f RecurrenceFrequency) IsRecurring() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}
