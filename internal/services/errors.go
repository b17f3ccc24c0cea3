package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUserNotFound           = errors.New("user not found")
	ErrConversationNotFound   = errors.New("conversation not found")
	ErrMessageNotFound        = errors.New("message not found")
	ErrProviderNotFound       = errors.New("provider not found")
	ErrEditWindowExpired      = errors.New("edit window expired")
)
