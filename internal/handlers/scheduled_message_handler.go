package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
)

type scheduledMessageApplicationService interface {
	ScheduleMessage(ctx context.Context, actorID int64, input services.ScheduleMessageInput) (*models.ScheduledMessage, error)
	GetScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string) (*models.ScheduledMessage, error)
	ListScheduledMessages(ctx context.Context, actorID int64, conversationID *string, page, limit int) ([]models.ScheduledMessage, int, error)
	UpdateScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string, input services.UpdateScheduledMessageInput) (*models.ScheduledMessage, error)
	CancelScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string) error
	PauseScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string) error
	ResumeScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string) error
}

type ScheduledMessageHandler struct {
	service scheduledMessageApplicationService
}

func NewScheduledMessageHandler(service scheduledMessageApplicationService) *ScheduledMessageHandler {
	return &ScheduledMessageHandler{service: service}
}

type scheduleMessageRequest struct {
	ConversationID string    `json:"conversation_id"`
	MessageType    string    `json:"message_type"`
	Content        string    `json:"content"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Frequency      string    `json:"frequency"`
	Interval       int       `json:"interval"`
}

func (h *ScheduledMessageHandler) ScheduleMessage(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req scheduleMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	scheduled, err := h.service.ScheduleMessage(c.Context(), actorID, services.ScheduleMessageInput{
		ConversationID: req.ConversationID,
		MessageType:    models.ParseMessageType(req.MessageType),
		Content:        req.Content,
		ScheduledAt:    req.ScheduledAt,
		Frequency:      models.ParseRecurrenceFrequency(req.Frequency),
		Interval:       req.Interval,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"scheduled_message": scheduled})
}

func (h *ScheduledMessageHandler) GetScheduledMessage(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	scheduled, err := h.service.GetScheduledMessage(c.Context(), actorID, c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"scheduled_message": scheduled})
}

func (h *ScheduledMessageHandler) ListScheduledMessages(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var conversationID *string
	if raw := c.Query("conversation_id"); raw != "" {
		conversationID = &raw
	}

	page, limit := parsePageParams(c, maxPageLimit)

	scheduled, total, err := h.service.ListScheduledMessages(c.Context(), actorID, conversationID, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"scheduled_messages": scheduled,
		"pagination":         buildPaginationMeta(page, limit, total),
	})
}

type updateScheduledMessageRequest struct {
	Content     *string    `json:"content"`
	MessageType *string    `json:"message_type"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Frequency   *string    `json:"frequency"`
	Interval    *int       `json:"interval"`
}

func (h *ScheduledMessageHandler) UpdateScheduledMessage(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateScheduledMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.UpdateScheduledMessageInput{
		Content:     req.Content,
		ScheduledAt: req.ScheduledAt,
		Interval:    req.Interval,
	}
	if req.MessageType != nil {
		parsed := models.ParseMessageType(*req.MessageType)
		input.MessageType = &parsed
	}
	if req.Frequency != nil {
		parsed := models.ParseRecurrenceFrequency(*req.Frequency)
		input.Frequency = &parsed
	}

	scheduled, err := h.service.UpdateScheduledMessage(c.Context(), actorID, c.Params("id"), input)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"scheduled_message": scheduled})
}

func (h *ScheduledMessageHandler) CancelScheduledMessage(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.CancelScheduledMessage)
}

func (h *ScheduledMessageHandler) PauseScheduledMessage(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.PauseScheduledMessage)
}

func (h *ScheduledMessageHandler) ResumeScheduledMessage(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.ResumeScheduledMessage)
}

func (h *ScheduledMessageHandler) lifecycle(
	c *fiber.Ctx,
	transition func(ctx context.Context, actorID int64, scheduledMessageID string) error,
) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := transition(c.Context(), actorID, c.Params("id")); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
