package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
)

type conversationApplicationService interface {
	CreateConversation(ctx context.Context, actorID int64, input services.CreateConversationInput) (*models.ConversationDetail, error)
	GetConversation(ctx context.Context, actorID int64, conversationID string) (*models.ConversationDetail, error)
	ListConversations(ctx context.Context, actorID int64, archived bool, conversationType *models.ConversationType, page, limit int) ([]models.ConversationDetail, int, error)
	UpdateConversation(ctx context.Context, actorID int64, conversationID string, input services.UpdateConversationInput) (*models.ConversationDetail, error)
	AddParticipants(ctx context.Context, actorID int64, conversationID string, userIDs []int64) (*models.ConversationDetail, error)
	RemoveParticipant(ctx context.Context, actorID int64, conversationID string, userID int64) error
	SetArchived(ctx context.Context, actorID int64, conversationID string, archived bool) error
	SetPinned(ctx context.Context, actorID int64, conversationID string, pinned bool) error
	SetMuted(ctx context.Context, actorID int64, conversationID string, muted bool, mutedUntil *time.Time) error
	MarkRead(ctx context.Context, actorID int64, conversationID string) error
}

type ConversationHandler struct {
	service conversationApplicationService
}

func NewConversationHandler(service conversationApplicationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

type createConversationRequest struct {
	ConversationType string  `json:"conversation_type"`
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	ImageURL         *string `json:"image_url"`
	ParticipantIDs   []int64 `json:"participant_ids"`
}

func (h *ConversationHandler) CreateConversation(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	conversation, err := h.service.CreateConversation(c.Context(), actorID, services.CreateConversationInput{
		ConversationType: models.ParseConversationType(req.ConversationType),
		Title:            req.Title,
		Description:      req.Description,
		ImageURL:         req.ImageURL,
		ParticipantIDs:   req.ParticipantIDs,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": conversation})
}

func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	archived := c.QueryBool("archived", false)
	var conversationType *models.ConversationType
	if raw := c.Query("type"); raw != "" {
		parsed := models.ParseConversationType(raw)
		conversationType = &parsed
	}

	page, limit := parsePageParams(c, maxPageLimit)

	conversations, total, err := h.service.ListConversations(c.Context(), actorID, archived, conversationType, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"conversations": conversations,
		"pagination":    buildPaginationMeta(page, limit, total),
	})
}

func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversation, err := h.service.GetConversation(c.Context(), actorID, c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"conversation": conversation})
}

type updateConversationRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

func (h *ConversationHandler) UpdateConversation(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	conversation, err := h.service.UpdateConversation(c.Context(), actorID, c.Params("id"), services.UpdateConversationInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"conversation": conversation})
}

type addParticipantsRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

func (h *ConversationHandler) AddParticipants(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req addParticipantsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	conversation, err := h.service.AddParticipants(c.Context(), actorID, c.Params("id"), req.UserIDs)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"conversation": conversation})
}

func (h *ConversationHandler) RemoveParticipant(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.service.RemoveParticipant(c.Context(), actorID, c.Params("id"), int64(userID)); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type archiveRequest struct {
	Archived bool `json:"archived"`
}

func (h *ConversationHandler) SetArchived(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req archiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.SetArchived(c.Context(), actorID, c.Params("id"), req.Archived); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

func (h *ConversationHandler) SetPinned(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.SetPinned(c.Context(), actorID, c.Params("id"), req.Pinned); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type muteRequest struct {
	Muted      bool       `json:"muted"`
	MutedUntil *time.Time `json:"muted_until"`
}

func (h *ConversationHandler) SetMuted(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req muteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.SetMuted(c.Context(), actorID, c.Params("id"), req.Muted, req.MutedUntil); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ConversationHandler) MarkRead(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.service.MarkRead(c.Context(), actorID, c.Params("id")); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
