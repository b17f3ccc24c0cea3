package handlers

import (
	"context"
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
	chatws "github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/websocket"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/pkg/utils"
)

type messagingApplicationService interface {
	SendMessage(ctx context.Context, actorID int64, conversationID string, input services.SendMessageInput) (*services.MessageDelivery, error)
	ListMessages(ctx context.Context, actorID int64, conversationID string, page, limit int) ([]models.MessageDetail, int, error)
	EditMessage(ctx context.Context, actorID int64, messageID, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, actorID int64, messageID string) error
	ToggleReaction(ctx context.Context, actorID int64, messageID, reaction string) ([]models.ReactionAggregate, bool, error)
	SearchMessages(ctx context.Context, actorID int64, term string, conversationID *string, page, limit int) ([]models.MessageSearchResult, int, error)
}

type MessageHandler struct {
	service   messagingApplicationService
	hub       *chatws.Hub
	jwtSecret string
}

func NewMessageHandler(service messagingApplicationService, hub *chatws.Hub, jwtSecret string) *MessageHandler {
	return &MessageHandler{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

type attachmentRequest struct {
	AttachmentType string  `json:"attachment_type"`
	FileName       string  `json:"file_name"`
	FileURL        string  `json:"file_url"`
	ThumbnailURL   *string `json:"thumbnail_url"`
	FileSize       int64   `json:"file_size"`
	MimeType       string  `json:"mime_type"`
	Width          *int    `json:"width"`
	Height         *int    `json:"height"`
	Duration       *int    `json:"duration"`
}

type sendMessageRequest struct {
	MessageType     string              `json:"message_type"`
	Content         string              `json:"content"`
	ParentMessageID *string             `json:"parent_message_id"`
	Encrypted       bool                `json:"encrypted"`
	Attachments     []attachmentRequest `json:"attachments"`
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	attachments := make([]services.AttachmentInput, 0, len(req.Attachments))
	for _, item := range req.Attachments {
		attachments = append(attachments, services.AttachmentInput{
			AttachmentType: models.ParseAttachmentType(item.AttachmentType),
			FileName:       item.FileName,
			FileURL:        item.FileURL,
			ThumbnailURL:   item.ThumbnailURL,
			FileSize:       item.FileSize,
			MimeType:       item.MimeType,
			Width:          item.Width,
			Height:         item.Height,
			Duration:       item.Duration,
		})
	}

	delivery, err := h.service.SendMessage(c.Context(), actorID, c.Params("id"), services.SendMessageInput{
		MessageType:     models.ParseMessageType(req.MessageType),
		Content:         req.Content,
		ParentMessageID: req.ParentMessageID,
		Encrypted:       req.Encrypted,
		Attachments:     attachments,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	h.hub.BroadcastDelivery(delivery)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": delivery.Message})
}

func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := parsePageParams(c, maxMessagePageLimit)

	messages, total, err := h.service.ListMessages(c.Context(), actorID, c.Params("id"), page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages":   messages,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

type editMessageRequest struct {
	Content string `json:"content"`
}

func (h *MessageHandler) EditMessage(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req editMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	message, err := h.service.EditMessage(c.Context(), actorID, c.Params("messageId"), req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": message})
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.service.DeleteMessage(c.Context(), actorID, c.Params("messageId")); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type reactionRequest struct {
	Reaction string `json:"reaction"`
}

func (h *MessageHandler) ToggleReaction(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req reactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	reactions, added, err := h.service.ToggleReaction(c.Context(), actorID, c.Params("messageId"), req.Reaction)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"added":     added,
		"reactions": reactions,
	})
}

func (h *MessageHandler) SearchMessages(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	term := c.Query("q")
	var conversationID *string
	if raw := c.Query("conversation_id"); raw != "" {
		conversationID = &raw
	}

	page, limit := parsePageParams(c, maxPageLimit)

	results, total, err := h.service.SearchMessages(c.Context(), actorID, term, conversationID, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"results":    results,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *MessageHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *MessageHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	client := chatws.NewClient(h.hub, conn, userID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(h.service)
}

func (h *MessageHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
