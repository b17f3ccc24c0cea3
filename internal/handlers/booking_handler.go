package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
)

type bookingApplicationService interface {
	CreateBooking(ctx context.Context, ownerID int64, input services.CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, actorID int64, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, actorID int64, page, limit int) ([]models.Booking, int, error)
	UpdateBookingStatus(ctx context.Context, actorID int64, bookingID, requestedStatus string) (*models.Booking, error)
}

type BookingHandler struct {
	service bookingApplicationService
}

func NewBookingHandler(service bookingApplicationService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	ProviderID      int64     `json:"provider_id"`
	ServiceType     string    `json:"service_type"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           *string   `json:"notes"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	booking, err := h.service.CreateBooking(c.Context(), ownerID, services.CreateBookingInput{
		ProviderID:      req.ProviderID,
		ServiceType:     req.ServiceType,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	booking, err := h.service.GetBooking(c.Context(), actorID, c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := parsePageParams(c, maxPageLimit)

	bookings, total, err := h.service.ListBookings(c.Context(), actorID, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"bookings":   bookings,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

func (h *BookingHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateBookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	booking, err := h.service.UpdateBookingStatus(c.Context(), actorID, c.Params("id"), req.Status)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}
