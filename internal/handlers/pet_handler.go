package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
)

type petApplicationService interface {
	CreatePet(ctx context.Context, ownerID int64, input services.PetInput) (*models.Pet, error)
	GetPet(ctx context.Context, ownerID int64, petID string) (*models.Pet, error)
	ListPets(ctx context.Context, ownerID int64) ([]models.Pet, error)
	UpdatePet(ctx context.Context, ownerID int64, petID string, input services.PetInput) (*models.Pet, error)
	DeletePet(ctx context.Context, ownerID int64, petID string) error
	CreateReminder(ctx context.Context, ownerID int64, petID string, input services.ReminderInput) (*models.PetCareReminder, error)
	ListReminders(ctx context.Context, ownerID int64, petID string, includeCompleted bool) ([]models.PetCareReminderDetail, error)
	CompleteReminder(ctx context.Context, ownerID int64, petID, reminderID string, notes *string) (*models.PetCareReminder, error)
	DeleteReminder(ctx context.Context, ownerID int64, petID, reminderID string) error
}

type PetHandler struct {
	service petApplicationService
}

func NewPetHandler(service petApplicationService) *PetHandler {
	return &PetHandler{service: service}
}

type petRequest struct {
	Name      string     `json:"name"`
	Breed     *string    `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     *string    `json:"notes"`
}

func (h *PetHandler) CreatePet(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req petRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pet, err := h.service.CreatePet(c.Context(), ownerID, services.PetInput{
		Name:      req.Name,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pet": pet})
}

func (h *PetHandler) GetPet(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	pet, err := h.service.GetPet(c.Context(), ownerID, c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"pet": pet})
}

func (h *PetHandler) ListPets(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	pets, err := h.service.ListPets(c.Context(), ownerID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"pets": pets})
}

func (h *PetHandler) UpdatePet(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req petRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pet, err := h.service.UpdatePet(c.Context(), ownerID, c.Params("id"), services.PetInput{
		Name:      req.Name,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"pet": pet})
}

func (h *PetHandler) DeletePet(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.service.DeletePet(c.Context(), ownerID, c.Params("id")); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type reminderRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CareType    string    `json:"care_type"`
	Priority    string    `json:"priority"`
	DueDate     time.Time `json:"due_date"`
	Frequency   string    `json:"frequency"`
	Interval    int       `json:"interval"`
}

func (h *PetHandler) CreateReminder(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req reminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	reminder, err := h.service.CreateReminder(c.Context(), ownerID, c.Params("id"), services.ReminderInput{
		Title:       req.Title,
		Description: req.Description,
		CareType:    req.CareType,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Frequency:   models.ParseRecurrenceFrequency(req.Frequency),
		Interval:    req.Interval,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reminder": reminder})
}

func (h *PetHandler) ListReminders(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	includeCompleted := c.QueryBool("include_completed", false)

	reminders, err := h.service.ListReminders(c.Context(), ownerID, c.Params("id"), includeCompleted)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"reminders": reminders})
}

type completeReminderRequest struct {
	Notes *string `json:"notes"`
}

func (h *PetHandler) CompleteReminder(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req completeReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	next, err := h.service.CompleteReminder(c.Context(), ownerID, c.Params("id"), c.Params("reminderId"), req.Notes)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"next_occurrence": next})
}

func (h *PetHandler) DeleteReminder(c *fiber.Ctx) error {
	ownerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.service.DeleteReminder(c.Context(), ownerID, c.Params("id"), c.Params("reminderId")); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
