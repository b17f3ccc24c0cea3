package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
)

type providerApplicationService interface {
	SearchProviders(ctx context.Context, input services.ProviderSearchInput) ([]models.ProviderWithScore, error)
	GetProvider(ctx context.Context, providerID int64) (*models.ProviderProfile, error)
}

type ProviderHandler struct {
	service providerApplicationService
}

func NewProviderHandler(service providerApplicationService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

func (h *ProviderHandler) SearchProviders(c *fiber.Ctx) error {
	input := services.ProviderSearchInput{
		VerifiedOnly: c.QueryBool("verified", false),
		Limit:        parsePositiveInt(c.Query("limit"), defaultPageLimit),
	}
	if input.Limit > maxPageLimit {
		input.Limit = maxPageLimit
	}

	if raw := c.Query("service_type"); raw != "" {
		input.ServiceType = &raw
	}
	if raw := c.Query("max_rate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid max_rate"})
		}
		input.MaxHourlyRate = &rate
	}

	providers, err := h.service.SearchProviders(c.Context(), input)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"providers": providers})
}

func (h *ProviderHandler) GetProvider(c *fiber.Ctx) error {
	providerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || providerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider id"})
	}

	provider, err := h.service.GetProvider(c.Context(), providerID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"provider": provider})
}
