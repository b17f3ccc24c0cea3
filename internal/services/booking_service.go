package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/repository"
)

var ErrBookingNotFound = errors.New("booking not found")

type conversationCreator interface {
	CreateConversation(ctx context.Context, actorID int64, input CreateConversationInput) (*models.ConversationDetail, error)
}

type BookingService struct {
	db            *pgxpool.Pool
	bookingRepo   *repository.BookingRepository
	providerRepo  providerCatalog
	conversations conversationCreator
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	providerRepo providerCatalog,
	conversations conversationCreator,
) *BookingService {
	return &BookingService{
		db:            db,
		bookingRepo:   bookingRepo,
		providerRepo:  providerRepo,
		conversations: conversations,
	}
}

type CreateBookingInput struct {
	ProviderID      int64
	ServiceType     string
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

// CreateBooking requests a service slot with a provider. An advisory lock on
// the provider serializes concurrent requests so the overlap check holds.
func (s *BookingService) CreateBooking(
	ctx context.Context,
	ownerID int64,
	input CreateBookingInput,
) (*models.Booking, error) {
	if input.ProviderID <= 0 || input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.ServiceType) == "" {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}

	provider, err := s.providerRepo.GetByID(ctx, input.ProviderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	if provider.UserID == ownerID {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.ProviderID); err != nil {
		return nil, err
	}

	overlap, err := txBookingRepo.HasOverlap(ctx, input.ProviderID, input.ScheduledAt.UTC(), input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrConflict
	}

	booking := &models.Booking{
		OwnerID:         ownerID,
		ProviderID:      input.ProviderID,
		ServiceType:     input.ServiceType,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Status:          "pending",
		Notes:           input.Notes,
	}
	if err := txBookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actorID int64, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	providerUserID, err := s.providerUserID(ctx, booking.ProviderID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID && providerUserID != actorID {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, actorID int64, page, limit int) ([]models.Booking, int, error) {
	if page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.bookingRepo.ListForUser(ctx, actorID, limit, (page-1)*limit)
}

// UpdateBookingStatus applies a status transition. Owners may cancel;
// providers may confirm, decline, complete, or cancel. Confirming opens a
// booking conversation between the two parties if one is not linked yet.
func (s *BookingService) UpdateBookingStatus(
	ctx context.Context,
	actorID int64,
	bookingID string,
	requestedStatus string,
) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	providerUserID, err := s.providerUserID(ctx, booking.ProviderID)
	if err != nil {
		return nil, err
	}

	nextStatus, err := normalizeBookingStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateBookingTransition(actorID, booking, providerUserID, nextStatus); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, nextStatus); err != nil {
		return nil, err
	}
	booking.Status = nextStatus

	if nextStatus == "confirmed" && booking.ConversationID == nil {
		title := "Booking: " + booking.ServiceType
		detail, err := s.conversations.CreateConversation(ctx, providerUserID, CreateConversationInput{
			ConversationType: models.ConversationTypeBooking,
			Title:            &title,
			ParticipantIDs:   []int64{booking.OwnerID},
		})
		if err != nil {
			return nil, err
		}
		if err := s.bookingRepo.SetConversation(ctx, bookingID, detail.ID); err != nil {
			return nil, err
		}
		booking.ConversationID = &detail.ID
	}

	return booking, nil
}

func (s *BookingService) providerUserID(ctx context.Context, providerID int64) (int64, error) {
	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProviderNotFound
		}
		return 0, err
	}
	return provider.UserID, nil
}

func normalizeBookingStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "confirm", "confirmed":
		return "confirmed", nil
	case "decline", "declined":
		return "declined", nil
	case "complete", "completed":
		return "completed", nil
	case "cancel", "cancelled", "canceled":
		return "cancelled", nil
	default:
		return "", ErrInvalidInput
	}
}

func validateBookingTransition(actorID int64, booking *models.Booking, providerUserID int64, nextStatus string) error {
	switch actorID {
	case booking.OwnerID:
		if nextStatus != "cancelled" {
			return ErrForbidden
		}
		if booking.Status == "completed" || booking.Status == "cancelled" || booking.Status == "declined" {
			return ErrInvalidStateTransition
		}
		return nil
	case providerUserID:
		switch nextStatus {
		case "confirmed", "declined":
			if booking.Status != "pending" {
				return ErrInvalidStateTransition
			}
		case "completed":
			if booking.Status != "confirmed" {
				return ErrInvalidStateTransition
			}
			bookingEnd := booking.ScheduledAt.Add(time.Duration(booking.DurationMinutes) * time.Minute)
			if bookingEnd.After(time.Now().UTC()) {
				return ErrInvalidStateTransition
			}
		case "cancelled":
			if booking.Status == "completed" || booking.Status == "cancelled" || booking.Status == "declined" {
				return ErrInvalidStateTransition
			}
		default:
			return ErrInvalidInput
		}
		return nil
	default:
		return ErrForbidden
	}
}
