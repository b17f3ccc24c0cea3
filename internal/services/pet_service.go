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

var ErrPetNotFound = errors.New("pet not found")

type PetService struct {
	db           *pgxpool.Pool
	petRepo      *repository.PetRepository
	reminderRepo *repository.ReminderRepository
}

func NewPetService(
	db *pgxpool.Pool,
	petRepo *repository.PetRepository,
	reminderRepo *repository.ReminderRepository,
) *PetService {
	return &PetService{
		db:           db,
		petRepo:      petRepo,
		reminderRepo: reminderRepo,
	}
}

type PetInput struct {
	Name      string
	Breed     *string
	BirthDate *time.Time
	Notes     *string
}

func (s *PetService) CreatePet(ctx context.Context, ownerID int64, input PetInput) (*models.Pet, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	pet := &models.Pet{
		OwnerID:   ownerID,
		Name:      name,
		Breed:     input.Breed,
		BirthDate: input.BirthDate,
		Notes:     input.Notes,
	}
	if err := s.petRepo.Create(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

func (s *PetService) GetPet(ctx context.Context, ownerID int64, petID string) (*models.Pet, error) {
	pet, err := s.petRepo.GetForOwner(ctx, petID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	return pet, nil
}

func (s *PetService) ListPets(ctx context.Context, ownerID int64) ([]models.Pet, error) {
	return s.petRepo.ListForOwner(ctx, ownerID)
}

func (s *PetService) UpdatePet(ctx context.Context, ownerID int64, petID string, input PetInput) (*models.Pet, error) {
	pet, err := s.GetPet(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	pet.Name = name
	pet.Breed = input.Breed
	pet.BirthDate = input.BirthDate
	pet.Notes = input.Notes
	if err := s.petRepo.Update(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

func (s *PetService) DeletePet(ctx context.Context, ownerID int64, petID string) error {
	deleted, err := s.petRepo.SoftDelete(ctx, petID, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPetNotFound
	}
	return nil
}

type ReminderInput struct {
	Title       string
	Description *string
	CareType    string
	Priority    string
	DueDate     time.Time
	Frequency   models.RecurrenceFrequency
	Interval    int
}

// CreateReminder attaches a care reminder to the owner's pet. Recurring
// reminders precompute the next due date.
func (s *PetService) CreateReminder(
	ctx context.Context,
	ownerID int64,
	petID string,
	input ReminderInput,
) (*models.PetCareReminder, error) {
	if _, err := s.GetPet(ctx, ownerID, petID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if input.Interval <= 0 {
		input.Interval = 1
	}

	reminder := &models.PetCareReminder{
		PetID:       petID,
		Title:       title,
		Description: input.Description,
		CareType:    input.CareType,
		Priority:    input.Priority,
		DueDate:     input.DueDate.UTC(),
		Frequency:   input.Frequency,
		Interval:    input.Interval,
		NextDueDate: NextDueDate(input.DueDate.UTC(), input.Frequency, input.Interval),
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (s *PetService) ListReminders(
	ctx context.Context,
	ownerID int64,
	petID string,
	includeCompleted bool,
) ([]models.PetCareReminderDetail, error) {
	if _, err := s.GetPet(ctx, ownerID, petID); err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.ListForPet(ctx, petID, includeCompleted)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	details := make([]models.PetCareReminderDetail, 0, len(reminders))
	for _, reminder := range reminders {
		details = append(details, models.PetCareReminderDetail{
			PetCareReminder: reminder,
			IsOverdue:       !reminder.IsCompleted && reminder.DueDate.Before(now),
		})
	}
	return details, nil
}

// CompleteReminder marks the reminder done. A recurring reminder spawns its
// next occurrence as a fresh row in the same transaction, so history of
// completed occurrences is preserved.
func (s *PetService) CompleteReminder(
	ctx context.Context,
	ownerID int64,
	petID string,
	reminderID string,
	notes *string,
) (*models.PetCareReminder, error) {
	if _, err := s.GetPet(ctx, ownerID, petID); err != nil {
		return nil, err
	}

	reminder, err := s.reminderRepo.GetForPet(ctx, reminderID, petID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	if reminder.IsCompleted {
		return nil, ErrInvalidStateTransition
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txReminderRepo := repository.NewReminderRepository(tx)

	if err := txReminderRepo.MarkCompleted(ctx, reminderID, notes); err != nil {
		return nil, err
	}

	var next *models.PetCareReminder
	if reminder.Frequency.IsRecurring() && reminder.NextDueDate != nil {
		nextDue := *reminder.NextDueDate
		next = &models.PetCareReminder{
			PetID:       reminder.PetID,
			Title:       reminder.Title,
			Description: reminder.Description,
			CareType:    reminder.CareType,
			Priority:    reminder.Priority,
			DueDate:     nextDue,
			Frequency:   reminder.Frequency,
			Interval:    reminder.Interval,
			NextDueDate: NextDueDate(nextDue, reminder.Frequency, reminder.Interval),
		}
		if err := txReminderRepo.Create(ctx, next); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return next, nil
}

func (s *PetService) DeleteReminder(ctx context.Context, ownerID int64, petID, reminderID string) error {
	if _, err := s.GetPet(ctx, ownerID, petID); err != nil {
		return err
	}
	if _, err := s.reminderRepo.GetForPet(ctx, reminderID, petID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidInput
		}
		return err
	}
	return s.reminderRepo.SoftDelete(ctx, reminderID)
}
