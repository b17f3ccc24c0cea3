package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type ReminderRepository struct {
	db DBTX
}

func NewReminderRepository(db DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.PetCareReminder) error {
	reminder.ID = uuid.NewString()
	reminder.IsActive = true

	query := `
		INSERT INTO pet_care_reminders
			(id, pet_id, title, description, care_type, priority, due_date,
			 frequency, interval, next_due_date, is_completed, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, TRUE)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		reminder.ID,
		reminder.PetID,
		reminder.Title,
		reminder.Description,
		reminder.CareType,
		reminder.Priority,
		reminder.DueDate,
		reminder.Frequency.String(),
		reminder.Interval,
		reminder.NextDueDate,
	).Scan(&reminder.CreatedAt, &reminder.UpdatedAt)
}

// GetForPet returns an active reminder belonging to the pet.
func (r *ReminderRepository) GetForPet(ctx context.Context, reminderID, petID string) (*models.PetCareReminder, error) {
	query := `
		SELECT id, pet_id, title, description, care_type, priority, due_date,
		       frequency, interval, next_due_date, is_completed, completed_at,
		       completion_notes, is_active, created_at, updated_at
		FROM pet_care_reminders
		WHERE id = $1 AND pet_id = $2 AND is_active = TRUE
	`
	return r.scanReminder(r.db.QueryRow(ctx, query, reminderID, petID))
}

func (r *ReminderRepository) ListForPet(ctx context.Context, petID string, includeCompleted bool) ([]models.PetCareReminder, error) {
	query := `
		SELECT id, pet_id, title, description, care_type, priority, due_date,
		       frequency, interval, next_due_date, is_completed, completed_at,
		       completion_notes, is_active, created_at, updated_at
		FROM pet_care_reminders
		WHERE pet_id = $1 AND is_active = TRUE
		  AND ($2 OR is_completed = FALSE)
		ORDER BY due_date, id
	`
	rows, err := r.db.Query(ctx, query, petID, includeCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]models.PetCareReminder, 0)
	for rows.Next() {
		reminder, err := r.scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *ReminderRepository) Update(ctx context.Context, reminder *models.PetCareReminder) error {
	_, err := r.db.Exec(ctx, `
		UPDATE pet_care_reminders
		SET title = $2, description = $3, care_type = $4, priority = $5, due_date = $6,
		    frequency = $7, interval = $8, next_due_date = $9, updated_at = NOW()
		WHERE id = $1
	`,
		reminder.ID,
		reminder.Title,
		reminder.Description,
		reminder.CareType,
		reminder.Priority,
		reminder.DueDate,
		reminder.Frequency.String(),
		reminder.Interval,
		reminder.NextDueDate,
	)
	return err
}

// MarkCompleted stamps completion; the completed row is kept as history.
func (r *ReminderRepository) MarkCompleted(ctx context.Context, reminderID string, notes *string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE pet_care_reminders
		SET is_completed = TRUE, completed_at = NOW(), completion_notes = $2, updated_at = NOW()
		WHERE id = $1
	`, reminderID, notes)
	return err
}

func (r *ReminderRepository) SoftDelete(ctx context.Context, reminderID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE pet_care_reminders
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, reminderID)
	return err
}

func (r *ReminderRepository) scanReminder(row pgx.Row) (*models.PetCareReminder, error) {
	var reminder models.PetCareReminder
	var frequency string
	err := row.Scan(
		&reminder.ID,
		&reminder.PetID,
		&reminder.Title,
		&reminder.Description,
		&reminder.CareType,
		&reminder.Priority,
		&reminder.DueDate,
		&frequency,
		&reminder.Interval,
		&reminder.NextDueDate,
		&reminder.IsCompleted,
		&reminder.CompletedAt,
		&reminder.CompletionNotes,
		&reminder.IsActive,
		&reminder.CreatedAt,
		&reminder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reminder.Frequency = models.ParseRecurrenceFrequency(frequency)
	return &reminder, nil
}
