package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type ScheduledMessageRepository struct {
	db DBTX
}

func NewScheduledMessageRepository(db DBTX) *ScheduledMessageRepository {
	return &ScheduledMessageRepository{db: db}
}

func (r *ScheduledMessageRepository) Create(ctx context.Context, scheduled *models.ScheduledMessage) error {
	scheduled.ID = uuid.NewString()

	query := `
		INSERT INTO scheduled_messages
			(id, sender_id, conversation_id, message_type, content, scheduled_at,
			 frequency, interval, next_occurrence, is_recurring, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		scheduled.ID,
		scheduled.SenderID,
		scheduled.ConversationID,
		scheduled.MessageType.String(),
		scheduled.Content,
		scheduled.ScheduledAt,
		scheduled.Frequency.String(),
		scheduled.Interval,
		scheduled.NextOccurrence,
		scheduled.IsRecurring,
		scheduled.Status.String(),
	).Scan(&scheduled.CreatedAt, &scheduled.UpdatedAt)
}

// GetForSender scopes reads to the scheduling user.
func (r *ScheduledMessageRepository) GetForSender(ctx context.Context, scheduledMessageID string, senderID int64) (*models.ScheduledMessage, error) {
	query := `
		SELECT id, sender_id, conversation_id, message_type, content, scheduled_at,
		       frequency, interval, next_occurrence, is_recurring, status, created_at, updated_at
		FROM scheduled_messages
		WHERE id = $1 AND sender_id = $2
	`
	return r.scanScheduled(r.db.QueryRow(ctx, query, scheduledMessageID, senderID))
}

func (r *ScheduledMessageRepository) ListForSender(
	ctx context.Context,
	senderID int64,
	conversationID *string,
	limit int,
	offset int,
) ([]models.ScheduledMessage, int, error) {
	filter := `
		FROM scheduled_messages
		WHERE sender_id = $1
		  AND ($2::text IS NULL OR conversation_id = $2)
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+filter, senderID, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, sender_id, conversation_id, message_type, content, scheduled_at,
		       frequency, interval, next_occurrence, is_recurring, status, created_at, updated_at
	` + filter + `
		ORDER BY scheduled_at, id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, senderID, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	scheduled := make([]models.ScheduledMessage, 0)
	for rows.Next() {
		item, err := r.scanScheduled(rows)
		if err != nil {
			return nil, 0, err
		}
		scheduled = append(scheduled, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return scheduled, total, nil
}

func (r *ScheduledMessageRepository) Update(ctx context.Context, scheduled *models.ScheduledMessage) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scheduled_messages
		SET content = $2, message_type = $3, scheduled_at = $4, frequency = $5,
		    interval = $6, next_occurrence = $7, is_recurring = $8, updated_at = NOW()
		WHERE id = $1
	`,
		scheduled.ID,
		scheduled.Content,
		scheduled.MessageType.String(),
		scheduled.ScheduledAt,
		scheduled.Frequency.String(),
		scheduled.Interval,
		scheduled.NextOccurrence,
		scheduled.IsRecurring,
	)
	return err
}

func (r *ScheduledMessageRepository) UpdateStatus(ctx context.Context, scheduledMessageID string, status models.ScheduledMessageStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scheduled_messages
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, scheduledMessageID, status.String())
	return err
}

// ListDue returns pending messages whose scheduled time has passed.
func (r *ScheduledMessageRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error) {
	query := `
		SELECT id, sender_id, conversation_id, message_type, content, scheduled_at,
		       frequency, interval, next_occurrence, is_recurring, status, created_at, updated_at
		FROM scheduled_messages
		WHERE status = 'Pending' AND scheduled_at <= $1
		ORDER BY scheduled_at, id
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	due := make([]models.ScheduledMessage, 0)
	for rows.Next() {
		item, err := r.scanScheduled(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return due, nil
}

// Advance moves a recurring message to its next occurrence and keeps it
// pending for the following dispatch pass.
func (r *ScheduledMessageRepository) Advance(ctx context.Context, scheduledMessageID string, scheduledAt time.Time, nextOccurrence *time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scheduled_messages
		SET scheduled_at = $2, next_occurrence = $3, status = 'Pending', updated_at = NOW()
		WHERE id = $1
	`, scheduledMessageID, scheduledAt, nextOccurrence)
	return err
}

func (r *ScheduledMessageRepository) scanScheduled(row pgx.Row) (*models.ScheduledMessage, error) {
	var scheduled models.ScheduledMessage
	var messageType, frequency, status string
	err := row.Scan(
		&scheduled.ID,
		&scheduled.SenderID,
		&scheduled.ConversationID,
		&messageType,
		&scheduled.Content,
		&scheduled.ScheduledAt,
		&frequency,
		&scheduled.Interval,
		&scheduled.NextOccurrence,
		&scheduled.IsRecurring,
		&status,
		&scheduled.CreatedAt,
		&scheduled.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	scheduled.MessageType = models.ParseMessageType(messageType)
	scheduled.Frequency = models.ParseRecurrenceFrequency(frequency)
	scheduled.Status = models.ParseScheduledMessageStatus(status)
	return &scheduled, nil
}
