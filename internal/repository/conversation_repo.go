package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	conversation.ID = uuid.NewString()

	query := `
		INSERT INTO conversations (id, conversation_type, title, description, image_url, created_by, message_count)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		conversation.ID,
		conversation.ConversationType.String(),
		conversation.Title,
		conversation.Description,
		conversation.ImageURL,
		conversation.CreatedBy,
	).Scan(&conversation.CreatedAt, &conversation.UpdatedAt)
}

func (r *ConversationRepository) GetByID(ctx context.Context, conversationID string) (*models.Conversation, error) {
	query := `
		SELECT id, conversation_type, title, description, image_url, created_by,
		       last_message_id, last_message_at, last_message_preview, message_count,
		       created_at, updated_at
		FROM conversations
		WHERE id = $1
	`
	return r.scanConversation(r.db.QueryRow(ctx, query, conversationID))
}

// FindDirectBetween looks up an existing direct conversation whose two
// participant rows are exactly the given pair. Lookup-before-insert; a
// concurrent create can still race (no unique constraint on the pair).
func (r *ConversationRepository) FindDirectBetween(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	query := `
		SELECT c.id, c.conversation_type, c.title, c.description, c.image_url, c.created_by,
		       c.last_message_id, c.last_message_at, c.last_message_preview, c.message_count,
		       c.created_at, c.updated_at
		FROM conversations c
		WHERE c.conversation_type = 'Direct'
		  AND EXISTS (
			SELECT 1 FROM conversation_participants p
			WHERE p.conversation_id = c.id AND p.user_id = $1
		  )
		  AND EXISTS (
			SELECT 1 FROM conversation_participants p
			WHERE p.conversation_id = c.id AND p.user_id = $2
		  )
		  AND (
			SELECT COUNT(*) FROM conversation_participants p
			WHERE p.conversation_id = c.id
		  ) = 2
		ORDER BY c.created_at
		LIMIT 1
	`
	return r.scanConversation(r.db.QueryRow(ctx, query, userA, userB))
}

// ListForUser returns conversations the user is an active participant of,
// filtered by the user's archived flag, newest activity first.
func (r *ConversationRepository) ListForUser(
	ctx context.Context,
	userID int64,
	archived bool,
	conversationType *models.ConversationType,
	limit int,
	offset int,
) ([]models.Conversation, int, error) {
	filter := `
		FROM conversations c
		JOIN conversation_participants p
		  ON p.conversation_id = c.id
		WHERE p.user_id = $1
		  AND p.left_at IS NULL
		  AND p.is_archived = $2
		  AND ($3::text IS NULL OR c.conversation_type = $3)
	`

	var typeFilter *string
	if conversationType != nil {
		value := conversationType.String()
		typeFilter = &value
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+filter, userID, archived, typeFilter).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.conversation_type, c.title, c.description, c.image_url, c.created_by,
		       c.last_message_id, c.last_message_at, c.last_message_preview, c.message_count,
		       c.created_at, c.updated_at
	` + filter + `
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC, c.id DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.Query(ctx, query, userID, archived, typeFilter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		conversation, err := r.scanConversation(rows)
		if err != nil {
			return nil, 0, err
		}
		conversations = append(conversations, *conversation)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return conversations, total, nil
}

func (r *ConversationRepository) UpdateMetadata(
	ctx context.Context,
	conversationID string,
	title *string,
	description *string,
	imageURL *string,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    image_url = COALESCE($4, image_url),
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID, title, description, imageURL)
	return err
}

// RecordLastMessage updates the denormalized last-message pointer and bumps
// the running message count.
func (r *ConversationRepository) RecordLastMessage(
	ctx context.Context,
	conversationID string,
	messageID string,
	sentAt time.Time,
	preview string,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message_id = $2,
		    last_message_at = $3,
		    last_message_preview = $4,
		    message_count = message_count + 1,
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID, messageID, sentAt, preview)
	return err
}

// DecrementMessageCount floors the counter at zero.
func (r *ConversationRepository) DecrementMessageCount(ctx context.Context, conversationID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET message_count = GREATEST(0, message_count - 1),
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}

func (r *ConversationRepository) Touch(ctx context.Context, conversationID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}

func (r *ConversationRepository) scanConversation(row pgx.Row) (*models.Conversation, error) {
	var conversation models.Conversation
	var conversationType string
	err := row.Scan(
		&conversation.ID,
		&conversationType,
		&conversation.Title,
		&conversation.Description,
		&conversation.ImageURL,
		&conversation.CreatedBy,
		&conversation.LastMessageID,
		&conversation.LastMessageAt,
		&conversation.LastMessagePreview,
		&conversation.MessageCount,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	conversation.ConversationType = models.ParseConversationType(conversationType)
	return &conversation, nil
}
