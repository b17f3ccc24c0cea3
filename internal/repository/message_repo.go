package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	message.ID = uuid.NewString()

	query := `
		INSERT INTO messages (id, conversation_id, sender_id, message_type, content, parent_message_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		message.ID,
		message.ConversationID,
		message.SenderID,
		message.MessageType.String(),
		message.Content,
		message.ParentMessageID,
		message.Status.String(),
	).Scan(&message.CreatedAt)
}

// GetByID returns a non-deleted message.
func (r *MessageRepository) GetByID(ctx context.Context, messageID string) (*models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, message_type, content, parent_message_id,
		       status, is_edited, edited_at, created_at
		FROM messages
		WHERE id = $1 AND is_deleted = FALSE
	`
	return r.scanMessage(r.db.QueryRow(ctx, query, messageID))
}

// Exists reports whether a non-deleted message exists in the conversation.
func (r *MessageRepository) Exists(ctx context.Context, messageID, conversationID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM messages
			WHERE id = $1 AND conversation_id = $2 AND is_deleted = FALSE
		)
	`, messageID, conversationID).Scan(&exists)
	return exists, err
}

// ListByConversation pages non-deleted messages newest first.
func (r *MessageRepository) ListByConversation(
	ctx context.Context,
	conversationID string,
	limit int,
	offset int,
) ([]models.Message, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages
		WHERE conversation_id = $1 AND is_deleted = FALSE
	`, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, conversation_id, sender_id, message_type, content, parent_message_id,
		       status, is_edited, edited_at, created_at
		FROM messages
		WHERE conversation_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		message, err := r.scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, *message)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *MessageRepository) UpdateContent(ctx context.Context, messageID, content string, editedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET content = $2, is_edited = TRUE, edited_at = $3
		WHERE id = $1
	`, messageID, content, editedAt)
	return err
}

// SoftDelete tombstones the message; read queries exclude it from then on.
func (r *MessageRepository) SoftDelete(ctx context.Context, messageID string, deletedBy int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_deleted = TRUE, deleted_at = NOW(), deleted_by = $2
		WHERE id = $1
	`, messageID, deletedBy)
	return err
}

// Search matches content substrings across conversations the user is an
// active participant of. Case sensitivity follows the store's collation.
func (r *MessageRepository) Search(
	ctx context.Context,
	userID int64,
	term string,
	conversationID *string,
	limit int,
	offset int,
) ([]models.MessageSearchResult, int, error) {
	filter := `
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		JOIN conversation_participants p
		  ON p.conversation_id = m.conversation_id AND p.user_id = $1 AND p.left_at IS NULL
		JOIN users u ON u.id = m.sender_id
		WHERE m.is_deleted = FALSE
		  AND m.content LIKE '%' || $2 || '%'
		  AND ($3::text IS NULL OR m.conversation_id = $3)
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+filter, userID, term, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT m.id, m.conversation_id, m.sender_id, u.display_name, m.content, m.created_at
	` + filter + `
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, userID, term, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := make([]models.MessageSearchResult, 0)
	for rows.Next() {
		var result models.MessageSearchResult
		if err := rows.Scan(
			&result.MessageID,
			&result.ConversationID,
			&result.SenderID,
			&result.SenderName,
			&result.Content,
			&result.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *MessageRepository) AddAttachment(ctx context.Context, attachment *models.MessageAttachment) error {
	attachment.ID = uuid.NewString()

	query := `
		INSERT INTO message_attachments
			(id, message_id, attachment_type, file_name, file_url, thumbnail_url,
			 file_size, mime_type, width, height, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING uploaded_at
	`
	return r.db.QueryRow(ctx, query,
		attachment.ID,
		attachment.MessageID,
		attachment.AttachmentType.String(),
		attachment.FileName,
		attachment.FileURL,
		attachment.ThumbnailURL,
		attachment.FileSize,
		attachment.MimeType,
		attachment.Width,
		attachment.Height,
		attachment.Duration,
	).Scan(&attachment.UploadedAt)
}

func (r *MessageRepository) ListAttachments(ctx context.Context, messageIDs []string) (map[string][]models.MessageAttachment, error) {
	byMessage := make(map[string][]models.MessageAttachment)
	if len(messageIDs) == 0 {
		return byMessage, nil
	}

	query := `
		SELECT id, message_id, attachment_type, file_name, file_url, thumbnail_url,
		       file_size, mime_type, width, height, duration, uploaded_at
		FROM message_attachments
		WHERE message_id = ANY($1)
		ORDER BY uploaded_at, id
	`
	rows, err := r.db.Query(ctx, query, messageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var attachment models.MessageAttachment
		var attachmentType string
		if err := rows.Scan(
			&attachment.ID,
			&attachment.MessageID,
			&attachmentType,
			&attachment.FileName,
			&attachment.FileURL,
			&attachment.ThumbnailURL,
			&attachment.FileSize,
			&attachment.MimeType,
			&attachment.Width,
			&attachment.Height,
			&attachment.Duration,
			&attachment.UploadedAt,
		); err != nil {
			return nil, err
		}
		attachment.AttachmentType = models.ParseAttachmentType(attachmentType)
		byMessage[attachment.MessageID] = append(byMessage[attachment.MessageID], attachment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return byMessage, nil
}

// ReactionExists reports whether (message, user, reaction) is present.
func (r *MessageRepository) ReactionExists(ctx context.Context, messageID string, userID int64, reaction string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM message_reactions
			WHERE message_id = $1 AND user_id = $2 AND reaction = $3
		)
	`, messageID, userID, reaction).Scan(&exists)
	return exists, err
}

func (r *MessageRepository) InsertReaction(ctx context.Context, messageID string, userID int64, reaction string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_reactions (message_id, user_id, reaction)
		VALUES ($1, $2, $3)
	`, messageID, userID, reaction)
	return err
}

func (r *MessageRepository) DeleteReaction(ctx context.Context, messageID string, userID int64, reaction string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM message_reactions
		WHERE message_id = $1 AND user_id = $2 AND reaction = $3
	`, messageID, userID, reaction)
	return err
}

// ListReactions aggregates reactions by value, preserving reactor ids.
func (r *MessageRepository) ListReactions(ctx context.Context, messageIDs []string) (map[string][]models.ReactionAggregate, error) {
	byMessage := make(map[string][]models.ReactionAggregate)
	if len(messageIDs) == 0 {
		return byMessage, nil
	}

	query := `
		SELECT message_id, reaction, user_id
		FROM message_reactions
		WHERE message_id = ANY($1)
		ORDER BY message_id, reaction, created_at
	`
	rows, err := r.db.Query(ctx, query, messageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var messageID, reaction string
		var userID int64
		if err := rows.Scan(&messageID, &reaction, &userID); err != nil {
			return nil, err
		}

		aggregates := byMessage[messageID]
		index := -1
		for i := range aggregates {
			if aggregates[i].Reaction == reaction {
				index = i
				break
			}
		}
		if index == -1 {
			aggregates = append(aggregates, models.ReactionAggregate{Reaction: reaction, UserIDs: []int64{}})
			index = len(aggregates) - 1
		}
		aggregates[index].Count++
		aggregates[index].UserIDs = append(aggregates[index].UserIDs, userID)
		byMessage[messageID] = aggregates
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return byMessage, nil
}

// SenderNames resolves display names for the given user ids.
func (r *MessageRepository) SenderNames(ctx context.Context, userIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string)
	if len(userIDs) == 0 {
		return names, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, display_name
		FROM users
		WHERE id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}

func (r *MessageRepository) scanMessage(row pgx.Row) (*models.Message, error) {
	var message models.Message
	var messageType, status string
	err := row.Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&messageType,
		&message.Content,
		&message.ParentMessageID,
		&status,
		&message.IsEdited,
		&message.EditedAt,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	message.MessageType = models.ParseMessageType(messageType)
	message.Status = models.ParseMessageStatus(status)
	return &message, nil
}
