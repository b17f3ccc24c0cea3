package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type ParticipantRepository struct {
	db DBTX
}

func NewParticipantRepository(db DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Insert(ctx context.Context, participant *models.ConversationParticipant) error {
	query := `
		INSERT INTO conversation_participants (conversation_id, user_id, role, unread_count)
		VALUES ($1, $2, $3, 0)
		RETURNING joined_at
	`
	return r.db.QueryRow(ctx, query,
		participant.ConversationID,
		participant.UserID,
		participant.Role.String(),
	).Scan(&participant.JoinedAt)
}

// Get returns the participant row whether or not they have left.
func (r *ParticipantRepository) Get(ctx context.Context, conversationID string, userID int64) (*models.ConversationParticipant, error) {
	query := `
		SELECT conversation_id, user_id, role, joined_at, left_at, unread_count,
		       is_archived, is_pinned, is_muted, muted_until, last_read_at
		FROM conversation_participants
		WHERE conversation_id = $1 AND user_id = $2
	`
	return r.scanParticipant(r.db.QueryRow(ctx, query, conversationID, userID))
}

// GetActive returns the participant only if they have not left.
func (r *ParticipantRepository) GetActive(ctx context.Context, conversationID string, userID int64) (*models.ConversationParticipant, error) {
	query := `
		SELECT conversation_id, user_id, role, joined_at, left_at, unread_count,
		       is_archived, is_pinned, is_muted, muted_until, last_read_at
		FROM conversation_participants
		WHERE conversation_id = $1 AND user_id = $2 AND left_at IS NULL
	`
	return r.scanParticipant(r.db.QueryRow(ctx, query, conversationID, userID))
}

// ListActive returns the active roster with display names, oldest join first.
func (r *ParticipantRepository) ListActive(ctx context.Context, conversationID string) ([]models.ParticipantDetail, error) {
	query := `
		SELECT p.conversation_id, p.user_id, p.role, p.joined_at, p.left_at, p.unread_count,
		       p.is_archived, p.is_pinned, p.is_muted, p.muted_until, p.last_read_at,
		       u.display_name
		FROM conversation_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.conversation_id = $1 AND p.left_at IS NULL
		ORDER BY p.joined_at, p.user_id
	`
	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.ParticipantDetail, 0)
	for rows.Next() {
		var detail models.ParticipantDetail
		var role string
		if err := rows.Scan(
			&detail.ConversationID,
			&detail.UserID,
			&role,
			&detail.JoinedAt,
			&detail.LeftAt,
			&detail.UnreadCount,
			&detail.IsArchived,
			&detail.IsPinned,
			&detail.IsMuted,
			&detail.MutedUntil,
			&detail.LastReadAt,
			&detail.DisplayName,
		); err != nil {
			return nil, err
		}
		detail.Role = models.ParseConversationRole(role)
		participants = append(participants, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return participants, nil
}

// Reactivate resets a previously-left participant to a fresh membership:
// left_at cleared, role back to Member, unread counter zeroed.
func (r *ParticipantRepository) Reactivate(ctx context.Context, conversationID string, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET left_at = NULL,
		    joined_at = NOW(),
		    role = 'Member',
		    unread_count = 0
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID)
	return err
}

// MarkLeft soft-removes the participant; history is retained.
func (r *ParticipantRepository) MarkLeft(ctx context.Context, conversationID string, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET left_at = NOW()
		WHERE conversation_id = $1 AND user_id = $2 AND left_at IS NULL
	`, conversationID, userID)
	return err
}

func (r *ParticipantRepository) SetArchived(ctx context.Context, conversationID string, userID int64, archived bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET is_archived = $3
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID, archived)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ParticipantRepository) SetPinned(ctx context.Context, conversationID string, userID int64, pinned bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET is_pinned = $3
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID, pinned)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ParticipantRepository) SetMuted(ctx context.Context, conversationID string, userID int64, muted bool, mutedUntil *time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET is_muted = $3, muted_until = $4
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID, muted, mutedUntil)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementUnreadForOthers bumps the unread counter for every active
// participant except the sender.
func (r *ParticipantRepository) IncrementUnreadForOthers(ctx context.Context, conversationID string, senderID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET unread_count = unread_count + 1
		WHERE conversation_id = $1 AND user_id <> $2 AND left_at IS NULL
	`, conversationID, senderID)
	return err
}

// ResetUnread zeroes the reader's counter and stamps last_read_at.
func (r *ParticipantRepository) ResetUnread(ctx context.Context, conversationID string, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET unread_count = 0, last_read_at = NOW()
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID)
	return err
}

// ActiveUserIDs returns ids of participants who have not left.
func (r *ParticipantRepository) ActiveUserIDs(ctx context.Context, conversationID string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id
		FROM conversation_participants
		WHERE conversation_id = $1 AND left_at IS NULL
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *ParticipantRepository) scanParticipant(row pgx.Row) (*models.ConversationParticipant, error) {
	var participant models.ConversationParticipant
	var role string
	err := row.Scan(
		&participant.ConversationID,
		&participant.UserID,
		&role,
		&participant.JoinedAt,
		&participant.LeftAt,
		&participant.UnreadCount,
		&participant.IsArchived,
		&participant.IsPinned,
		&participant.IsMuted,
		&participant.MutedUntil,
		&participant.LastReadAt,
	)
	if err != nil {
		return nil, err
	}
	participant.Role = models.ParseConversationRole(role)
	return &participant, nil
}
