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

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	FilterExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type ConversationService struct {
	db               *pgxpool.Pool
	conversationRepo *repository.ConversationRepository
	participantRepo  *repository.ParticipantRepository
	userRepo         userReader
}

func NewConversationService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	participantRepo *repository.ParticipantRepository,
	userRepo userReader,
) *ConversationService {
	return &ConversationService{
		db:               db,
		conversationRepo: conversationRepo,
		participantRepo:  participantRepo,
		userRepo:         userRepo,
	}
}

type CreateConversationInput struct {
	ConversationType models.ConversationType
	Title            *string
	Description      *string
	ImageURL         *string
	ParticipantIDs   []int64
}

// CreateConversation creates a conversation with the actor as owner. For
// direct conversations an existing pair conversation is returned instead of
// creating a duplicate. The lookup and insert are not atomic, so two
// concurrent first messages between the same pair can still produce two rows.
func (s *ConversationService) CreateConversation(
	ctx context.Context,
	actorID int64,
	input CreateConversationInput,
) (*models.ConversationDetail, error) {
	others := dedupeUserIDs(input.ParticipantIDs, actorID)
	if len(others) == 0 {
		return nil, ErrInvalidInput
	}

	if input.ConversationType == models.ConversationTypeDirect {
		if len(others) != 1 {
			return nil, ErrInvalidInput
		}

		existing, err := s.conversationRepo.FindDirectBetween(ctx, actorID, others[0])
		if err == nil {
			return s.GetConversation(ctx, actorID, existing.ID)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	found, err := s.userRepo.FilterExistingIDs(ctx, others)
	if err != nil {
		return nil, err
	}
	if len(found) != len(others) {
		return nil, ErrUserNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)
	txParticipantRepo := repository.NewParticipantRepository(tx)

	conversation := &models.Conversation{
		ConversationType: input.ConversationType,
		Title:            input.Title,
		Description:      input.Description,
		ImageURL:         input.ImageURL,
		CreatedBy:        actorID,
	}
	if err := txConversationRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}

	owner := &models.ConversationParticipant{
		ConversationID: conversation.ID,
		UserID:         actorID,
		Role:           models.RoleOwner,
	}
	if err := txParticipantRepo.Insert(ctx, owner); err != nil {
		return nil, err
	}

	for _, userID := range others {
		member := &models.ConversationParticipant{
			ConversationID: conversation.ID,
			UserID:         userID,
			Role:           models.RoleMember,
		}
		if err := txParticipantRepo.Insert(ctx, member); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.GetConversation(ctx, actorID, conversation.ID)
}

// GetConversation returns the conversation as seen by the actor. The actor
// must be an active participant.
func (s *ConversationService) GetConversation(
	ctx context.Context,
	actorID int64,
	conversationID string,
) (*models.ConversationDetail, error) {
	participant, err := s.participantRepo.GetActive(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	roster, err := s.participantRepo.ListActive(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	detail := buildConversationDetail(conversation, participant, roster, actorID)
	return &detail, nil
}

func (s *ConversationService) ListConversations(
	ctx context.Context,
	actorID int64,
	archived bool,
	conversationType *models.ConversationType,
	page int,
	limit int,
) ([]models.ConversationDetail, int, error) {
	if page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	conversations, total, err := s.conversationRepo.ListForUser(
		ctx,
		actorID,
		archived,
		conversationType,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		return nil, 0, err
	}

	details := make([]models.ConversationDetail, 0, len(conversations))
	for i := range conversations {
		participant, err := s.participantRepo.Get(ctx, conversations[i].ID, actorID)
		if err != nil {
			return nil, 0, err
		}
		roster, err := s.participantRepo.ListActive(ctx, conversations[i].ID)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, buildConversationDetail(&conversations[i], participant, roster, actorID))
	}

	return details, total, nil
}

type UpdateConversationInput struct {
	Title       *string
	Description *string
	ImageURL    *string
}

// UpdateConversation changes group metadata. Owner or admin only.
func (s *ConversationService) UpdateConversation(
	ctx context.Context,
	actorID int64,
	conversationID string,
	input UpdateConversationInput,
) (*models.ConversationDetail, error) {
	participant, err := s.participantRepo.GetActive(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if participant.Role != models.RoleOwner && participant.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	if err := s.conversationRepo.UpdateMetadata(ctx, conversationID, input.Title, input.Description, input.ImageURL); err != nil {
		return nil, err
	}

	return s.GetConversation(ctx, actorID, conversationID)
}

// AddParticipants adds users to a group conversation. Users who previously
// left are reactivated with a fresh membership; active members are skipped.
func (s *ConversationService) AddParticipants(
	ctx context.Context,
	actorID int64,
	conversationID string,
	userIDs []int64,
) (*models.ConversationDetail, error) {
	userIDs = dedupeUserIDs(userIDs, 0)
	if len(userIDs) == 0 {
		return nil, ErrInvalidInput
	}

	actor, err := s.participantRepo.GetActive(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conversation.ConversationType == models.ConversationTypeDirect {
		return nil, ErrInvalidStateTransition
	}
	if actor.Role != models.RoleOwner && actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	found, err := s.userRepo.FilterExistingIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(userIDs) {
		return nil, ErrUserNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txParticipantRepo := repository.NewParticipantRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	for _, userID := range userIDs {
		existing, err := txParticipantRepo.Get(ctx, conversationID, userID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, err
			}
			member := &models.ConversationParticipant{
				ConversationID: conversationID,
				UserID:         userID,
				Role:           models.RoleMember,
			}
			if err := txParticipantRepo.Insert(ctx, member); err != nil {
				return nil, err
			}
			continue
		}
		if existing.Active() {
			continue
		}
		if err := txParticipantRepo.Reactivate(ctx, conversationID, userID); err != nil {
			return nil, err
		}
	}

	if err := txConversationRepo.Touch(ctx, conversationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.GetConversation(ctx, actorID, conversationID)
}

// RemoveParticipant soft-removes a member of a group conversation. Anyone may
// leave themselves; owner and admins may remove others. The owner can only be
// removed by leaving. Direct conversations keep their fixed pair.
func (s *ConversationService) RemoveParticipant(
	ctx context.Context,
	actorID int64,
	conversationID string,
	userID int64,
) error {
	actor, err := s.participantRepo.GetActive(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConversationNotFound
		}
		return err
	}
	if conversation.ConversationType == models.ConversationTypeDirect {
		return ErrInvalidStateTransition
	}

	target, err := s.participantRepo.GetActive(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}

	if actorID != userID {
		if actor.Role != models.RoleOwner && actor.Role != models.RoleAdmin {
			return ErrForbidden
		}
		if target.Role == models.RoleOwner {
			return ErrForbidden
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txParticipantRepo := repository.NewParticipantRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	if err := txParticipantRepo.MarkLeft(ctx, conversationID, userID); err != nil {
		return err
	}
	if err := txConversationRepo.Touch(ctx, conversationID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *ConversationService) SetArchived(ctx context.Context, actorID int64, conversationID string, archived bool) error {
	return s.setFlag(ctx, actorID, conversationID, func(c context.Context) (bool, error) {
		return s.participantRepo.SetArchived(c, conversationID, actorID, archived)
	})
}

func (s *ConversationService) SetPinned(ctx context.Context, actorID int64, conversationID string, pinned bool) error {
	return s.setFlag(ctx, actorID, conversationID, func(c context.Context) (bool, error) {
		return s.participantRepo.SetPinned(c, conversationID, actorID, pinned)
	})
}

func (s *ConversationService) SetMuted(ctx context.Context, actorID int64, conversationID string, muted bool, mutedUntil *time.Time) error {
	return s.setFlag(ctx, actorID, conversationID, func(c context.Context) (bool, error) {
		return s.participantRepo.SetMuted(c, conversationID, actorID, muted, mutedUntil)
	})
}

// MarkRead zeroes the actor's unread counter.
func (s *ConversationService) MarkRead(ctx context.Context, actorID int64, conversationID string) error {
	_, err := s.participantRepo.GetActive(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}
	return s.participantRepo.ResetUnread(ctx, conversationID, actorID)
}

func (s *ConversationService) setFlag(
	ctx context.Context,
	actorID int64,
	conversationID string,
	update func(context.Context) (bool, error),
) error {
	_, err := s.participantRepo.GetActive(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}

	updated, err := update(ctx)
	if err != nil {
		return err
	}
	if !updated {
		return ErrForbidden
	}
	return nil
}

// dedupeUserIDs removes duplicates, non-positive ids, and the excluded id
// while preserving order.
func dedupeUserIDs(ids []int64, exclude int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// buildConversationDetail merges the conversation with the requesting user's
// participant flags and the active roster.
func buildConversationDetail(
	conversation *models.Conversation,
	participant *models.ConversationParticipant,
	roster []models.ParticipantDetail,
	actorID int64,
) models.ConversationDetail {
	detail := models.ConversationDetail{
		Conversation: *conversation,
		Participants: roster,
	}
	if participant != nil {
		detail.UnreadCount = participant.UnreadCount
		detail.IsArchived = participant.IsArchived
		detail.IsPinned = participant.IsPinned
		detail.IsMuted = participant.IsMuted
	}
	detail.DisplayTitle = displayTitle(conversation, roster, actorID)
	return detail
}

// displayTitle prefers the stored title; untitled direct conversations fall
// back to the other participant's display name.
func displayTitle(conversation *models.Conversation, roster []models.ParticipantDetail, actorID int64) string {
	if conversation.Title != nil && strings.TrimSpace(*conversation.Title) != "" {
		return *conversation.Title
	}
	if conversation.ConversationType == models.ConversationTypeDirect {
		for _, member := range roster {
			if member.UserID != actorID {
				return member.DisplayName
			}
		}
	}
	return "Conversation"
}
