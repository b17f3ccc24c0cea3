package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/repository"
)

const (
	maxMessageContentLength = 4000
	messagePreviewLength    = 200
	messageEditWindow       = 24 * time.Hour
)

// Encryptor encrypts message content at rest. Plaintext flows in, ciphertext
// flows to the store.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type MessagingService struct {
	db               *pgxpool.Pool
	conversationRepo *repository.ConversationRepository
	participantRepo  *repository.ParticipantRepository
	messageRepo      *repository.MessageRepository
	encryptor        Encryptor
}

// MessageDelivery carries a sent message plus the active participants it
// should be fanned out to.
type MessageDelivery struct {
	ConversationID string
	Message        *models.MessageDetail
	RecipientIDs   []int64
}

func NewMessagingService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	participantRepo *repository.ParticipantRepository,
	messageRepo *repository.MessageRepository,
	encryptor Encryptor,
) *MessagingService {
	return &MessagingService{
		db:               db,
		conversationRepo: conversationRepo,
		participantRepo:  participantRepo,
		messageRepo:      messageRepo,
		encryptor:        encryptor,
	}
}

type AttachmentInput struct {
	AttachmentType models.AttachmentType
	FileName       string
	FileURL        string
	ThumbnailURL   *string
	FileSize       int64
	MimeType       string
	Width          *int
	Height         *int
	Duration       *int
}

type SendMessageInput struct {
	MessageType     models.MessageType
	Content         string
	ParentMessageID *string
	Encrypted       bool
	Attachments     []AttachmentInput
}

// SendMessage persists a message and its attachments, updates the
// conversation's last-message pointer, and bumps unread counters for the
// other active participants. All writes share one transaction.
func (s *MessagingService) SendMessage(
	ctx context.Context,
	actorID int64,
	conversationID string,
	input SendMessageInput,
) (*MessageDelivery, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" && len(input.Attachments) == 0 {
		return nil, ErrInvalidInput
	}
	if utf8.RuneCountInString(content) > maxMessageContentLength {
		return nil, ErrInvalidInput
	}

	if _, err := s.participantRepo.GetActive(ctx, conversationID, actorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	if input.ParentMessageID != nil {
		exists, err := s.messageRepo.Exists(ctx, *input.ParentMessageID, conversationID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrMessageNotFound
		}
	}

	preview := messagePreview(content)
	if input.Encrypted {
		if s.encryptor == nil {
			return nil, ErrInvalidInput
		}
		encrypted, err := s.encryptor.Encrypt(content)
		if err != nil {
			return nil, err
		}
		content = encrypted
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)
	txParticipantRepo := repository.NewParticipantRepository(tx)

	message := &models.Message{
		ConversationID:  conversationID,
		SenderID:        actorID,
		MessageType:     input.MessageType,
		Content:         content,
		ParentMessageID: input.ParentMessageID,
		Status:          models.MessageStatusSent,
	}
	if err := txMessageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	attachments := make([]models.MessageAttachment, 0, len(input.Attachments))
	for _, item := range input.Attachments {
		attachment := &models.MessageAttachment{
			MessageID:      message.ID,
			AttachmentType: item.AttachmentType,
			FileName:       item.FileName,
			FileURL:        item.FileURL,
			ThumbnailURL:   item.ThumbnailURL,
			FileSize:       item.FileSize,
			MimeType:       item.MimeType,
			Width:          item.Width,
			Height:         item.Height,
			Duration:       item.Duration,
		}
		if err := txMessageRepo.AddAttachment(ctx, attachment); err != nil {
			return nil, err
		}
		attachments = append(attachments, *attachment)
	}

	if err := txConversationRepo.RecordLastMessage(ctx, conversationID, message.ID, message.CreatedAt, preview); err != nil {
		return nil, err
	}
	if err := txParticipantRepo.IncrementUnreadForOthers(ctx, conversationID, actorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	recipientIDs, err := s.participantRepo.ActiveUserIDs(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	names, err := s.messageRepo.SenderNames(ctx, []int64{actorID})
	if err != nil {
		return nil, err
	}

	detail := &models.MessageDetail{
		Message:     *message,
		SenderName:  names[actorID],
		Attachments: attachments,
		Reactions:   []models.ReactionAggregate{},
	}

	return &MessageDelivery{
		ConversationID: conversationID,
		Message:        detail,
		RecipientIDs:   recipientIDs,
	}, nil
}

// ListMessages pages the conversation newest first, hydrates sender names,
// attachments, and reaction aggregates, and returns the page in
// chronological order.
func (s *MessagingService) ListMessages(
	ctx context.Context,
	actorID int64,
	conversationID string,
	page int,
	limit int,
) ([]models.MessageDetail, int, error) {
	if page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	if _, err := s.participantRepo.GetActive(ctx, conversationID, actorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrForbidden
		}
		return nil, 0, err
	}

	messages, total, err := s.messageRepo.ListByConversation(ctx, conversationID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	details, total, err := s.hydrateMessages(ctx, messages, total)
	if err != nil {
		return nil, 0, err
	}

	// The store pages newest first; the client reads oldest first.
	for i, j := 0, len(details)-1; i < j; i, j = i+1, j-1 {
		details[i], details[j] = details[j], details[i]
	}

	return details, total, nil
}

// EditMessage rewrites content. Only the sender may edit, and only within
// the edit window after sending.
func (s *MessagingService) EditMessage(
	ctx context.Context,
	actorID int64,
	messageID string,
	content string,
) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageContentLength {
		return nil, ErrInvalidInput
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if message.SenderID != actorID {
		return nil, ErrForbidden
	}
	if time.Since(message.CreatedAt) >= messageEditWindow {
		return nil, ErrEditWindowExpired
	}

	editedAt := time.Now().UTC()
	if err := s.messageRepo.UpdateContent(ctx, messageID, content, editedAt); err != nil {
		return nil, err
	}

	message.Content = content
	message.IsEdited = true
	message.EditedAt = &editedAt
	return message, nil
}

// DeleteMessage tombstones the message and decrements the conversation's
// message count. Only the sender may delete.
func (s *MessagingService) DeleteMessage(ctx context.Context, actorID int64, messageID string) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.SenderID != actorID {
		return ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	if err := txMessageRepo.SoftDelete(ctx, messageID, actorID); err != nil {
		return err
	}
	if err := txConversationRepo.DecrementMessageCount(ctx, message.ConversationID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ToggleReaction adds the reaction if the actor has not reacted with that
// value yet, otherwise removes it. Returns the message's fresh aggregates.
func (s *MessagingService) ToggleReaction(
	ctx context.Context,
	actorID int64,
	messageID string,
	reaction string,
) ([]models.ReactionAggregate, bool, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return nil, false, ErrInvalidInput
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrMessageNotFound
		}
		return nil, false, err
	}

	if _, err := s.participantRepo.GetActive(ctx, message.ConversationID, actorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrForbidden
		}
		return nil, false, err
	}

	exists, err := s.messageRepo.ReactionExists(ctx, messageID, actorID, reaction)
	if err != nil {
		return nil, false, err
	}

	added := !exists
	if exists {
		err = s.messageRepo.DeleteReaction(ctx, messageID, actorID, reaction)
	} else {
		err = s.messageRepo.InsertReaction(ctx, messageID, actorID, reaction)
	}
	if err != nil {
		return nil, false, err
	}

	aggregates, err := s.messageRepo.ListReactions(ctx, []string{messageID})
	if err != nil {
		return nil, false, err
	}

	result := aggregates[messageID]
	if result == nil {
		result = []models.ReactionAggregate{}
	}
	return result, added, nil
}

// SearchMessages matches a content substring across the actor's
// conversations, optionally narrowed to one conversation.
func (s *MessagingService) SearchMessages(
	ctx context.Context,
	actorID int64,
	term string,
	conversationID *string,
	page int,
	limit int,
) ([]models.MessageSearchResult, int, error) {
	term = strings.TrimSpace(term)
	if term == "" || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	results, total, err := s.messageRepo.Search(ctx, actorID, term, conversationID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	for i := range results {
		results[i].Snippet = messagePreview(results[i].Content)
	}
	return results, total, nil
}

func (s *MessagingService) hydrateMessages(
	ctx context.Context,
	messages []models.Message,
	total int,
) ([]models.MessageDetail, int, error) {
	messageIDs := make([]string, 0, len(messages))
	senderIDs := make([]int64, 0, len(messages))
	seenSenders := make(map[int64]struct{}, len(messages))
	for _, message := range messages {
		messageIDs = append(messageIDs, message.ID)
		if _, ok := seenSenders[message.SenderID]; !ok {
			seenSenders[message.SenderID] = struct{}{}
			senderIDs = append(senderIDs, message.SenderID)
		}
	}

	attachments, err := s.messageRepo.ListAttachments(ctx, messageIDs)
	if err != nil {
		return nil, 0, err
	}
	reactions, err := s.messageRepo.ListReactions(ctx, messageIDs)
	if err != nil {
		return nil, 0, err
	}
	names, err := s.messageRepo.SenderNames(ctx, senderIDs)
	if err != nil {
		return nil, 0, err
	}

	details := make([]models.MessageDetail, 0, len(messages))
	for _, message := range messages {
		detail := models.MessageDetail{
			Message:     message,
			SenderName:  names[message.SenderID],
			Attachments: attachments[message.ID],
			Reactions:   reactions[message.ID],
		}
		if detail.Attachments == nil {
			detail.Attachments = []models.MessageAttachment{}
		}
		if detail.Reactions == nil {
			detail.Reactions = []models.ReactionAggregate{}
		}
		details = append(details, detail)
	}

	return details, total, nil
}

// messagePreview truncates content to the stored preview length, counting
// runes so multibyte text is never split.
func messagePreview(content string) string {
	if utf8.RuneCountInString(content) <= messagePreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:messagePreviewLength])
}
