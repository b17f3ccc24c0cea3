package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/repository"
)

const dispatchBatchSize = 100

type scheduledSender interface {
	SendMessage(ctx context.Context, actorID int64, conversationID string, input SendMessageInput) (*MessageDelivery, error)
}

type ScheduledMessageService struct {
	scheduledRepo   *repository.ScheduledMessageRepository
	participantRepo *repository.ParticipantRepository
	sender          scheduledSender
}

func NewScheduledMessageService(
	scheduledRepo *repository.ScheduledMessageRepository,
	participantRepo *repository.ParticipantRepository,
	sender scheduledSender,
) *ScheduledMessageService {
	return &ScheduledMessageService{
		scheduledRepo:   scheduledRepo,
		participantRepo: participantRepo,
		sender:          sender,
	}
}

type ScheduleMessageInput struct {
	ConversationID string
	MessageType    models.MessageType
	Content        string
	ScheduledAt    time.Time
	Frequency      models.RecurrenceFrequency
	Interval       int
}

// ScheduleMessage queues a message for future delivery. Recurring schedules
// precompute their next occurrence from the recurrence rule.
func (s *ScheduledMessageService) ScheduleMessage(
	ctx context.Context,
	actorID int64,
	input ScheduleMessageInput,
) (*models.ScheduledMessage, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageContentLength {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}
	if input.Interval <= 0 {
		input.Interval = 1
	}

	if _, err := s.participantRepo.GetActive(ctx, input.ConversationID, actorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	scheduled := &models.ScheduledMessage{
		SenderID:       actorID,
		ConversationID: input.ConversationID,
		MessageType:    input.MessageType,
		Content:        content,
		ScheduledAt:    input.ScheduledAt.UTC(),
		Frequency:      input.Frequency,
		Interval:       input.Interval,
		NextOccurrence: NextDueDate(input.ScheduledAt.UTC(), input.Frequency, input.Interval),
		IsRecurring:    input.Frequency.IsRecurring(),
		Status:         models.ScheduledStatusPending,
	}
	if err := s.scheduledRepo.Create(ctx, scheduled); err != nil {
		return nil, err
	}
	return scheduled, nil
}

func (s *ScheduledMessageService) GetScheduledMessage(
	ctx context.Context,
	actorID int64,
	scheduledMessageID string,
) (*models.ScheduledMessage, error) {
	scheduled, err := s.scheduledRepo.GetForSender(ctx, scheduledMessageID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return scheduled, nil
}

func (s *ScheduledMessageService) ListScheduledMessages(
	ctx context.Context,
	actorID int64,
	conversationID *string,
	page int,
	limit int,
) ([]models.ScheduledMessage, int, error) {
	if page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.scheduledRepo.ListForSender(ctx, actorID, conversationID, limit, (page-1)*limit)
}

type UpdateScheduledMessageInput struct {
	Content     *string
	MessageType *models.MessageType
	ScheduledAt *time.Time
	Frequency   *models.RecurrenceFrequency
	Interval    *int
}

// UpdateScheduledMessage edits a schedule that has not fired yet. Pending
// and paused schedules are editable; sent, failed, and cancelled are not.
func (s *ScheduledMessageService) UpdateScheduledMessage(
	ctx context.Context,
	actorID int64,
	scheduledMessageID string,
	input UpdateScheduledMessageInput,
) (*models.ScheduledMessage, error) {
	scheduled, err := s.GetScheduledMessage(ctx, actorID, scheduledMessageID)
	if err != nil {
		return nil, err
	}
	if scheduled.Status != models.ScheduledStatusPending && scheduled.Status != models.ScheduledStatusPaused {
		return nil, ErrInvalidStateTransition
	}

	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" || utf8.RuneCountInString(content) > maxMessageContentLength {
			return nil, ErrInvalidInput
		}
		scheduled.Content = content
	}
	if input.MessageType != nil {
		scheduled.MessageType = *input.MessageType
	}
	if input.ScheduledAt != nil {
		if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
			return nil, ErrInvalidInput
		}
		scheduled.ScheduledAt = input.ScheduledAt.UTC()
	}
	if input.Frequency != nil {
		scheduled.Frequency = *input.Frequency
		scheduled.IsRecurring = input.Frequency.IsRecurring()
	}
	if input.Interval != nil {
		if *input.Interval <= 0 {
			return nil, ErrInvalidInput
		}
		scheduled.Interval = *input.Interval
	}
	scheduled.NextOccurrence = NextDueDate(scheduled.ScheduledAt, scheduled.Frequency, scheduled.Interval)

	if err := s.scheduledRepo.Update(ctx, scheduled); err != nil {
		return nil, err
	}
	return scheduled, nil
}

// CancelScheduledMessage cancels a pending or paused schedule.
func (s *ScheduledMessageService) CancelScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string) error {
	return s.transition(ctx, actorID, scheduledMessageID, models.ScheduledStatusCancelled,
		models.ScheduledStatusPending, models.ScheduledStatusPaused)
}

// PauseScheduledMessage pauses a pending recurring schedule. One-shot
// schedules cannot be paused.
func (s *ScheduledMessageService) PauseScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string) error {
	scheduled, err := s.GetScheduledMessage(ctx, actorID, scheduledMessageID)
	if err != nil {
		return err
	}
	if !scheduled.IsRecurring {
		return ErrInvalidStateTransition
	}
	if scheduled.Status != models.ScheduledStatusPending {
		return ErrInvalidStateTransition
	}
	return s.scheduledRepo.UpdateStatus(ctx, scheduledMessageID, models.ScheduledStatusPaused)
}

// ResumeScheduledMessage moves a paused schedule back to pending.
func (s *ScheduledMessageService) ResumeScheduledMessage(ctx context.Context, actorID int64, scheduledMessageID string) error {
	return s.transition(ctx, actorID, scheduledMessageID, models.ScheduledStatusPending,
		models.ScheduledStatusPaused)
}

func (s *ScheduledMessageService) transition(
	ctx context.Context,
	actorID int64,
	scheduledMessageID string,
	next models.ScheduledMessageStatus,
	allowed ...models.ScheduledMessageStatus,
) error {
	scheduled, err := s.GetScheduledMessage(ctx, actorID, scheduledMessageID)
	if err != nil {
		return err
	}
	for _, status := range allowed {
		if scheduled.Status == status {
			return s.scheduledRepo.UpdateStatus(ctx, scheduledMessageID, next)
		}
	}
	return ErrInvalidStateTransition
}

// ProcessDue dispatches pending schedules whose time has passed. One-shot
// schedules are marked sent; recurring ones advance to their next
// occurrence and stay pending. A failed send marks the schedule failed
// without stopping the batch. Returns the deliveries for fan-out.
func (s *ScheduledMessageService) ProcessDue(ctx context.Context, now time.Time) ([]MessageDelivery, error) {
	due, err := s.scheduledRepo.ListDue(ctx, now, dispatchBatchSize)
	if err != nil {
		return nil, err
	}

	deliveries := make([]MessageDelivery, 0, len(due))
	for _, scheduled := range due {
		delivery, err := s.sender.SendMessage(ctx, scheduled.SenderID, scheduled.ConversationID, SendMessageInput{
			MessageType: scheduled.MessageType,
			Content:     scheduled.Content,
		})
		if err != nil {
			if updateErr := s.scheduledRepo.UpdateStatus(ctx, scheduled.ID, models.ScheduledStatusFailed); updateErr != nil {
				return deliveries, updateErr
			}
			continue
		}
		deliveries = append(deliveries, *delivery)

		if scheduled.IsRecurring && scheduled.NextOccurrence != nil {
			next := *scheduled.NextOccurrence
			following := NextDueDate(next, scheduled.Frequency, scheduled.Interval)
			if err := s.scheduledRepo.Advance(ctx, scheduled.ID, next, following); err != nil {
				return deliveries, err
			}
			continue
		}
		if err := s.scheduledRepo.UpdateStatus(ctx, scheduled.ID, models.ScheduledStatusSent); err != nil {
			return deliveries, err
		}
	}

	return deliveries, nil
}
