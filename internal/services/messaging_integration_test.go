package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestDirectConversationIsDeduplicated(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	conversations := newIntegrationConversationService(pool)

	aliceID := createTestUser(t, ctx, pool, "Alice")
	bobID := createTestUser(t, ctx, pool, "Bob")
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, aliceID, bobID) })

	first, err := conversations.CreateConversation(ctx, aliceID, CreateConversationInput{
		ConversationType: models.ConversationTypeDirect,
		ParticipantIDs:   []int64{bobID},
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	second, err := conversations.CreateConversation(ctx, bobID, CreateConversationInput{
		ConversationType: models.ConversationTypeDirect,
		ParticipantIDs:   []int64{aliceID},
	})
	if err != nil {
		t.Fatalf("CreateConversation (reverse): %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected the same conversation, got %q and %q", first.ID, second.ID)
	}
	if second.DisplayTitle != "Alice" {
		t.Fatalf("expected Bob to see %q, got %q", "Alice", second.DisplayTitle)
	}

	// The pair is fixed: neither member can be removed, not even by the owner.
	if err := conversations.RemoveParticipant(ctx, aliceID, first.ID, bobID); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition removing from a direct conversation, got %v", err)
	}
	if err := conversations.RemoveParticipant(ctx, bobID, first.ID, bobID); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition leaving a direct conversation, got %v", err)
	}

	detail, err := conversations.GetConversation(ctx, aliceID, first.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(detail.Participants) != 2 {
		t.Fatalf("expected 2 active participants, got %d", len(detail.Participants))
	}
}

func TestListMessagesReturnsChronologicalPage(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	conversations := newIntegrationConversationService(pool)
	messaging := newIntegrationMessagingService(pool)

	aliceID := createTestUser(t, ctx, pool, "Alice")
	bobID := createTestUser(t, ctx, pool, "Bob")
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, aliceID, bobID) })

	conversation, err := conversations.CreateConversation(ctx, aliceID, CreateConversationInput{
		ConversationType: models.ConversationTypeDirect,
		ParticipantIDs:   []int64{bobID},
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	contents := []string{"first walk", "second walk", "third walk"}
	for _, content := range contents {
		if _, err := messaging.SendMessage(ctx, aliceID, conversation.ID, SendMessageInput{
			MessageType: models.MessageTypeText,
			Content:     content,
		}); err != nil {
			t.Fatalf("SendMessage(%q): %v", content, err)
		}
	}

	messages, total, err := messaging.ListMessages(ctx, bobID, conversation.ID, 1, 50)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if total != len(contents) {
		t.Fatalf("expected total %d, got %d", len(contents), total)
	}
	if len(messages) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(messages))
	}
	for i, content := range contents {
		if messages[i].Content != content {
			t.Fatalf("expected oldest-first order %v, got %q at index %d", contents, messages[i].Content, i)
		}
	}

	// A smaller page holds the newest messages, still oldest first within it.
	page, _, err := messaging.ListMessages(ctx, bobID, conversation.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListMessages (limit 2): %v", err)
	}
	if len(page) != 2 || page[0].Content != "second walk" || page[1].Content != "third walk" {
		t.Fatalf("unexpected first page: %+v", page)
	}
}

func TestEditMessageRespectsEditWindow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	conversations := newIntegrationConversationService(pool)
	messaging := newIntegrationMessagingService(pool)

	aliceID := createTestUser(t, ctx, pool, "Alice")
	bobID := createTestUser(t, ctx, pool, "Bob")
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, aliceID, bobID) })

	conversation, err := conversations.CreateConversation(ctx, aliceID, CreateConversationInput{
		ConversationType: models.ConversationTypeDirect,
		ParticipantIDs:   []int64{bobID},
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	delivery, err := messaging.SendMessage(ctx, aliceID, conversation.ID, SendMessageInput{
		MessageType: models.MessageTypeText,
		Content:     "original",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	messageID := delivery.Message.ID

	edited, err := messaging.EditMessage(ctx, aliceID, messageID, "fresh edit")
	if err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	if edited.Content != "fresh edit" || !edited.IsEdited {
		t.Fatalf("unexpected edited message: %+v", edited)
	}

	if _, err := messaging.EditMessage(ctx, bobID, messageID, "not mine"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-sender, got %v", err)
	}

	// Age the message past the window.
	if _, err := pool.Exec(ctx, "UPDATE messages SET created_at = NOW() - INTERVAL '24 hours' WHERE id = $1", messageID); err != nil {
		t.Fatalf("age message: %v", err)
	}
	if _, err := messaging.EditMessage(ctx, aliceID, messageID, "too late"); err != ErrEditWindowExpired {
		t.Fatalf("expected ErrEditWindowExpired, got %v", err)
	}
}

func TestGroupParticipantLeaveAndReactivate(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	conversations := newIntegrationConversationService(pool)

	ownerID := createTestUser(t, ctx, pool, "Owner")
	memberID := createTestUser(t, ctx, pool, "Member")
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, ownerID, memberID) })

	title := "Park crew"
	group, err := conversations.CreateConversation(ctx, ownerID, CreateConversationInput{
		ConversationType: models.ConversationTypeGroup,
		Title:            &title,
		ParticipantIDs:   []int64{memberID},
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	if err := conversations.RemoveParticipant(ctx, memberID, group.ID, memberID); err != nil {
		t.Fatalf("RemoveParticipant (self-leave): %v", err)
	}
	if _, err := conversations.GetConversation(ctx, memberID, group.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden after leaving, got %v", err)
	}

	if _, err := conversations.AddParticipants(ctx, ownerID, group.ID, []int64{memberID}); err != nil {
		t.Fatalf("AddParticipants (reactivate): %v", err)
	}

	detail, err := conversations.GetConversation(ctx, memberID, group.ID)
	if err != nil {
		t.Fatalf("GetConversation after reactivation: %v", err)
	}
	if detail.UnreadCount != 0 {
		t.Fatalf("expected unread reset on reactivation, got %d", detail.UnreadCount)
	}

	// The owner cannot be removed by another member.
	if err := conversations.RemoveParticipant(ctx, memberID, group.ID, ownerID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden removing the owner, got %v", err)
	}
}

func TestSendMessageUpdatesCountersAndReactions(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	conversations := newIntegrationConversationService(pool)
	messaging := newIntegrationMessagingService(pool)

	aliceID := createTestUser(t, ctx, pool, "Alice")
	bobID := createTestUser(t, ctx, pool, "Bob")
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, aliceID, bobID) })

	conversation, err := conversations.CreateConversation(ctx, aliceID, CreateConversationInput{
		ConversationType: models.ConversationTypeDirect,
		ParticipantIDs:   []int64{bobID},
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	delivery, err := messaging.SendMessage(ctx, aliceID, conversation.ID, SendMessageInput{
		MessageType: models.MessageTypeText,
		Content:     "Dinner time for Rex",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(delivery.RecipientIDs) != 2 {
		t.Fatalf("expected 2 recipients, got %v", delivery.RecipientIDs)
	}

	bobView, err := conversations.GetConversation(ctx, bobID, conversation.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if bobView.UnreadCount != 1 {
		t.Fatalf("expected 1 unread for recipient, got %d", bobView.UnreadCount)
	}
	if bobView.MessageCount != 1 {
		t.Fatalf("expected message count 1, got %d", bobView.MessageCount)
	}
	if bobView.LastMessagePreview == nil || *bobView.LastMessagePreview != "Dinner time for Rex" {
		t.Fatalf("unexpected preview: %v", bobView.LastMessagePreview)
	}

	if err := conversations.MarkRead(ctx, bobID, conversation.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	bobView, err = conversations.GetConversation(ctx, bobID, conversation.ID)
	if err != nil {
		t.Fatalf("GetConversation after read: %v", err)
	}
	if bobView.UnreadCount != 0 {
		t.Fatalf("expected unread reset, got %d", bobView.UnreadCount)
	}

	messageID := delivery.Message.ID
	aggregates, added, err := messaging.ToggleReaction(ctx, bobID, messageID, "🐾")
	if err != nil {
		t.Fatalf("ToggleReaction (add): %v", err)
	}
	if !added || len(aggregates) != 1 || aggregates[0].Count != 1 {
		t.Fatalf("unexpected aggregates after add: added=%v %+v", added, aggregates)
	}

	aggregates, added, err = messaging.ToggleReaction(ctx, bobID, messageID, "🐾")
	if err != nil {
		t.Fatalf("ToggleReaction (remove): %v", err)
	}
	if added || len(aggregates) != 0 {
		t.Fatalf("unexpected aggregates after remove: added=%v %+v", added, aggregates)
	}

	if err := messaging.DeleteMessage(ctx, aliceID, messageID); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	aliceView, err := conversations.GetConversation(ctx, aliceID, conversation.ID)
	if err != nil {
		t.Fatalf("GetConversation after delete: %v", err)
	}
	if aliceView.MessageCount != 0 {
		t.Fatalf("expected message count back to 0, got %d", aliceView.MessageCount)
	}
}

func TestScheduledMessageLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	conversations := newIntegrationConversationService(pool)
	messaging := newIntegrationMessagingService(pool)
	scheduler := NewScheduledMessageService(
		repository.NewScheduledMessageRepository(pool),
		repository.NewParticipantRepository(pool),
		messaging,
	)

	aliceID := createTestUser(t, ctx, pool, "Alice")
	bobID := createTestUser(t, ctx, pool, "Bob")
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, aliceID, bobID) })

	conversation, err := conversations.CreateConversation(ctx, aliceID, CreateConversationInput{
		ConversationType: models.ConversationTypeDirect,
		ParticipantIDs:   []int64{bobID},
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	scheduled, err := scheduler.ScheduleMessage(ctx, aliceID, ScheduleMessageInput{
		ConversationID: conversation.ID,
		MessageType:    models.MessageTypeText,
		Content:        "Medication reminder",
		ScheduledAt:    time.Now().UTC().Add(time.Minute),
		Frequency:      models.FrequencyDaily,
		Interval:       1,
	})
	if err != nil {
		t.Fatalf("ScheduleMessage: %v", err)
	}
	if scheduled.Status != models.ScheduledStatusPending || !scheduled.IsRecurring {
		t.Fatalf("unexpected schedule: %+v", scheduled)
	}
	if scheduled.NextOccurrence == nil {
		t.Fatal("expected next occurrence for recurring schedule")
	}

	if err := scheduler.PauseScheduledMessage(ctx, aliceID, scheduled.ID); err != nil {
		t.Fatalf("PauseScheduledMessage: %v", err)
	}
	if err := scheduler.PauseScheduledMessage(ctx, aliceID, scheduled.ID); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition pausing twice, got %v", err)
	}
	if err := scheduler.ResumeScheduledMessage(ctx, aliceID, scheduled.ID); err != nil {
		t.Fatalf("ResumeScheduledMessage: %v", err)
	}
	if err := scheduler.CancelScheduledMessage(ctx, aliceID, scheduled.ID); err != nil {
		t.Fatalf("CancelScheduledMessage: %v", err)
	}
	if err := scheduler.ResumeScheduledMessage(ctx, aliceID, scheduled.ID); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition resuming cancelled, got %v", err)
	}

	// A due pending schedule gets dispatched and, being recurring, advances.
	due, err := scheduler.ScheduleMessage(ctx, aliceID, ScheduleMessageInput{
		ConversationID: conversation.ID,
		MessageType:    models.MessageTypeText,
		Content:        "Walk reminder",
		ScheduledAt:    time.Now().UTC(),
		Frequency:      models.FrequencyDaily,
		Interval:       1,
	})
	if err != nil {
		t.Fatalf("ScheduleMessage (due): %v", err)
	}

	deliveries, err := scheduler.ProcessDue(ctx, time.Now().UTC().Add(time.Second))
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(deliveries))
	}
	if deliveries[0].Message.Content != "Walk reminder" {
		t.Fatalf("unexpected dispatched content: %q", deliveries[0].Message.Content)
	}

	advanced, err := scheduler.GetScheduledMessage(ctx, aliceID, due.ID)
	if err != nil {
		t.Fatalf("GetScheduledMessage: %v", err)
	}
	if advanced.Status != models.ScheduledStatusPending {
		t.Fatalf("expected recurring schedule to stay pending, got %q", advanced.Status)
	}
	if !advanced.ScheduledAt.After(due.ScheduledAt) {
		t.Fatalf("expected schedule to advance past %v, got %v", due.ScheduledAt, advanced.ScheduledAt)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationConversationService(pool *pgxpool.Pool) *ConversationService {
	return NewConversationService(
		pool,
		repository.NewConversationRepository(pool),
		repository.NewParticipantRepository(pool),
		repository.NewUserRepository(pool),
	)
}

func newIntegrationMessagingService(pool *pgxpool.Pool) *MessagingService {
	return NewMessagingService(
		pool,
		repository.NewConversationRepository(pool),
		repository.NewParticipantRepository(pool),
		repository.NewMessageRepository(pool),
		NewAESEncryptor("integration-test-secret"),
	)
}

func createTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, displayName string) int64 {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	user := &models.User{
		Email:        fmt.Sprintf("msg-test-%s-%d@example.com", displayName, time.Now().UnixNano()),
		PasswordHash: "test-hash",
		DisplayName:  displayName,
		Role:         "owner",
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", displayName, err)
	}
	return user.ID
}

func cleanupTestData(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...int64) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}

	if _, err := pool.Exec(ctx, "DELETE FROM scheduled_messages WHERE sender_id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup scheduled messages: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM conversations WHERE created_by = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup conversations: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
}
