package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
)

type stubConversationService struct {
	detail     *models.ConversationDetail
	detailErr  error
	list       []models.ConversationDetail
	listTotal  int
	listErr    error
	flagErr    error
	removeErr  error
	lastActor  int64
	lastID     string
	lastInput  services.CreateConversationInput
	lastUserID int64
	lastPage   int
	lastLimit  int
	lastType   *models.ConversationType
}

func (s *stubConversationService) CreateConversation(_ context.Context, actorID int64, input services.CreateConversationInput) (*models.ConversationDetail, error) {
	s.lastActor = actorID
	s.lastInput = input
	return s.detail, s.detailErr
}

func (s *stubConversationService) GetConversation(_ context.Context, actorID int64, conversationID string) (*models.ConversationDetail, error) {
	s.lastActor = actorID
	s.lastID = conversationID
	return s.detail, s.detailErr
}

func (s *stubConversationService) ListConversations(_ context.Context, actorID int64, _ bool, conversationType *models.ConversationType, page, limit int) ([]models.ConversationDetail, int, error) {
	s.lastActor = actorID
	s.lastType = conversationType
	s.lastPage = page
	s.lastLimit = limit
	return s.list, s.listTotal, s.listErr
}

func (s *stubConversationService) UpdateConversation(_ context.Context, actorID int64, conversationID string, _ services.UpdateConversationInput) (*models.ConversationDetail, error) {
	s.lastActor = actorID
	s.lastID = conversationID
	return s.detail, s.detailErr
}

func (s *stubConversationService) AddParticipants(_ context.Context, actorID int64, conversationID string, _ []int64) (*models.ConversationDetail, error) {
	s.lastActor = actorID
	s.lastID = conversationID
	return s.detail, s.detailErr
}

func (s *stubConversationService) RemoveParticipant(_ context.Context, actorID int64, conversationID string, userID int64) error {
	s.lastActor = actorID
	s.lastID = conversationID
	s.lastUserID = userID
	return s.removeErr
}

func (s *stubConversationService) SetArchived(_ context.Context, _ int64, _ string, _ bool) error {
	return s.flagErr
}

func (s *stubConversationService) SetPinned(_ context.Context, _ int64, _ string, _ bool) error {
	return s.flagErr
}

func (s *stubConversationService) SetMuted(_ context.Context, _ int64, _ string, _ bool, _ *time.Time) error {
	return s.flagErr
}

func (s *stubConversationService) MarkRead(_ context.Context, _ int64, conversationID string) error {
	s.lastID = conversationID
	return s.flagErr
}

func newConversationTestApp(service *stubConversationService) *fiber.App {
	handler := NewConversationHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", "owner")
		return c.Next()
	})
	app.Post("/api/v1/conversations", handler.CreateConversation)
	app.Get("/api/v1/conversations", handler.ListConversations)
	app.Get("/api/v1/conversations/:id", handler.GetConversation)
	app.Delete("/api/v1/conversations/:id/participants/:userId", handler.RemoveParticipant)
	app.Post("/api/v1/conversations/:id/read", handler.MarkRead)
	return app
}

func TestCreateConversationParsesTypeAndReturnsCreated(t *testing.T) {
	service := &stubConversationService{
		detail: &models.ConversationDetail{
			Conversation: models.Conversation{ID: "c-1", ConversationType: models.ConversationTypeGroup},
			DisplayTitle: "Weekend walkers",
		},
	}
	app := newConversationTestApp(service)

	body := `{"conversation_type":"group","title":"Weekend walkers","participant_ids":[7,8]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActor != 42 {
		t.Fatalf("expected actor 42, got %d", service.lastActor)
	}
	if service.lastInput.ConversationType != models.ConversationTypeGroup {
		t.Fatalf("expected Group, got %q", service.lastInput.ConversationType)
	}
	if len(service.lastInput.ParticipantIDs) != 2 {
		t.Fatalf("expected 2 participant ids, got %v", service.lastInput.ParticipantIDs)
	}
}

func TestCreateConversationMapsInvalidInput(t *testing.T) {
	service := &stubConversationService{detailErr: services.ErrInvalidInput}
	app := newConversationTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"conversation_type":"direct"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListConversationsForwardsPaginationAndTypeFilter(t *testing.T) {
	service := &stubConversationService{
		list: []models.ConversationDetail{
			{
				Conversation: models.Conversation{ID: "c-1"},
				DisplayTitle: "Bob",
				UnreadCount:  3,
			},
		},
		listTotal: 12,
	}
	app := newConversationTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations?page=2&limit=5&type=group", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPage != 2 || service.lastLimit != 5 {
		t.Fatalf("unexpected forwarded pagination: page=%d limit=%d", service.lastPage, service.lastLimit)
	}
	if service.lastType == nil || *service.lastType != models.ConversationTypeGroup {
		t.Fatalf("expected Group type filter, got %v", service.lastType)
	}

	var body struct {
		Conversations []models.ConversationDetail `json:"conversations"`
		Pagination    models.PaginationMeta       `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Conversations) != 1 || body.Conversations[0].UnreadCount != 3 {
		t.Fatalf("unexpected conversations: %+v", body.Conversations)
	}
	if body.Pagination.Total != 12 || body.Pagination.TotalPages != 3 || !body.Pagination.HasMore {
		t.Fatalf("unexpected pagination: %+v", body.Pagination)
	}
}

func TestListConversationsClampsLimit(t *testing.T) {
	service := &stubConversationService{}
	app := newConversationTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations?limit=500", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if service.lastLimit != maxPageLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxPageLimit, service.lastLimit)
	}
}

func TestRemoveParticipantReturnsNoContent(t *testing.T) {
	service := &stubConversationService{}
	app := newConversationTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/c-1/participants/7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastID != "c-1" || service.lastUserID != 7 {
		t.Fatalf("unexpected forwarded ids: %q %d", service.lastID, service.lastUserID)
	}
}

func TestRemoveParticipantMapsForbidden(t *testing.T) {
	service := &stubConversationService{removeErr: services.ErrForbidden}
	app := newConversationTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/c-1/participants/7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestMarkReadReturnsNoContent(t *testing.T) {
	service := &stubConversationService{}
	app := newConversationTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/c-1/read", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastID != "c-1" {
		t.Fatalf("expected conversation c-1, got %q", service.lastID)
	}
}
