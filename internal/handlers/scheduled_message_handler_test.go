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

type stubScheduledMessageService struct {
	scheduled   *models.ScheduledMessage
	scheduleErr error
	list        []models.ScheduledMessage
	total       int
	listErr     error
	cancelErr   error
	pauseErr    error
	resumeErr   error

	lastActor  int64
	lastID     string
	lastInput  services.ScheduleMessageInput
	lastUpdate services.UpdateScheduledMessageInput
}

func (s *stubScheduledMessageService) ScheduleMessage(_ context.Context, actorID int64, input services.ScheduleMessageInput) (*models.ScheduledMessage, error) {
	s.lastActor = actorID
	s.lastInput = input
	return s.scheduled, s.scheduleErr
}

func (s *stubScheduledMessageService) GetScheduledMessage(_ context.Context, actorID int64, scheduledMessageID string) (*models.ScheduledMessage, error) {
	s.lastActor = actorID
	s.lastID = scheduledMessageID
	return s.scheduled, s.scheduleErr
}

func (s *stubScheduledMessageService) ListScheduledMessages(_ context.Context, actorID int64, _ *string, _, _ int) ([]models.ScheduledMessage, int, error) {
	s.lastActor = actorID
	return s.list, s.total, s.listErr
}

func (s *stubScheduledMessageService) UpdateScheduledMessage(_ context.Context, actorID int64, scheduledMessageID string, input services.UpdateScheduledMessageInput) (*models.ScheduledMessage, error) {
	s.lastActor = actorID
	s.lastID = scheduledMessageID
	s.lastUpdate = input
	return s.scheduled, s.scheduleErr
}

func (s *stubScheduledMessageService) CancelScheduledMessage(_ context.Context, actorID int64, scheduledMessageID string) error {
	s.lastActor = actorID
	s.lastID = scheduledMessageID
	return s.cancelErr
}

func (s *stubScheduledMessageService) PauseScheduledMessage(_ context.Context, actorID int64, scheduledMessageID string) error {
	s.lastActor = actorID
	s.lastID = scheduledMessageID
	return s.pauseErr
}

func (s *stubScheduledMessageService) ResumeScheduledMessage(_ context.Context, actorID int64, scheduledMessageID string) error {
	s.lastActor = actorID
	s.lastID = scheduledMessageID
	return s.resumeErr
}

func newScheduledTestApp(service *stubScheduledMessageService) *fiber.App {
	handler := NewScheduledMessageHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", "owner")
		return c.Next()
	})
	app.Post("/api/v1/scheduled-messages", handler.ScheduleMessage)
	app.Get("/api/v1/scheduled-messages", handler.ListScheduledMessages)
	app.Put("/api/v1/scheduled-messages/:id", handler.UpdateScheduledMessage)
	app.Delete("/api/v1/scheduled-messages/:id", handler.CancelScheduledMessage)
	app.Post("/api/v1/scheduled-messages/:id/pause", handler.PauseScheduledMessage)
	app.Post("/api/v1/scheduled-messages/:id/resume", handler.ResumeScheduledMessage)
	return app
}

func TestScheduleMessageParsesFrequency(t *testing.T) {
	service := &stubScheduledMessageService{
		scheduled: &models.ScheduledMessage{
			ID:          "s-1",
			Frequency:   models.FrequencyWeekly,
			IsRecurring: true,
			Status:      models.ScheduledStatusPending,
		},
	}
	app := newScheduledTestApp(service)

	body := `{"conversation_id":"c-1","message_type":"text","content":"Time for the weekly checkup","scheduled_at":"2030-06-01T09:00:00Z","frequency":"weekly","interval":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduled-messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastInput.Frequency != models.FrequencyWeekly {
		t.Fatalf("expected Weekly, got %q", service.lastInput.Frequency)
	}
	if !service.lastInput.ScheduledAt.Equal(time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected scheduled_at: %v", service.lastInput.ScheduledAt)
	}

	var respBody struct {
		ScheduledMessage models.ScheduledMessage `json:"scheduled_message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if respBody.ScheduledMessage.ID != "s-1" || !respBody.ScheduledMessage.IsRecurring {
		t.Fatalf("unexpected response: %+v", respBody.ScheduledMessage)
	}
}

func TestUpdateScheduledMessageParsesOptionalFields(t *testing.T) {
	service := &stubScheduledMessageService{
		scheduled: &models.ScheduledMessage{ID: "s-1"},
	}
	app := newScheduledTestApp(service)

	body := `{"frequency":"daily","interval":2}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/scheduled-messages/s-1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUpdate.Frequency == nil || *service.lastUpdate.Frequency != models.FrequencyDaily {
		t.Fatalf("expected Daily frequency, got %v", service.lastUpdate.Frequency)
	}
	if service.lastUpdate.Interval == nil || *service.lastUpdate.Interval != 2 {
		t.Fatalf("expected interval 2, got %v", service.lastUpdate.Interval)
	}
	if service.lastUpdate.Content != nil {
		t.Fatalf("expected content untouched, got %v", service.lastUpdate.Content)
	}
}

func TestCancelScheduledMessageReturnsNoContent(t *testing.T) {
	service := &stubScheduledMessageService{}
	app := newScheduledTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/scheduled-messages/s-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastID != "s-1" || service.lastActor != 42 {
		t.Fatalf("unexpected forwarded context: %q %d", service.lastID, service.lastActor)
	}
}

func TestPauseScheduledMessageMapsInvalidTransition(t *testing.T) {
	service := &stubScheduledMessageService{pauseErr: services.ErrInvalidStateTransition}
	app := newScheduledTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduled-messages/s-1/pause", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestResumeScheduledMessageMapsNotFound(t *testing.T) {
	service := &stubScheduledMessageService{resumeErr: services.ErrMessageNotFound}
	app := newScheduledTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduled-messages/s-1/resume", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
