package services

import (
	"testing"
	"time"

	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

func TestNormalizeBookingStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"confirm", "confirmed"},
		{"Confirmed", "confirmed"},
		{"decline", "declined"},
		{"complete", "completed"},
		{"cancel", "cancelled"},
		{"canceled", "cancelled"},
		{" cancelled ", "cancelled"},
	}

	for _, tc := range cases {
		got, err := normalizeBookingStatus(tc.raw)
		if err != nil {
			t.Errorf("normalizeBookingStatus(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("normalizeBookingStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}

	if _, err := normalizeBookingStatus("pending"); err != ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for pending, got %v", err)
	}
	if _, err := normalizeBookingStatus(""); err != ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty status, got %v", err)
	}
}

func TestValidateBookingTransition(t *testing.T) {
	const (
		ownerID        = int64(1)
		providerUserID = int64(2)
		strangerID     = int64(3)
	)

	past := time.Now().UTC().Add(-2 * time.Hour)
	future := time.Now().UTC().Add(2 * time.Hour)

	cases := []struct {
		name        string
		actorID     int64
		status      string
		scheduledAt time.Time
		next        string
		want        error
	}{
		{"owner cancels pending", ownerID, "pending", future, "cancelled", nil},
		{"owner cancels confirmed", ownerID, "confirmed", future, "cancelled", nil},
		{"owner cannot confirm", ownerID, "pending", future, "confirmed", ErrForbidden},
		{"owner cannot cancel completed", ownerID, "completed", past, "cancelled", ErrInvalidStateTransition},
		{"provider confirms pending", providerUserID, "pending", future, "confirmed", nil},
		{"provider declines pending", providerUserID, "pending", future, "declined", nil},
		{"provider cannot confirm twice", providerUserID, "confirmed", future, "confirmed", ErrInvalidStateTransition},
		{"provider completes past confirmed", providerUserID, "confirmed", past, "completed", nil},
		{"provider cannot complete before it ends", providerUserID, "confirmed", future, "completed", ErrInvalidStateTransition},
		{"provider cannot complete pending", providerUserID, "pending", past, "completed", ErrInvalidStateTransition},
		{"provider cancels confirmed", providerUserID, "confirmed", future, "cancelled", nil},
		{"provider cannot cancel declined", providerUserID, "declined", future, "cancelled", ErrInvalidStateTransition},
		{"stranger is forbidden", strangerID, "pending", future, "cancelled", ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			booking := &models.Booking{
				OwnerID:         ownerID,
				ProviderID:      10,
				Status:          tc.status,
				ScheduledAt:     tc.scheduledAt,
				DurationMinutes: 60,
			}
			got := validateBookingTransition(tc.actorID, booking, providerUserID, tc.next)
			if got != tc.want {
				t.Fatalf("validateBookingTransition = %v, want %v", got, tc.want)
			}
		})
	}
}
