package services

import (
	"testing"
	"time"

	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

func TestNextDueDateAdvancesByFrequency(t *testing.T) {
	from := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		frequency models.RecurrenceFrequency
		interval  int
		want      time.Time
	}{
		{"daily", models.FrequencyDaily, 1, time.Date(2026, 3, 16, 9, 30, 0, 0, time.UTC)},
		{"every third day", models.FrequencyDaily, 3, time.Date(2026, 3, 18, 9, 30, 0, 0, time.UTC)},
		{"weekly", models.FrequencyWeekly, 1, time.Date(2026, 3, 22, 9, 30, 0, 0, time.UTC)},
		{"biweekly", models.FrequencyWeekly, 2, time.Date(2026, 3, 29, 9, 30, 0, 0, time.UTC)},
		{"monthly", models.FrequencyMonthly, 1, time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC)},
		{"yearly", models.FrequencyYearly, 1, time.Date(2027, 3, 15, 9, 30, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextDueDate(from, tc.frequency, tc.interval)
			if got == nil {
				t.Fatal("expected a next occurrence, got nil")
			}
			if !got.Equal(tc.want) {
				t.Fatalf("NextDueDate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNextDueDateReturnsNilForNonRecurring(t *testing.T) {
	from := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

	if got := NextDueDate(from, models.FrequencyOnce, 1); got != nil {
		t.Fatalf("expected nil for Once, got %v", got)
	}
	if got := NextDueDate(from, models.RecurrenceFrequency("bogus"), 1); got != nil {
		t.Fatalf("expected nil for unknown frequency, got %v", got)
	}
}

func TestNextDueDateClampsNonPositiveInterval(t *testing.T) {
	from := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	want := time.Date(2026, 3, 16, 9, 30, 0, 0, time.UTC)

	for _, interval := range []int{0, -5} {
		got := NextDueDate(from, models.FrequencyDaily, interval)
		if got == nil || !got.Equal(want) {
			t.Fatalf("NextDueDate with interval %d = %v, want %v", interval, got, want)
		}
	}
}

func TestNextDueDateMonthEndNormalizes(t *testing.T) {
	// AddDate normalizes Jan 31 + 1 month past the end of February.
	from := time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)
	got := NextDueDate(from, models.FrequencyMonthly, 1)
	if got == nil {
		t.Fatal("expected a next occurrence, got nil")
	}
	want := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextDueDate = %v, want %v", got, want)
	}
}
