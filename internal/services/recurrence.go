package services

import (
	"time"

	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

// NextDueDate computes the occurrence after `from` for a recurrence rule.
// A non-positive interval counts as 1. Non-recurring frequencies return nil.
func NextDueDate(from time.Time, frequency models.RecurrenceFrequency, interval int) *time.Time {
	if interval <= 0 {
		interval = 1
	}

	var next time.Time
	switch frequency {
	case models.FrequencyDaily:
		next = from.AddDate(0, 0, interval)
	case models.FrequencyWeekly:
		next = from.AddDate(0, 0, interval*7)
	case models.FrequencyMonthly:
		next = from.AddDate(0, interval, 0)
	case models.FrequencyYearly:
		next = from.AddDate(interval, 0, 0)
	default:
		return nil
	}
	return &next
}
