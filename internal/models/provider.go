package models

import "time"

type ProviderProfile struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	BusinessName string    `json:"business_name"`
	Bio          *string   `json:"bio"`
	ServiceTypes []string  `json:"service_types"`
	HourlyRate   *float64  `json:"hourly_rate"`
	Rating       *float64  `json:"rating"`
	ReviewCount  int       `json:"review_count"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProviderWithScore struct {
	ProviderProfile
	MatchScore int `json:"match_score"`
}
