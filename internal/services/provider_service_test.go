package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type stubProviderCatalog struct {
	candidates      []models.ProviderProfile
	candidatesErr   error
	profile         *models.ProviderProfile
	profileErr      error
	lastServiceType *string
	lastMaxRate     *float64
	lastVerified    bool
}

func (s *stubProviderCatalog) ListCandidates(_ context.Context, serviceType *string, maxHourlyRate *float64, verifiedOnly bool) ([]models.ProviderProfile, error) {
	s.lastServiceType = serviceType
	s.lastMaxRate = maxHourlyRate
	s.lastVerified = verifiedOnly
	return s.candidates, s.candidatesErr
}

func (s *stubProviderCatalog) GetByID(_ context.Context, _ int64) (*models.ProviderProfile, error) {
	return s.profile, s.profileErr
}

func floatPtr(v float64) *float64 { return &v }

func TestSearchProvidersRanksByMatchScore(t *testing.T) {
	catalog := &stubProviderCatalog{
		candidates: []models.ProviderProfile{
			{
				ID:           1,
				BusinessName: "Budget Walks",
				ServiceTypes: []string{"grooming"},
				HourlyRate:   floatPtr(15),
				Rating:       floatPtr(3.5),
				ReviewCount:  2,
			},
			{
				ID:           2,
				BusinessName: "Top Dog Walking",
				ServiceTypes: []string{"dog_walking", "pet_sitting"},
				HourlyRate:   floatPtr(25),
				Rating:       floatPtr(4.8),
				ReviewCount:  42,
				IsVerified:   true,
			},
			{
				ID:           3,
				BusinessName: "Mid Tier Walks",
				ServiceTypes: []string{"dog_walking"},
				HourlyRate:   floatPtr(40),
				Rating:       floatPtr(4.2),
				ReviewCount:  5,
			},
		},
	}
	service := NewProviderService(catalog)

	serviceType := "Dog Walking"
	results, err := service.SearchProviders(context.Background(), ProviderSearchInput{
		ServiceType:   &serviceType,
		MaxHourlyRate: floatPtr(30),
	})
	if err != nil {
		t.Fatalf("SearchProviders: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Service match 40 + rating 20 + reviews 15 + verified 10 + budget 15.
	if results[0].ID != 2 || results[0].MatchScore != 100 {
		t.Fatalf("expected provider 2 with score 100 first, got id=%d score=%d", results[0].ID, results[0].MatchScore)
	}
	// Service match 40 + rating 20, over budget.
	if results[1].ID != 3 || results[1].MatchScore != 60 {
		t.Fatalf("expected provider 3 with score 60 second, got id=%d score=%d", results[1].ID, results[1].MatchScore)
	}
	// No service match, within budget only.
	if results[2].ID != 1 || results[2].MatchScore != 15 {
		t.Fatalf("expected provider 1 with score 15 last, got id=%d score=%d", results[2].ID, results[2].MatchScore)
	}

	if catalog.lastServiceType == nil || *catalog.lastServiceType != "dog_walking" {
		t.Fatalf("expected normalized service type dog_walking, got %v", catalog.lastServiceType)
	}
}

func TestSearchProvidersBreaksTiesOnRating(t *testing.T) {
	catalog := &stubProviderCatalog{
		candidates: []models.ProviderProfile{
			{ID: 1, Rating: floatPtr(4.1)},
			{ID: 2, Rating: floatPtr(4.6)},
		},
	}
	service := NewProviderService(catalog)

	results, err := service.SearchProviders(context.Background(), ProviderSearchInput{})
	if err != nil {
		t.Fatalf("SearchProviders: %v", err)
	}
	// Both score 20 from rating alone; the higher rating wins.
	if results[0].ID != 2 || results[1].ID != 1 {
		t.Fatalf("unexpected tie-break order: %d, %d", results[0].ID, results[1].ID)
	}
}

func TestSearchProvidersAppliesLimit(t *testing.T) {
	catalog := &stubProviderCatalog{
		candidates: []models.ProviderProfile{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	service := NewProviderService(catalog)

	results, err := service.SearchProviders(context.Background(), ProviderSearchInput{Limit: 2})
	if err != nil {
		t.Fatalf("SearchProviders: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestGetProviderMapsMissingRows(t *testing.T) {
	service := NewProviderService(&stubProviderCatalog{profileErr: pgx.ErrNoRows})

	if _, err := service.GetProvider(context.Background(), 99); err != ErrProviderNotFound {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestNormalizeServiceType(t *testing.T) {
	cases := map[string]string{
		" Dog Walking ": "dog_walking",
		"pet-sitting":   "pet_sitting",
		"GROOMING":      "grooming",
		"":              "",
	}
	for raw, want := range cases {
		if got := normalizeServiceType(raw); got != want {
			t.Errorf("normalizeServiceType(%q) = %q, want %q", raw, got, want)
		}
	}
}
