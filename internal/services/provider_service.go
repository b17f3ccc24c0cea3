package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type providerCatalog interface {
	ListCandidates(ctx context.Context, serviceType *string, maxHourlyRate *float64, verifiedOnly bool) ([]models.ProviderProfile, error)
	GetByID(ctx context.Context, providerID int64) (*models.ProviderProfile, error)
}

type ProviderService struct {
	providerRepo providerCatalog
}

func NewProviderService(providerRepo providerCatalog) *ProviderService {
	return &ProviderService{providerRepo: providerRepo}
}

type ProviderSearchInput struct {
	ServiceType   *string
	MaxHourlyRate *float64
	VerifiedOnly  bool
	Limit         int
}

// SearchProviders returns candidates ranked by a weighted match score, best
// first. Ties break on rating.
func (s *ProviderService) SearchProviders(
	ctx context.Context,
	input ProviderSearchInput,
) ([]models.ProviderWithScore, error) {
	var serviceType *string
	if input.ServiceType != nil {
		normalized := normalizeServiceType(*input.ServiceType)
		if normalized != "" {
			serviceType = &normalized
		}
	}

	candidates, err := s.providerRepo.ListCandidates(ctx, serviceType, input.MaxHourlyRate, input.VerifiedOnly)
	if err != nil {
		return nil, err
	}

	ranked := make([]models.ProviderWithScore, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, models.ProviderWithScore{
			ProviderProfile: candidate,
			MatchScore:      providerMatchScore(&candidate, serviceType, input.MaxHourlyRate),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore == ranked[j].MatchScore {
			return floatValue(ranked[i].Rating) > floatValue(ranked[j].Rating)
		}
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	if input.Limit > 0 && len(ranked) > input.Limit {
		ranked = ranked[:input.Limit]
	}

	return ranked, nil
}

func (s *ProviderService) GetProvider(ctx context.Context, providerID int64) (*models.ProviderProfile, error) {
	profile, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return profile, nil
}

func providerMatchScore(profile *models.ProviderProfile, serviceType *string, budget *float64) int {
	score := 0

	if serviceType != nil {
		for _, offered := range profile.ServiceTypes {
			if normalizeServiceType(offered) == *serviceType {
				score += 40
				break
			}
		}
	}

	if floatValue(profile.Rating) > 4.0 {
		score += 20
	}
	if profile.ReviewCount > 10 {
		score += 15
	}
	if profile.IsVerified {
		score += 10
	}
	if budget != nil && *budget > 0 && profile.HourlyRate != nil && *profile.HourlyRate <= *budget {
		score += 15
	}

	return score
}

func normalizeServiceType(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}

func floatValue(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
