package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type ProviderRepository struct {
	db DBTX
}

func NewProviderRepository(db DBTX) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Create(ctx context.Context, profile *models.ProviderProfile) error {
	query := `
		INSERT INTO provider_profiles (user_id, business_name, bio, service_types, hourly_rate, is_verified)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.BusinessName,
		profile.Bio,
		profile.ServiceTypes,
		profile.HourlyRate,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *ProviderRepository) GetByID(ctx context.Context, providerID int64) (*models.ProviderProfile, error) {
	query := `
		SELECT id, user_id, business_name, bio, service_types, hourly_rate,
		       rating, review_count, is_verified, created_at, updated_at
		FROM provider_profiles
		WHERE id = $1
	`
	return r.scanProvider(r.db.QueryRow(ctx, query, providerID))
}

func (r *ProviderRepository) GetByUserID(ctx context.Context, userID int64) (*models.ProviderProfile, error) {
	query := `
		SELECT id, user_id, business_name, bio, service_types, hourly_rate,
		       rating, review_count, is_verified, created_at, updated_at
		FROM provider_profiles
		WHERE user_id = $1
	`
	return r.scanProvider(r.db.QueryRow(ctx, query, userID))
}

// ListCandidates returns profiles matching the coarse filters; scoring and
// ranking happen in the service layer.
func (r *ProviderRepository) ListCandidates(
	ctx context.Context,
	serviceType *string,
	maxHourlyRate *float64,
	verifiedOnly bool,
) ([]models.ProviderProfile, error) {
	query := `
		SELECT id, user_id, business_name, bio, service_types, hourly_rate,
		       rating, review_count, is_verified, created_at, updated_at
		FROM provider_profiles
		WHERE ($1::text IS NULL OR $1 = ANY(service_types))
		  AND ($2::numeric IS NULL OR hourly_rate IS NULL OR hourly_rate <= $2)
		  AND ($3 = FALSE OR is_verified = TRUE)
		ORDER BY rating DESC NULLS LAST, review_count DESC, id
	`
	rows, err := r.db.Query(ctx, query, serviceType, maxHourlyRate, verifiedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.ProviderProfile, 0)
	for rows.Next() {
		profile, err := r.scanProvider(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *ProviderRepository) Update(ctx context.Context, profile *models.ProviderProfile) error {
	_, err := r.db.Exec(ctx, `
		UPDATE provider_profiles
		SET business_name = $2, bio = $3, service_types = $4, hourly_rate = $5, updated_at = NOW()
		WHERE id = $1
	`, profile.ID, profile.BusinessName, profile.Bio, profile.ServiceTypes, profile.HourlyRate)
	return err
}

func (r *ProviderRepository) scanProvider(row pgx.Row) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.BusinessName,
		&profile.Bio,
		&profile.ServiceTypes,
		&profile.HourlyRate,
		&profile.Rating,
		&profile.ReviewCount,
		&profile.IsVerified,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
