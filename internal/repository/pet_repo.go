package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type PetRepository struct {
	db DBTX
}

func NewPetRepository(db DBTX) *PetRepository {
	return &PetRepository{db: db}
}

func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	pet.ID = uuid.NewString()
	pet.IsActive = true

	query := `
		INSERT INTO pets (id, owner_id, name, breed, birth_date, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		pet.ID,
		pet.OwnerID,
		pet.Name,
		pet.Breed,
		pet.BirthDate,
		pet.Notes,
	).Scan(&pet.CreatedAt, &pet.UpdatedAt)
}

// GetForOwner returns an active pet owned by the given user.
func (r *PetRepository) GetForOwner(ctx context.Context, petID string, ownerID int64) (*models.Pet, error) {
	query := `
		SELECT id, owner_id, name, breed, birth_date, notes, is_active, created_at, updated_at
		FROM pets
		WHERE id = $1 AND owner_id = $2 AND is_active = TRUE
	`
	return r.scanPet(r.db.QueryRow(ctx, query, petID, ownerID))
}

func (r *PetRepository) ListForOwner(ctx context.Context, ownerID int64) ([]models.Pet, error) {
	query := `
		SELECT id, owner_id, name, breed, birth_date, notes, is_active, created_at, updated_at
		FROM pets
		WHERE owner_id = $1 AND is_active = TRUE
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pets := make([]models.Pet, 0)
	for rows.Next() {
		pet, err := r.scanPet(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, *pet)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pets, nil
}

func (r *PetRepository) Update(ctx context.Context, pet *models.Pet) error {
	_, err := r.db.Exec(ctx, `
		UPDATE pets
		SET name = $2, breed = $3, birth_date = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
	`, pet.ID, pet.Name, pet.Breed, pet.BirthDate, pet.Notes)
	return err
}

// SoftDelete deactivates the pet; reminder history is retained.
func (r *PetRepository) SoftDelete(ctx context.Context, petID string, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE pets
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND is_active = TRUE
	`, petID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PetRepository) scanPet(row pgx.Row) (*models.Pet, error) {
	var pet models.Pet
	err := row.Scan(
		&pet.ID,
		&pet.OwnerID,
		&pet.Name,
		&pet.Breed,
		&pet.BirthDate,
		&pet.Notes,
		&pet.IsActive,
		&pet.CreatedAt,
		&pet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pet, nil
}
