package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/models"
)

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = uuid.NewString()

	query := `
		INSERT INTO bookings (id, owner_id, provider_id, service_type, scheduled_at, duration_minutes, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		booking.ID,
		booking.OwnerID,
		booking.ProviderID,
		booking.ServiceType,
		booking.ScheduledAt,
		booking.DurationMinutes,
		booking.Status,
		booking.Notes,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `
		SELECT id, owner_id, provider_id, service_type, scheduled_at, duration_minutes,
		       status, notes, conversation_id, created_at, updated_at, cancelled_at
		FROM bookings
		WHERE id = $1
	`
	return r.scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

// ListForUser returns bookings the user is a party to, either side.
func (r *BookingRepository) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]models.Booking, int, error) {
	filter := `
		FROM bookings b
		WHERE b.owner_id = $1
		   OR b.provider_id IN (SELECT id FROM provider_profiles WHERE user_id = $1)
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+filter, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT b.id, b.owner_id, b.provider_id, b.service_type, b.scheduled_at, b.duration_minutes,
		       b.status, b.notes, b.conversation_id, b.created_at, b.updated_at, b.cancelled_at
	` + filter + `
		ORDER BY b.scheduled_at DESC, b.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID, status string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET status = $2,
		    cancelled_at = CASE WHEN $2 = 'cancelled' THEN NOW() ELSE cancelled_at END,
		    updated_at = NOW()
		WHERE id = $1
	`, bookingID, status)
	return err
}

// HasOverlap reports whether the provider already has a non-cancelled booking
// intersecting the given window.
func (r *BookingRepository) HasOverlap(ctx context.Context, providerID int64, start time.Time, durationMinutes int) (bool, error) {
	var overlap bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE provider_id = $1
			  AND status NOT IN ('cancelled', 'declined')
			  AND scheduled_at < $2 + ($3 || ' minutes')::interval
			  AND scheduled_at + (duration_minutes || ' minutes')::interval > $2
		)
	`, providerID, start, durationMinutes).Scan(&overlap)
	return overlap, err
}

func (r *BookingRepository) SetConversation(ctx context.Context, bookingID, conversationID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET conversation_id = $2, updated_at = NOW()
		WHERE id = $1
	`, bookingID, conversationID)
	return err
}

func (r *BookingRepository) scanBooking(row pgx.Row) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OwnerID,
		&booking.ProviderID,
		&booking.ServiceType,
		&booking.ScheduledAt,
		&booking.DurationMinutes,
		&booking.Status,
		&booking.Notes,
		&booking.ConversationID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
