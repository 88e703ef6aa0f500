package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/ports"
	"github.com/lib/pq"
)

const listingColumns = `id, name, location, specialties, modalities, fee, telehealth,
	languages, hours, availability, status, active, moderation_reason,
	created_at, updated_at, submitted_at, version`

// PostgresListingRepository implements ListingRepository using PostgreSQL
type PostgresListingRepository struct {
	db *sql.DB
}

// NewPostgresListingRepository creates a new PostgreSQL listing repository
func NewPostgresListingRepository(db *sql.DB) ports.ListingRepository {
	return &PostgresListingRepository{db: db}
}

// Create saves a new listing
func (r *PostgresListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		listing.ID,
		listing.Name,
		listing.Location,
		pq.Array(listing.Specialties),
		pq.Array(listing.Modalities),
		listing.Fee,
		listing.Telehealth,
		pq.Array(listing.Languages),
		listing.Hours,
		string(listing.Availability),
		string(listing.Status),
		listing.Active,
		nullString(listing.ModerationReason),
		listing.CreatedAt,
		listing.UpdatedAt,
		listing.SubmittedAt,
		listing.Version,
	)

	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// FindByID retrieves a listing by its ID
func (r *PostgresListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return listing, nil
}

// Update persists the listing only if the stored version still equals
// expectedVersion. This is the single write path for mutations; the version
// increment happens nowhere else.
func (r *PostgresListingRepository) Update(ctx context.Context, listing *domain.Listing, expectedVersion int64) error {
	query := `
		UPDATE listings
		SET name = $3, location = $4, specialties = $5, modalities = $6, fee = $7,
			telehealth = $8, languages = $9, hours = $10, availability = $11,
			status = $12, active = $13, moderation_reason = $14,
			updated_at = $15, submitted_at = $16, version = version + 1
		WHERE id = $1 AND version = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		listing.ID,
		expectedVersion,
		listing.Name,
		listing.Location,
		pq.Array(listing.Specialties),
		pq.Array(listing.Modalities),
		listing.Fee,
		listing.Telehealth,
		pq.Array(listing.Languages),
		listing.Hours,
		string(listing.Availability),
		string(listing.Status),
		listing.Active,
		nullString(listing.ModerationReason),
		listing.UpdatedAt,
		listing.SubmittedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing row from a lost race.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, listing.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check listing existence: %w", err)
		}
		if !exists {
			return domain.ErrListingNotFound
		}
		return domain.ErrVersionConflict
	}

	listing.Version = expectedVersion + 1
	return nil
}

// ListByStatus retrieves all listings with the given status, newest first
func (r *PostgresListingRepository) ListByStatus(ctx context.Context, status domain.ListingStatus) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE status = $1
		ORDER BY created_at DESC, id ASC`

	return r.queryListings(ctx, query, string(status))
}

// ListPending retrieves a page of the moderation queue in FIFO order
func (r *PostgresListingRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE status = $1
		ORDER BY submitted_at ASC, id ASC
		LIMIT $2 OFFSET $3`

	return r.queryListings(ctx, query, string(domain.StatusPendingReview), limit, offset)
}

func (r *PostgresListingRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]*domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var listing domain.Listing
	var moderationReason sql.NullString
	var submittedAt sql.NullTime

	err := row.Scan(
		&listing.ID,
		&listing.Name,
		&listing.Location,
		pq.Array(&listing.Specialties),
		pq.Array(&listing.Modalities),
		&listing.Fee,
		&listing.Telehealth,
		pq.Array(&listing.Languages),
		&listing.Hours,
		&listing.Availability,
		&listing.Status,
		&listing.Active,
		&moderationReason,
		&listing.CreatedAt,
		&listing.UpdatedAt,
		&submittedAt,
		&listing.Version,
	)
	if err != nil {
		return nil, err
	}

	if moderationReason.Valid {
		listing.ModerationReason = moderationReason.String
	}
	if submittedAt.Valid {
		listing.SubmittedAt = &submittedAt.Time
	}

	return &listing, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
