package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/ports"
)

// PostgresModerationActionRepository implements the append-only moderation
// audit trail using PostgreSQL. Rows are never updated or deleted.
type PostgresModerationActionRepository struct {
	db *sql.DB
}

// NewPostgresModerationActionRepository creates a new moderation action repository
func NewPostgresModerationActionRepository(db *sql.DB) ports.ModerationActionRepository {
	return &PostgresModerationActionRepository{db: db}
}

// Append records a moderation action
func (r *PostgresModerationActionRepository) Append(ctx context.Context, action *domain.ModerationAction) error {
	query := `
		INSERT INTO moderation_actions (id, listing_id, moderator_id, kind, reason, listing_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		action.ID,
		action.ListingID,
		action.ModeratorID,
		string(action.Kind),
		nullString(action.Reason),
		action.ListingVersion,
		action.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append moderation action: %w", err)
	}

	return nil
}

// ListByListing retrieves the audit trail for a listing, oldest first
func (r *PostgresModerationActionRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.ModerationAction, error) {
	query := `
		SELECT id, listing_id, moderator_id, kind, reason, listing_version, created_at
		FROM moderation_actions
		WHERE listing_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation actions: %w", err)
	}
	defer rows.Close()

	var actions []*domain.ModerationAction
	for rows.Next() {
		var action domain.ModerationAction
		var reason sql.NullString

		err := rows.Scan(
			&action.ID,
			&action.ListingID,
			&action.ModeratorID,
			&action.Kind,
			&reason,
			&action.ListingVersion,
			&action.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation action: %w", err)
		}

		if reason.Valid {
			action.Reason = reason.String
		}

		actions = append(actions, &action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moderation actions: %w", err)
	}

	return actions, nil
}
