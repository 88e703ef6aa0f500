package persistence

import (
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id                UUID PRIMARY KEY,
		name              TEXT NOT NULL,
		location          TEXT NOT NULL,
		specialties       TEXT[] NOT NULL DEFAULT '{}',
		modalities        TEXT[] NOT NULL DEFAULT '{}',
		fee               TEXT NOT NULL DEFAULT '',
		telehealth        BOOLEAN NOT NULL DEFAULT FALSE,
		languages         TEXT[] NOT NULL DEFAULT '{}',
		hours             TEXT NOT NULL DEFAULT '',
		availability      TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL,
		active            BOOLEAN NOT NULL DEFAULT FALSE,
		moderation_reason TEXT,
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL,
		submitted_at      TIMESTAMPTZ,
		version           BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings (status)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_pending_queue
		ON listings (submitted_at ASC, id ASC) WHERE status = 'PENDING_REVIEW'`,
	`CREATE TABLE IF NOT EXISTS moderation_actions (
		id              UUID PRIMARY KEY,
		listing_id      UUID NOT NULL REFERENCES listings (id),
		moderator_id    TEXT NOT NULL,
		kind            TEXT NOT NULL,
		reason          TEXT,
		listing_version BIGINT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_moderation_actions_listing
		ON moderation_actions (listing_id, created_at ASC)`,
}

// Migrate applies the schema. Statements are idempotent so re-running is safe.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
