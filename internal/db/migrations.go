package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS saved_filters (
		owner VARCHAR(64) PRIMARY KEY,
		product TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		from_date VARCHAR(32) NOT NULL DEFAULT '',
		to_date VARCHAR(32) NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'export_format') THEN
			CREATE TYPE export_format AS ENUM ('XLSX', 'PDF');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS dashboard_exports (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner VARCHAR(64) NOT NULL,
		org_id UUID,
		format export_format NOT NULL,
		file_name TEXT NOT NULL,
		filter_query TEXT NOT NULL DEFAULT '',
		unit VARCHAR(8) NOT NULL,
		offer_count INTEGER NOT NULL,
		tendered_volume NUMERIC(20,3) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_dashboard_exports_owner ON dashboard_exports (owner, created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
