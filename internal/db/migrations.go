package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'bid_status') THEN
			CREATE TYPE bid_status AS ENUM ('invited', 'bidding', 'submitted', 'declined', 'no_response');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL,
		name VARCHAR(200) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_company_id ON projects (company_id);`,
	`CREATE TABLE IF NOT EXISTS trades (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		trade_name VARCHAR(200) NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trades_project_id ON trades (project_id);`,
	`CREATE TABLE IF NOT EXISTS project_subs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		company_name VARCHAR(200) NOT NULL,
		contact_name VARCHAR(200) NOT NULL DEFAULT '',
		email VARCHAR(200) NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_project_subs_project_id ON project_subs (project_id);`,
	`CREATE TABLE IF NOT EXISTS leveling_bids (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		trade_id UUID NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
		sub_id UUID NOT NULL REFERENCES project_subs(id) ON DELETE CASCADE,
		status bid_status NOT NULL DEFAULT 'invited',
		base_bid_amount NUMERIC(18,2),
		notes TEXT NOT NULL DEFAULT '',
		received_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_leveling_bids_trade_sub ON leveling_bids (trade_id, sub_id);`,
	`CREATE INDEX IF NOT EXISTS idx_leveling_bids_project_id ON leveling_bids (project_id);`,
	`CREATE INDEX IF NOT EXISTS idx_leveling_bids_status ON leveling_bids (status);`,
	`CREATE TABLE IF NOT EXISTS bid_alternates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		bid_id UUID NOT NULL REFERENCES leveling_bids(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		accepted BOOLEAN NOT NULL DEFAULT FALSE,
		amount NUMERIC(18,2),
		notes TEXT NOT NULL DEFAULT '',
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_bid_alternates_bid_id ON bid_alternates (bid_id);`,
	`CREATE TABLE IF NOT EXISTS trade_budgets (
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		trade_id UUID NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
		budget_amount NUMERIC(18,2),
		budget_notes TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (project_id, trade_id)
	);`,
	`CREATE TABLE IF NOT EXISTS leveling_snapshots (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		locked BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_leveling_snapshots_project_id ON leveling_snapshots (project_id);`,
	`CREATE TABLE IF NOT EXISTS snapshot_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		snapshot_id UUID NOT NULL REFERENCES leveling_snapshots(id) ON DELETE CASCADE,
		trade_id UUID NOT NULL,
		trade_name VARCHAR(200) NOT NULL,
		sub_id UUID NOT NULL,
		sub_name VARCHAR(200) NOT NULL,
		status bid_status NOT NULL,
		base_bid_amount NUMERIC(18,2),
		notes TEXT NOT NULL DEFAULT '',
		line_items JSONB NOT NULL DEFAULT '{}'::jsonb
	);`,
	`CREATE INDEX IF NOT EXISTS idx_snapshot_items_snapshot_id ON snapshot_items (snapshot_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
