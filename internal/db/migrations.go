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
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'practice_status') THEN
			CREATE TYPE practice_status AS ENUM (
				'DRAFT',
				'PENDING_PAYMENT',
				'RECEIPT_UPLOADED',
				'SUBMITTED_TO_COMMISSION',
				'IN_PROGRESS',
				'COMPLETED',
				'REJECTED'
			);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'review_comment_kind') THEN
			CREATE TYPE review_comment_kind AS ENUM (
				'REQUEST_DOCUMENTS',
				'REQUEST_CLARIFICATION',
				'STATUS_UPDATE',
				'APPROVAL',
				'REJECTION',
				'REQUEST_HEARING'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contract_types (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		code VARCHAR(64) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_types_code ON contract_types (code);`,
	`CREATE TABLE IF NOT EXISTS price_rules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_type_id UUID REFERENCES contract_types(id),
		min_quantity INTEGER NOT NULL DEFAULT 1,
		max_quantity INTEGER,
		base_price NUMERIC(18,2) NOT NULL CHECK (base_price >= 0),
		is_percentage_rule BOOLEAN NOT NULL DEFAULT FALSE,
		percentage_value NUMERIC(8,4),
		threshold_value NUMERIC(18,2),
		is_odcec BOOLEAN NOT NULL DEFAULT FALSE,
		is_renewal BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (NOT is_percentage_rule OR (percentage_value IS NOT NULL AND threshold_value IS NOT NULL))
	);`,
	`CREATE INDEX IF NOT EXISTS idx_price_rules_contract_type_id ON price_rules (contract_type_id) WHERE contract_type_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_price_rules_odcec ON price_rules (min_quantity) WHERE contract_type_id IS NULL AND is_odcec;`,
	`CREATE TABLE IF NOT EXISTS conventions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(64) NOT NULL,
		discount_percentage NUMERIC(5,2) NOT NULL CHECK (discount_percentage >= 0 AND discount_percentage <= 100),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_conventions_code ON conventions (code);`,
	`CREATE TABLE IF NOT EXISTS practices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		submitter_id UUID NOT NULL,
		contract_type_id UUID REFERENCES contract_types(id),
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		contract_value NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (contract_value >= 0),
		is_odcec BOOLEAN NOT NULL DEFAULT FALSE,
		is_renewal BOOLEAN NOT NULL DEFAULT FALSE,
		convention_code VARCHAR(64),
		base_amount NUMERIC(18,2),
		surcharge_amount NUMERIC(18,2),
		odcec_adjusted_amount NUMERIC(18,2),
		renewal_discount_applied BOOLEAN,
		convention_discount_percentage NUMERIC(5,2),
		net_before_vat NUMERIC(18,2),
		vat_rate NUMERIC(5,2),
		vat_amount NUMERIC(18,2),
		gross_total NUMERIC(18,2),
		status practice_status NOT NULL DEFAULT 'DRAFT',
		assigned_reviewer_id UUID,
		receipt_document_ref TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		submitted_to_payment_at TIMESTAMPTZ,
		submitted_to_review_at TIMESTAMPTZ,
		resolved_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_practices_submitter_id ON practices (submitter_id);`,
	`CREATE INDEX IF NOT EXISTS idx_practices_status ON practices (status);`,
	`CREATE INDEX IF NOT EXISTS idx_practices_assigned_reviewer_id ON practices (assigned_reviewer_id) WHERE assigned_reviewer_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS review_comments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		practice_id UUID NOT NULL REFERENCES practices(id),
		author_id UUID NOT NULL,
		kind review_comment_kind NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_review_comments_practice_id ON review_comments (practice_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
