package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type migration struct {
	name  string
	query string
}

// Every statement is idempotent so the list can run on every boot.
var migrations = []migration{
	{"create scholarships", `
		CREATE TABLE IF NOT EXISTS scholarships (
			id UUID PRIMARY KEY,
			sponsor_id UUID NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			eligibility_criteria TEXT NOT NULL DEFAULT '',
			submission_guidelines TEXT NOT NULL DEFAULT '',
			evaluation_criteria TEXT NOT NULL DEFAULT '',
			requirements TEXT[] NOT NULL DEFAULT '{}',
			tags TEXT[] NOT NULL DEFAULT '{}',
			amount_per_award BIGINT NOT NULL CHECK (amount_per_award > 0),
			number_of_awards INT NOT NULL CHECK (number_of_awards >= 1),
			total_budget BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'closed', 'completed')),
			payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid', 'paid')),
			deadline TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT scholarships_budget_check CHECK (total_budget = amount_per_award * number_of_awards)
		)`},
	{"index scholarships by sponsor", `CREATE INDEX IF NOT EXISTS scholarships_sponsor_idx ON scholarships (sponsor_id, created_at DESC)`},
	{"index active scholarships", `CREATE INDEX IF NOT EXISTS scholarships_active_idx ON scholarships (deadline) WHERE status = 'active'`},

	{"create applications", `
		CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			student_id UUID NOT NULL,
			scholarship_id UUID NOT NULL REFERENCES scholarships (id),
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_review', 'approved', 'rejected', 'funded')),
			essay TEXT NOT NULL DEFAULT '',
			motivation TEXT NOT NULL DEFAULT '',
			project_plan TEXT NOT NULL DEFAULT '',
			timeline TEXT NOT NULL DEFAULT '',
			documents TEXT[] NOT NULL DEFAULT '{}',
			amount BIGINT NOT NULL CHECK (amount > 0),
			reviewed_at TIMESTAMPTZ,
			reviewed_by UUID,
			funded_at TIMESTAMPTZ,
			receipt_key TEXT NOT NULL DEFAULT '',
			receipt_verified BOOLEAN NOT NULL DEFAULT FALSE,
			receipt_verified_at TIMESTAMPTZ,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"unique active application", `
		CREATE UNIQUE INDEX IF NOT EXISTS applications_active_unique
		ON applications (student_id, scholarship_id) WHERE status <> 'rejected'`},
	{"index applications by scholarship", `CREATE INDEX IF NOT EXISTS applications_scholarship_idx ON applications (scholarship_id, status)`},

	{"create wallets", `
		CREATE TABLE IF NOT EXISTS wallets (
			student_id UUID PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0,
			total_earned BIGINT NOT NULL DEFAULT 0,
			total_withdrawn BIGINT NOT NULL DEFAULT 0,
			upi_id TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT wallets_balance_check CHECK (balance >= 0)
		)`},
	{"create wallet transactions", `
		CREATE TABLE IF NOT EXISTS wallet_transactions (
			id UUID PRIMARY KEY,
			student_id UUID NOT NULL REFERENCES wallets (student_id),
			type TEXT NOT NULL CHECK (type IN ('credit', 'debit')),
			amount BIGINT NOT NULL CHECK (amount > 0),
			status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'failed')),
			scholarship_id UUID,
			application_id UUID,
			description TEXT NOT NULL DEFAULT '',
			reference TEXT NOT NULL,
			upi_transaction_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT wallet_transactions_reference_unique UNIQUE (student_id, reference)
		)`},
	{"index wallet transactions", `CREATE INDEX IF NOT EXISTS wallet_transactions_student_idx ON wallet_transactions (student_id, created_at DESC)`},

	{"create payments", `
		CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			sponsor_id UUID NOT NULL,
			scholarship_id UUID NOT NULL REFERENCES scholarships (id),
			amount BIGINT NOT NULL CHECK (amount > 0),
			currency TEXT NOT NULL,
			method TEXT NOT NULL CHECK (method IN ('upi', 'card', 'netbanking', 'wallet')),
			status TEXT NOT NULL CHECK (status IN ('pending', 'processing', 'completed', 'failed', 'refunded')),
			transaction_id TEXT NOT NULL UNIQUE,
			upi_id TEXT NOT NULL DEFAULT '',
			card_last4 TEXT NOT NULL DEFAULT '',
			card_brand TEXT NOT NULL DEFAULT '',
			bank_name TEXT NOT NULL DEFAULT '',
			bank_account_last4 TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			failure_reason TEXT NOT NULL DEFAULT '',
			resolve_after TIMESTAMPTZ,
			processed_at TIMESTAMPTZ,
			refunded_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"unique open payment", `
		CREATE UNIQUE INDEX IF NOT EXISTS payments_open_unique
		ON payments (scholarship_id) WHERE status IN ('pending', 'processing')`},
	{"index due payments", `CREATE INDEX IF NOT EXISTS payments_due_idx ON payments (resolve_after) WHERE status = 'processing'`},
	{"index payments by sponsor", `CREATE INDEX IF NOT EXISTS payments_sponsor_idx ON payments (sponsor_id, created_at DESC)`},
}

// RunMigrations applies the schema. Safe to call on every start.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	log.Info().Int("steps", len(migrations)).Msg("Running database migrations")

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.query); err != nil {
			log.Error().Err(err).Str("migration", m.name).Msg("Migration failed")
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
