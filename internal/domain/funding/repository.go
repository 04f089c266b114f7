package funding

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
)

// FundFunc decides the payout for locked rows.
// existing is the ledger entry already stored under the payout reference.
// Returning a nil entry writes nothing.
type FundFunc func(s *scholarship.Scholarship, a *application.Application, w *wallet.Wallet, existing *wallet.Transaction) (*wallet.Transaction, error)

// Locked is the state after a payout attempt
type Locked struct {
	Scholarship *scholarship.Scholarship
	Application *application.Application
	Wallet      *wallet.Wallet
	Transaction *wallet.Transaction
}

// Repository writes a payout across scholarship, application and wallet rows
type Repository interface {
	// Fund locks scholarship, application and wallet in that order and persists all three with the
	// ledger entry in one transaction
	Fund(ctx context.Context, applicationID uuid.UUID, reference string, fn FundFunc) (*Locked, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates funding repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Fund(ctx context.Context, applicationID uuid.UUID, reference string, fn FundFunc) (*Locked, error) {
	var out *Locked
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var scholarshipID uuid.UUID
		err := tx.GetContext(ctx, &scholarshipID, `SELECT scholarship_id FROM applications WHERE id = $1`, applicationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return application.ErrApplicationNotFound
			}
			return err
		}

		s, err := scholarship.LockForUpdate(ctx, tx, scholarshipID)
		if err != nil {
			return err
		}
		a, err := application.LockForUpdate(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		w, err := wallet.LockForUpdate(ctx, tx, a.StudentID)
		if err != nil {
			return err
		}
		existing, err := wallet.FindByReferenceTx(ctx, tx, a.StudentID, reference)
		if err != nil {
			return err
		}

		entry, err := fn(s, a, w, existing)
		if err != nil {
			return err
		}
		out = &Locked{Scholarship: s, Application: a, Wallet: w, Transaction: existing}
		if entry == nil {
			return nil
		}

		if err := wallet.InsertTransactionTx(ctx, tx, entry); err != nil {
			return err
		}
		if err := wallet.SaveTx(ctx, tx, w); err != nil {
			return err
		}
		if err := application.SaveTx(ctx, tx, a); err != nil {
			return err
		}
		if err := scholarship.SaveTx(ctx, tx, s); err != nil {
			return err
		}
		out.Transaction = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Application.ScholarshipTitle = out.Scholarship.Title
	return out, nil
}
