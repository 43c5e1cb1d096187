package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/SolYield/yieldgate/internal/model"
	"github.com/jmoiron/sqlx"
)

type PostgresLedgerRepo struct {
	db *sqlx.DB
}

func NewPostgresLedgerRepo(db *sqlx.DB) *PostgresLedgerRepo {
	repo := &PostgresLedgerRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

type ledgerRow struct {
	Owner           string `db:"owner"`
	DepositedAmount int64  `db:"deposited_amount"`
	ClaimedRewards  int64  `db:"claimed_rewards"`
	PositionsJSON   []byte `db:"positions"`
}

func (r *PostgresLedgerRepo) Get(ctx context.Context, owner string) (*model.OwnerLedger, error) {
	var row ledgerRow
	query := `SELECT owner, deposited_amount, claimed_rewards, positions FROM owner_ledgers WHERE owner = $1 LIMIT 1`

	if err := r.db.GetContext(ctx, &row, query, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rowToLedger(&row)
}

// Create writes a fresh ledger; an existing row for the same owner
// fails with ErrAlreadyExists (one deposit lifecycle per owner).
func (r *PostgresLedgerRepo) Create(ctx context.Context, ledger *model.OwnerLedger) error {
	positions, _ := json.Marshal(ledger.Positions)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO owner_ledgers (owner, deposited_amount, claimed_rewards, positions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (owner) DO NOTHING
	`, ledger.Owner, int64(ledger.DepositedAmount), int64(ledger.ClaimedRewards), positions, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *PostgresLedgerRepo) Update(ctx context.Context, ledger *model.OwnerLedger) error {
	positions, _ := json.Marshal(ledger.Positions)

	res, err := r.db.ExecContext(ctx, `
		UPDATE owner_ledgers
		SET deposited_amount = $2, claimed_rewards = $3, positions = $4, updated_at = $5
		WHERE owner = $1
	`, ledger.Owner, int64(ledger.DepositedAmount), int64(ledger.ClaimedRewards), positions, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func rowToLedger(row *ledgerRow) (*model.OwnerLedger, error) {
	ledger := &model.OwnerLedger{
		Owner:           row.Owner,
		DepositedAmount: uint64(row.DepositedAmount),
		ClaimedRewards:  uint64(row.ClaimedRewards),
	}
	if len(row.PositionsJSON) > 0 {
		if err := json.Unmarshal(row.PositionsJSON, &ledger.Positions); err != nil {
			return nil, err
		}
	}
	return ledger, nil
}

func (r *PostgresLedgerRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS owner_ledgers (
			owner TEXT PRIMARY KEY,
			deposited_amount BIGINT NOT NULL,
			claimed_rewards BIGINT NOT NULL DEFAULT 0,
			positions JSONB,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		)
	`)
	return err
}
