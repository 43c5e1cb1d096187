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

// registryKey is the fixed identifier of the singleton registry row.
const registryKey = "registry"

type PostgresRegistryRepo struct {
	db *sqlx.DB
}

func NewPostgresRegistryRepo(db *sqlx.DB) *PostgresRegistryRepo {
	repo := &PostgresRegistryRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

type registryRow struct {
	Admin      string `db:"admin"`
	ChainsJSON []byte `db:"chains"`
	VenuesJSON []byte `db:"venues"`
}

func (r *PostgresRegistryRepo) Get(ctx context.Context) (*model.Registry, error) {
	var row registryRow
	query := `SELECT admin, chains, venues FROM registry WHERE id = $1 LIMIT 1`

	if err := r.db.GetContext(ctx, &row, query, registryKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	reg := &model.Registry{Admin: row.Admin}
	if err := json.Unmarshal(row.ChainsJSON, &reg.Chains); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(row.VenuesJSON, &reg.Venues); err != nil {
		return nil, err
	}
	return reg, nil
}

// Create inserts the singleton row. A second call fails with
// ErrAlreadyExists; the admin of the first write is never overwritten.
func (r *PostgresRegistryRepo) Create(ctx context.Context, reg *model.Registry) error {
	chains, _ := json.Marshal(reg.Chains)
	venues, _ := json.Marshal(reg.Venues)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO registry (id, admin, chains, venues, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO NOTHING
	`, registryKey, reg.Admin, chains, venues, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// ReplaceVenues swaps the venue catalog wholesale; chains and admin are
// untouched.
func (r *PostgresRegistryRepo) ReplaceVenues(ctx context.Context, venues []model.Venue) error {
	payload, _ := json.Marshal(venues)

	res, err := r.db.ExecContext(ctx, `
		UPDATE registry SET venues = $2, updated_at = $3 WHERE id = $1
	`, registryKey, payload, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRegistryRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS registry (
			id TEXT PRIMARY KEY,
			admin TEXT NOT NULL,
			chains JSONB,
			venues JSONB,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		)
	`)
	return err
}
