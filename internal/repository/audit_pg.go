package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SolYield/yieldgate/internal/model"
	"github.com/jmoiron/sqlx"
)

type PostgresAuditRepo struct {
	db *sqlx.DB
}

func NewPostgresAuditRepo(db *sqlx.DB) *PostgresAuditRepo {
	repo := &PostgresAuditRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresAuditRepo) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	contextJSON, _ := json.Marshal(entry.Context)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, caller, method, path, ip, user_agent,
			request_body, status_code, response_body,
			latency_ms, context, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO NOTHING
	`, entry.ID, entry.Caller, entry.Method, entry.Path, entry.IP, entry.UserAgent,
		entry.RequestBody, entry.StatusCode, entry.ResponseBody,
		entry.LatencyMs, contextJSON, entry.CreatedAt)
	return err
}

func (r *PostgresAuditRepo) List(ctx context.Context, caller string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var (
		clauses []string
		args    []interface{}
	)
	if caller != "" {
		args = append(args, caller)
		clauses = append(clauses, fmt.Sprintf("caller = $%d", len(args)))
	}
	if from != nil {
		args = append(args, *from)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, caller, method, path, ip, user_agent, request_body, status_code, response_body, latency_ms, context, created_at FROM audit_logs`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*model.AuditLog, 0, limit)
	for rows.Next() {
		var (
			entry       model.AuditLog
			contextJSON []byte
		)
		if err := rows.Scan(
			&entry.ID, &entry.Caller, &entry.Method, &entry.Path, &entry.IP, &entry.UserAgent,
			&entry.RequestBody, &entry.StatusCode, &entry.ResponseBody,
			&entry.LatencyMs, &contextJSON, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Context = map[string]interface{}{}
		if len(contextJSON) > 0 {
			_ = json.Unmarshal(contextJSON, &entry.Context)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (r *PostgresAuditRepo) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	return err
}

func (r *PostgresAuditRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			caller TEXT,
			method TEXT,
			path TEXT,
			ip TEXT,
			user_agent TEXT,
			request_body TEXT,
			status_code INTEGER,
			response_body TEXT,
			latency_ms BIGINT,
			context JSONB,
			created_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_audit_logs_caller ON audit_logs(caller, created_at DESC)`)
	return nil
}
