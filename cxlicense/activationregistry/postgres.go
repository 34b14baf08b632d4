package activationregistry

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPostgresTable = "cx_license_activations"

// validIdentifier matches safe PostgreSQL identifiers (letters, digits, underscores).
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresOption configures a PostgresRegistry.
type PostgresOption func(*PostgresRegistry)

// WithTableName sets the PostgreSQL table name. Default: "cx_license_activations".
func WithTableName(name string) PostgresOption {
	return func(r *PostgresRegistry) {
		r.tableName = name
	}
}

// PostgresRegistry implements Registry using PostgreSQL.
type PostgresRegistry struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewPostgresRegistry creates a PostgreSQL-backed activation registry.
// It auto-creates the table and indexes on initialization.
func NewPostgresRegistry(ctx context.Context, pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresRegistry, error) {
	r := &PostgresRegistry{
		pool:      pool,
		tableName: defaultPostgresTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !validIdentifier.MatchString(r.tableName) {
		return nil, fmt.Errorf("invalid table name %q: must match [a-zA-Z_][a-zA-Z0-9_]*", r.tableName)
	}
	if err := r.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return r, nil
}

func (r *PostgresRegistry) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			fingerprint  TEXT PRIMARY KEY,
			hostname     TEXT NOT NULL DEFAULT '',
			os           TEXT NOT NULL DEFAULT '',
			license_id   TEXT NOT NULL,
			tier         TEXT NOT NULL DEFAULT '',
			activated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_%s_license_id_last_seen
			ON %s (license_id, last_seen_at);
	`, r.tableName, r.tableName, r.tableName)
	_, err := r.pool.Exec(ctx, query)
	return err
}

func (r *PostgresRegistry) Record(ctx context.Context, rec ActivationRecord) (*ActivationRecord, error) {
	now := time.Now()
	query := fmt.Sprintf(`
		INSERT INTO %s (fingerprint, hostname, os, license_id, tier, activated_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (fingerprint) DO UPDATE SET
			hostname = EXCLUDED.hostname,
			os = EXCLUDED.os,
			license_id = EXCLUDED.license_id,
			tier = EXCLUDED.tier,
			last_seen_at = EXCLUDED.last_seen_at
		RETURNING activated_at, last_seen_at
	`, r.tableName)

	err := r.pool.QueryRow(ctx, query,
		rec.Fingerprint, rec.Hostname, rec.OS, rec.LicenseID, rec.Tier, now,
	).Scan(&rec.ActivatedAt, &rec.LastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("record activation: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRegistry) Remove(ctx context.Context, fingerprint string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE fingerprint = $1`, r.tableName)
	_, err := r.pool.Exec(ctx, query, fingerprint)
	if err != nil {
		return fmt.Errorf("remove activation: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) Touch(ctx context.Context, fingerprint string) error {
	query := fmt.Sprintf(`UPDATE %s SET last_seen_at = NOW() WHERE fingerprint = $1`, r.tableName)
	_, err := r.pool.Exec(ctx, query, fingerprint)
	if err != nil {
		return fmt.Errorf("touch activation: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) List(ctx context.Context, licenseID string) ([]ActivationRecord, error) {
	query := fmt.Sprintf(`
		SELECT fingerprint, hostname, os, license_id, tier, activated_at, last_seen_at
		FROM %s WHERE license_id = $1 ORDER BY activated_at
	`, r.tableName)

	rows, err := r.pool.Query(ctx, query, licenseID)
	if err != nil {
		return nil, fmt.Errorf("list activations: %w", err)
	}
	defer rows.Close()

	var recs []ActivationRecord
	for rows.Next() {
		var rec ActivationRecord
		if err := rows.Scan(&rec.Fingerprint, &rec.Hostname, &rec.OS,
			&rec.LicenseID, &rec.Tier, &rec.ActivatedAt, &rec.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan activation: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *PostgresRegistry) Count(ctx context.Context, licenseID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE license_id = $1`, r.tableName)
	var count int
	err := r.pool.QueryRow(ctx, query, licenseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count activations: %w", err)
	}
	return count, nil
}

func (r *PostgresRegistry) Prune(ctx context.Context, licenseID string, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	query := fmt.Sprintf(`DELETE FROM %s WHERE license_id = $1 AND last_seen_at < $2`, r.tableName)
	tag, err := r.pool.Exec(ctx, query, licenseID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune activations: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRegistry) Close(_ context.Context) error {
	return nil // user manages the pgxpool.Pool lifecycle
}
