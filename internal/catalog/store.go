// Package catalog holds the per-terminal contact and app catalogs the
// terminals report, and answers the lookup queries the dialogue runs
// against them.
package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"voz/internal/domain"
	"voz/internal/nlu"
)

// Store persists reported catalogs in Postgres. Labels are stored alongside
// their normalized form so lookups match the way commands are matched.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			terminal_id TEXT NOT NULL,
			contact_id TEXT NOT NULL,
			name TEXT NOT NULL,
			normalized_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (terminal_id, normalized_name)
		);`,
		`CREATE TABLE IF NOT EXISTS apps (
			terminal_id TEXT NOT NULL,
			package TEXT NOT NULL,
			label TEXT NOT NULL,
			normalized_label TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (terminal_id, package)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_apps_terminal_label ON apps(terminal_id, normalized_label);`,
		`CREATE TABLE IF NOT EXISTS catalog_reports (
			terminal_id TEXT PRIMARY KEY,
			catalog_version BIGINT NOT NULL DEFAULT 0,
			contact_count INT NOT NULL DEFAULT 0,
			app_count INT NOT NULL DEFAULT 0,
			reported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceCatalog swaps the terminal's catalog for the reported one in a
// single transaction. Contacts sharing a normalized name collapse to the
// first reported entry, so duplicate address-book rows do not inflate the
// disambiguation list.
func (s *Store) ReplaceCatalog(ctx context.Context, report domain.CatalogReport) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM contacts WHERE terminal_id=$1`, report.TerminalID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM apps WHERE terminal_id=$1`, report.TerminalID); err != nil {
		return err
	}

	for _, c := range report.Contacts {
		_, err := tx.Exec(ctx, `
			INSERT INTO contacts(terminal_id, contact_id, name, normalized_name, phone)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (terminal_id, normalized_name) DO NOTHING
		`, report.TerminalID, c.ContactID, c.Name, nlu.Normalize(c.Name), c.Phone)
		if err != nil {
			return err
		}
	}
	for _, a := range report.Apps {
		_, err := tx.Exec(ctx, `
			INSERT INTO apps(terminal_id, package, label, normalized_label)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (terminal_id, package) DO UPDATE SET
				label = EXCLUDED.label,
				normalized_label = EXCLUDED.normalized_label,
				updated_at = NOW()
		`, report.TerminalID, a.Package, a.Label, nlu.Normalize(a.Label))
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO catalog_reports(terminal_id, catalog_version, contact_count, app_count, reported_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (terminal_id) DO UPDATE SET
			catalog_version = EXCLUDED.catalog_version,
			contact_count = EXCLUDED.contact_count,
			app_count = EXCLUDED.app_count,
			reported_at = NOW();
	`, report.TerminalID, report.CatalogVersion, len(report.Contacts), len(report.Apps)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// LookupContacts returns the terminal's contacts whose normalized name
// contains the normalized key. Payload carries the phone number.
func (s *Store) LookupContacts(ctx context.Context, terminalID, normalizedKey string) ([]domain.Candidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT contact_id, name, phone
		FROM contacts
		WHERE terminal_id=$1 AND normalized_name LIKE '%' || $2 || '%'
		ORDER BY name ASC
	`, terminalID, normalizedKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.Label, &c.Payload); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LookupApps returns the terminal's apps whose normalized label contains the
// normalized key. Payload carries the package name.
func (s *Store) LookupApps(ctx context.Context, terminalID, normalizedKey string) ([]domain.Candidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT package, label, package
		FROM apps
		WHERE terminal_id=$1 AND normalized_label LIKE '%' || $2 || '%'
		ORDER BY label ASC
	`, terminalID, normalizedKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.Label, &c.Payload); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
