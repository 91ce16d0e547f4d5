package catalog

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/models"
)

const (
	selectSchemes = `
		SELECT scheme_id, scheme_name, description, level, state, category,
		       min_age, max_age, min_income, max_income, target_group, benefits,
		       is_active, last_updated, deadline, is_new
		FROM schemes
		ORDER BY position`

	selectCategories = `SELECT name FROM scheme_categories ORDER BY position`
	selectStates     = `SELECT name FROM scheme_states ORDER BY position`

	createTables = `
		CREATE TABLE IF NOT EXISTS schemes (
			scheme_id    TEXT PRIMARY KEY,
			position     INTEGER NOT NULL,
			scheme_name  TEXT NOT NULL,
			description  TEXT,
			level        TEXT NOT NULL,
			state        TEXT NOT NULL,
			category     TEXT NOT NULL,
			min_age      INTEGER NOT NULL,
			max_age      INTEGER NOT NULL,
			min_income   BIGINT NOT NULL,
			max_income   BIGINT NOT NULL,
			target_group TEXT NOT NULL DEFAULT '',
			benefits     TEXT NOT NULL DEFAULT '',
			is_active    BOOLEAN NOT NULL,
			last_updated TEXT NOT NULL DEFAULT '',
			deadline     TEXT,
			is_new       BOOLEAN
		);
		CREATE TABLE IF NOT EXISTS scheme_categories (name TEXT PRIMARY KEY, position INTEGER NOT NULL);
		CREATE TABLE IF NOT EXISTS scheme_states (name TEXT PRIMARY KEY, position INTEGER NOT NULL)`

	insertScheme = `
		INSERT INTO schemes (
			scheme_id, position, scheme_name, description, level, state, category,
			min_age, max_age, min_income, max_income, target_group, benefits,
			is_active, last_updated, deadline, is_new
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	insertCategory = `INSERT INTO scheme_categories (name, position) VALUES ($1, $2)`
	insertState    = `INSERT INTO scheme_states (name, position) VALUES ($1, $2)`
)

// PostgresProvider reads the catalog from the schemes, scheme_categories and
// scheme_states tables. Row order follows the position column.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Name() string { return "postgres" }

func (p *PostgresProvider) Load(ctx context.Context) (*models.Catalog, error) {
	schemes, err := p.loadSchemes(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), err)
	}

	categories, err := p.loadNames(ctx, selectCategories)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), err)
	}

	states, err := p.loadNames(ctx, selectStates)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(p.Name(), err)
	}

	catalog := &models.Catalog{Schemes: schemes, Categories: categories, States: states}
	if err := Check(p.Name(), catalog); err != nil {
		return nil, err
	}
	return normalize(catalog), nil
}

func (p *PostgresProvider) loadSchemes(ctx context.Context) ([]models.Scheme, error) {
	rows, err := p.db.QueryContext(ctx, selectSchemes)
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	var schemes []models.Scheme
	for rows.Next() {
		var (
			s           models.Scheme
			description sql.NullString
			deadline    sql.NullString
			isNew       sql.NullBool
		)
		if err := rows.Scan(
			&s.SchemeID, &s.SchemeName, &description, &s.Level, &s.State, &s.Category,
			&s.MinAge, &s.MaxAge, &s.MinIncome, &s.MaxIncome, &s.TargetGroup, &s.Benefits,
			&s.IsActive, &s.LastUpdated, &deadline, &isNew,
		); err != nil {
			return nil, fmt.Errorf("scan scheme: %w", err)
		}
		s.Description = description.String
		s.Deadline = deadline.String
		s.IsNew = isNew.Valid && isNew.Bool
		schemes = append(schemes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemes: %w", err)
	}
	return schemes, nil
}

func (p *PostgresProvider) loadNames(ctx context.Context, query string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reference list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan reference list: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PostgresStore replaces the catalog tables in a single transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Save(ctx context.Context, catalog *models.Catalog) error {
	if err := Check(s.Name(), catalog); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(s.Name(), err)
	}

	if err := s.write(ctx, tx, catalog); err != nil {
		_ = tx.Rollback()
		return apperrors.NewCatalogWriteFailedError(s.Name(), err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewCatalogWriteFailedError(s.Name(), err)
	}
	return nil
}

func (s *PostgresStore) write(ctx context.Context, tx *sql.Tx, catalog *models.Catalog) error {
	if _, err := tx.ExecContext(ctx, createTables); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	for _, table := range []string{"schemes", "scheme_categories", "scheme_states"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, sc := range catalog.Schemes {
		if _, err := tx.ExecContext(ctx, insertScheme,
			sc.SchemeID, i, sc.SchemeName, nullString(sc.Description), sc.Level, sc.State, sc.Category,
			sc.MinAge, sc.MaxAge, sc.MinIncome, sc.MaxIncome, sc.TargetGroup, sc.Benefits,
			sc.IsActive, sc.LastUpdated, nullString(sc.Deadline), sc.IsNew,
		); err != nil {
			return fmt.Errorf("insert scheme %s: %w", sc.SchemeID, err)
		}
	}

	for i, name := range catalog.Categories {
		if _, err := tx.ExecContext(ctx, insertCategory, name, i); err != nil {
			return fmt.Errorf("insert category %s: %w", name, err)
		}
	}

	for i, name := range catalog.States {
		if _, err := tx.ExecContext(ctx, insertState, name, i); err != nil {
			return fmt.Errorf("insert state %s: %w", name, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
