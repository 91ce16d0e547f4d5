package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scheme-assist/internal/common/errors"
)

var schemeColumns = []string{
	"scheme_id", "scheme_name", "description", "level", "state", "category",
	"min_age", "max_age", "min_income", "max_income", "target_group", "benefits",
	"is_active", "last_updated", "deadline", "is_new",
}

func expectReferenceLists(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT name FROM scheme_categories ORDER BY position`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Agriculture").AddRow("Health"))
	mock.ExpectQuery(`SELECT name FROM scheme_states ORDER BY position`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Kerala"))
}

func TestPostgresProvider_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(schemeColumns).
		AddRow("PMKISAN", "PM-KISAN", nil, "Central", "All", "Agriculture",
			18, 100, 0, 200000, "Farmers", "Rs 6000", true, "2024-01-15", nil, nil).
		AddRow("KL-KARUNYA", "Karunya", "Health cover", "State", "Kerala", "Health",
			0, 120, 0, 300000, "Households", "Rs 5 lakh", true, "2024-02-01", "2025-03-31", true)
	mock.ExpectQuery(`SELECT scheme_id, scheme_name, description, .* FROM schemes ORDER BY position`).
		WillReturnRows(rows)
	expectReferenceLists(mock)

	p := NewPostgresProvider(db)
	c, err := p.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, c.Schemes, 2)
	assert.Equal(t, "PMKISAN", c.Schemes[0].SchemeID)
	assert.Equal(t, "", c.Schemes[0].Description)
	assert.Equal(t, "", c.Schemes[0].Deadline)
	assert.False(t, c.Schemes[0].IsNew)
	assert.Equal(t, int64(200000), c.Schemes[0].MaxIncome)
	assert.Equal(t, "Health cover", c.Schemes[1].Description)
	assert.Equal(t, "2025-03-31", c.Schemes[1].Deadline)
	assert.True(t, c.Schemes[1].IsNew)
	assert.Equal(t, []string{"Agriculture", "Health"}, c.Categories)
	assert.Equal(t, []string{"Kerala"}, c.States)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_Errors(t *testing.T) {
	t.Run("query failure is unavailable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM schemes`).WillReturnError(errors.New("connection reset"))

		_, err = NewPostgresProvider(db).Load(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogUnavailable))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reference list failure is unavailable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM schemes`).WillReturnRows(sqlmock.NewRows(schemeColumns))
		mock.ExpectQuery(`FROM scheme_categories`).WillReturnError(errors.New("relation does not exist"))

		_, err = NewPostgresProvider(db).Load(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogUnavailable))
	})

	t.Run("inverted bounds are malformed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM schemes`).WillReturnRows(sqlmock.NewRows(schemeColumns).
			AddRow("BAD", "Bad", nil, "Central", "All", "Health",
				70, 20, 0, 1000, "", "", true, "", nil, nil))
		expectReferenceLists(mock)

		_, err = NewPostgresProvider(db).Load(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogMalformed))
	})
}

func TestPostgresStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	catalog := fixtureCatalog(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schemes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM schemes`).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM scheme_categories`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM scheme_states`).WillReturnResult(sqlmock.NewResult(0, 1))
	for range catalog.Schemes {
		mock.ExpectExec(`INSERT INTO schemes`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for i, name := range catalog.Categories {
		mock.ExpectExec(`INSERT INTO scheme_categories`).WithArgs(name, i).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for i, name := range catalog.States {
		mock.ExpectExec(`INSERT INTO scheme_states`).WithArgs(name, i).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, NewPostgresStore(db).Save(context.Background(), catalog))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM schemes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM scheme_categories`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM scheme_states`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schemes`).WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	err = NewPostgresStore(db).Save(context.Background(), fixtureCatalog(t))

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCatalogWriteFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
