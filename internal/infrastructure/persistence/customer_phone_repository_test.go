package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockPhoneRepository(t *testing.T) (*GormCustomerPhoneRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCustomerPhoneRepository(gormDB), mock, mockDB
}

func TestGormCustomerPhoneRepository_FindByNormalizedNumber(t *testing.T) {
	t.Run("finds phones across owners", func(t *testing.T) {
		repo, mock, mockDB := newMockPhoneRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "customer_id", "phone_number", "normalized_number", "is_primary", "added_at"}).
			AddRow(uuid.New(), uuid.New(), "55 1234 5678", "5512345678", true, time.Now()).
			AddRow(uuid.New(), uuid.New(), "(55) 1234-5678", "5512345678", false, time.Now())

		mock.ExpectQuery(`SELECT \* FROM "customer_phones" WHERE normalized_number = \$1`).
			WithArgs("5512345678").
			WillReturnRows(rows)

		phones, err := repo.FindByNormalizedNumber(context.Background(), "5512345678")

		require.NoError(t, err)
		assert.Len(t, phones, 2)
		assert.NotEqual(t, phones[0].CustomerID, phones[1].CustomerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty number", func(t *testing.T) {
		repo, _, mockDB := newMockPhoneRepository(t)
		defer mockDB.Close()

		_, err := repo.FindByNormalizedNumber(context.Background(), "")

		assert.Error(t, err)
	})
}

func TestGormCustomerPhoneRepository_SetPrimary(t *testing.T) {
	t.Run("swaps primary in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockPhoneRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		phoneID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "customer_phones" SET "is_primary"=\$1.* WHERE customer_id = \$\d+ AND is_primary = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "customer_phones" SET "is_primary"=\$1.* WHERE id = \$\d+ AND customer_id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SetPrimary(context.Background(), customerID, phoneID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when phone belongs to another customer", func(t *testing.T) {
		repo, mock, mockDB := newMockPhoneRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "customer_phones" SET "is_primary"=\$1.* WHERE customer_id = \$\d+ AND is_primary = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "customer_phones" SET "is_primary"=\$1.* WHERE id = \$\d+ AND customer_id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SetPrimary(context.Background(), uuid.New(), uuid.New())

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
