package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockAssignmentStore(t *testing.T) (*GormAssignmentStore, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormAssignmentStore(gormDB), mock, mockDB
}

func anonymousOrder(t *testing.T) *ordering.Order {
	t.Helper()
	order, err := ordering.NewOrder(ordering.OrderTypeDineIn, time.Date(2026, 3, 13, 19, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	return order
}

func TestGormAssignmentStore_Absorb(t *testing.T) {
	t.Run("commits statistics and linkage together", func(t *testing.T) {
		store, mock, mockDB := newMockAssignmentStore(t)
		defer mockDB.Close()

		cluster := testCluster(t)
		order := anonymousOrder(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "unidentified_clusters" SET .* WHERE id = \$\d+ AND version = \$\d+ AND matched_customer_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+ AND customer_id IS NULL AND cluster_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.Absorb(context.Background(), cluster, order)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on a cluster version conflict", func(t *testing.T) {
		store, mock, mockDB := newMockAssignmentStore(t)
		defer mockDB.Close()

		cluster := testCluster(t)
		order := anonymousOrder(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "unidentified_clusters" SET .* WHERE id = \$\d+ AND version = \$\d+ AND matched_customer_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.Absorb(context.Background(), cluster, order)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a failed order write rolls back the statistics", func(t *testing.T) {
		store, mock, mockDB := newMockAssignmentStore(t)
		defer mockDB.Close()

		cluster := testCluster(t)
		order := anonymousOrder(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "unidentified_clusters" SET .* WHERE id = \$\d+ AND version = \$\d+ AND matched_customer_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+ AND customer_id IS NULL AND cluster_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.Absorb(context.Background(), cluster, order)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAssignmentStore_Seed(t *testing.T) {
	t.Run("inserts the cluster and links the order together", func(t *testing.T) {
		store, mock, mockDB := newMockAssignmentStore(t)
		defer mockDB.Close()

		order := anonymousOrder(t)
		cluster := matching.NewCluster(matching.ExtractFingerprint(order), order.Total, order.OrderedAt)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "unidentified_clusters"`).
			WillReturnRows(sqlmock.NewRows([]string{"info_quality_score"}).AddRow(0.0))
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+ AND customer_id IS NULL AND cluster_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.Seed(context.Background(), cluster, order)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a failed order write rolls back the insert", func(t *testing.T) {
		store, mock, mockDB := newMockAssignmentStore(t)
		defer mockDB.Close()

		order := anonymousOrder(t)
		cluster := matching.NewCluster(matching.ExtractFingerprint(order), order.Total, order.OrderedAt)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "unidentified_clusters"`).
			WillReturnRows(sqlmock.NewRows([]string{"info_quality_score"}).AddRow(0.0))
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+ AND customer_id IS NULL AND cluster_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.Seed(context.Background(), cluster, order)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
