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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockClusterRepository creates a GormClusterRepository with a mocked SQL connection
func newMockClusterRepository(t *testing.T) (*GormClusterRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormClusterRepository(gormDB), mock, mockDB
}

func testCluster(t *testing.T) *matching.UnidentifiedCluster {
	t.Helper()
	size := 4
	fp := matching.OrderFingerprint{
		PartySize:  &size,
		Weekday:    time.Friday,
		TimeBucket: ordering.TimeBucketDinner,
	}
	return matching.NewCluster(fp, decimal.NewFromInt(350), time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC))
}

func TestGormClusterRepository_FindByID(t *testing.T) {
	t.Run("finds existing cluster and parses histograms", func(t *testing.T) {
		repo, mock, mockDB := newMockClusterRepository(t)
		defer mockDB.Close()

		clusterID := uuid.New()
		rows := sqlmock.NewRows([]string{
			"id", "version", "party_size_counts", "composition_counts",
			"day_counts", "time_counts", "item_counts",
			"typical_party_size", "order_count", "total_spent", "avg_ticket_size",
			"first_seen", "last_seen", "pattern_confidence",
		}).AddRow(
			clusterID, 3, `{"4":2}`, `{}`,
			`{"5":2}`, `{"dinner":2}`, `{}`,
			4, 2, decimal.NewFromInt(700), decimal.NewFromInt(350),
			time.Now().AddDate(0, 0, -14), time.Now(), 0.5,
		)

		mock.ExpectQuery(`SELECT \* FROM "unidentified_clusters" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(clusterID, 1).
			WillReturnRows(rows)

		cluster, err := repo.FindByID(context.Background(), clusterID)

		require.NoError(t, err)
		assert.Equal(t, clusterID, cluster.ID)
		assert.Equal(t, 2, cluster.OrderCount)
		assert.Equal(t, 2, cluster.PartySizeCounts[4])
		assert.Equal(t, 2, cluster.DayCounts[time.Friday])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing cluster to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockClusterRepository(t)
		defer mockDB.Close()

		clusterID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "unidentified_clusters" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(clusterID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		cluster, err := repo.FindByID(context.Background(), clusterID)

		assert.Nil(t, cluster)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClusterRepository_UpdateStatistics(t *testing.T) {
	t.Run("applies version-checked update", func(t *testing.T) {
		repo, mock, mockDB := newMockClusterRepository(t)
		defer mockDB.Close()

		cluster := testCluster(t)

		mock.ExpectExec(`UPDATE "unidentified_clusters" SET .* WHERE id = \$\d+ AND version = \$\d+ AND matched_customer_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatistics(context.Background(), cluster)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports conflict when no row matches", func(t *testing.T) {
		repo, mock, mockDB := newMockClusterRepository(t)
		defer mockDB.Close()

		cluster := testCluster(t)

		mock.ExpectExec(`UPDATE "unidentified_clusters" SET .* WHERE id = \$\d+ AND version = \$\d+ AND matched_customer_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatistics(context.Background(), cluster)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClusterRepository_UpdatePatternConfidence(t *testing.T) {
	t.Run("conflict when cluster was matched mid-flight", func(t *testing.T) {
		repo, mock, mockDB := newMockClusterRepository(t)
		defer mockDB.Close()

		cluster := testCluster(t)
		cluster.ApplyScore(matching.ScoreResult{PatternConfidence: 0.6})

		mock.ExpectExec(`UPDATE "unidentified_clusters" SET .* WHERE id = \$\d+ AND version = \$\d+ AND matched_customer_id IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePatternConfidence(context.Background(), cluster)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClusterRepository_Delete(t *testing.T) {
	t.Run("deletes unmatched cluster", func(t *testing.T) {
		repo, mock, mockDB := newMockClusterRepository(t)
		defer mockDB.Close()

		clusterID := uuid.New()
		mock.ExpectExec(`DELETE FROM "unidentified_clusters" WHERE id = \$1 AND matched_customer_id IS NULL`).
			WithArgs(clusterID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), clusterID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses to delete matched cluster", func(t *testing.T) {
		repo, mock, mockDB := newMockClusterRepository(t)
		defer mockDB.Close()

		clusterID := uuid.New()
		mock.ExpectExec(`DELETE FROM "unidentified_clusters" WHERE id = \$1 AND matched_customer_id IS NULL`).
			WithArgs(clusterID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), clusterID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
