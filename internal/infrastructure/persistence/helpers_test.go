package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/client"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the schema applied
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX idx_clients_active_email ON clients (tenant_id, email) WHERE status = 'active'`,
	).Error)
	return db
}

func seedClient(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name, email string) *client.Client {
	t.Helper()
	c, err := client.NewClient(tenantID, client.Details{
		Name:       name,
		Email:      email,
		HourlyRate: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(context.Background(), c))
	return c
}

func seedTask(t *testing.T, db *gorm.DB, c *client.Client, hours int64, date time.Time) *task.Task {
	t.Helper()
	tk, err := task.NewTask(c.TenantID, c.ID, c.HourlyRate, task.Details{
		Description: "Work " + date.Format(time.DateOnly),
		Hours:       decimal.NewFromInt(hours),
		Date:        date,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormTaskRepository(db).Save(context.Background(), tk))
	return tk
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
