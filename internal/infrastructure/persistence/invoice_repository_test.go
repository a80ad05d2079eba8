package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/task"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDraft(t *testing.T, tenantID, clientID uuid.UUID, tasks ...*task.Task) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.NewInvoice(tenantID, clientID, invoice.Terms{
		IssueDate: day(2024, 6, 1),
		Tax:       decimal.NewFromInt(10),
	}, tasks)
	require.NoError(t, err)
	return inv
}

func TestGormInvoiceRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	tasks := NewGormTaskRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	c := seedClient(t, db, tenantID, "Acme", "acme@example.test")

	t1 := seedTask(t, db, c, 2, day(2024, 5, 1))
	t2 := seedTask(t, db, c, 3, day(2024, 5, 2))

	inv := newDraft(t, tenantID, c.ID, t1, t2)
	require.NoError(t, repo.Create(ctx, inv))

	t.Run("numbers start at one per tenant", func(t *testing.T) {
		assert.Equal(t, int64(1), inv.Sequence)
		assert.Equal(t, "INV-000001", inv.Number)
		require.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("lines and totals are stored", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 2)
		assert.Equal(t, t1.ID, found.Lines[0].TaskID)
		assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(500)))
		assert.True(t, found.Total.Equal(decimal.NewFromInt(550)))
	})

	t.Run("tasks are claimed", func(t *testing.T) {
		claimed, err := tasks.FindByIDForTenant(ctx, tenantID, t1.ID)
		require.NoError(t, err)
		assert.True(t, claimed.Invoiced)
		require.NotNil(t, claimed.InvoiceID)
		assert.Equal(t, inv.ID, *claimed.InvoiceID)
		assert.Equal(t, 2, claimed.Version)
	})

	t.Run("already claimed task rolls everything back", func(t *testing.T) {
		t3 := seedTask(t, db, c, 1, day(2024, 5, 3))
		// t1 is stale in memory: it still looks un-invoiced
		again := newDraft(t, tenantID, c.ID, t3, t1)
		err := repo.Create(ctx, again)
		assert.ErrorIs(t, err, invoice.ErrTaskAlreadyInvoiced)
		assert.Empty(t, again.GetDomainEvents())

		count, err := repo.CountForTenant(ctx, tenantID, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		free, err := tasks.FindByIDForTenant(ctx, tenantID, t3.ID)
		require.NoError(t, err)
		assert.False(t, free.Invoiced)
	})

	t.Run("next invoice takes the next number", func(t *testing.T) {
		t4 := seedTask(t, db, c, 1, day(2024, 5, 4))
		next := newDraft(t, tenantID, c.ID, t4)
		require.NoError(t, repo.Create(ctx, next))
		// the rolled back attempt did not consume a number
		assert.Equal(t, "INV-000002", next.Number)
	})

	t.Run("other tenants count from one", func(t *testing.T) {
		otherTenant := uuid.New()
		oc := seedClient(t, db, otherTenant, "Other", "other@example.test")
		ot := seedTask(t, db, oc, 1, day(2024, 5, 1))
		other := newDraft(t, otherTenant, oc.ID, ot)
		require.NoError(t, repo.Create(ctx, other))
		assert.Equal(t, "INV-000001", other.Number)
	})
}

func TestGormInvoiceRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	tasks := NewGormTaskRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	c := seedClient(t, db, tenantID, "Acme", "acme@example.test")

	t.Run("paying completes the tasks", func(t *testing.T) {
		tk := seedTask(t, db, c, 2, day(2024, 5, 1))
		inv := newDraft(t, tenantID, c.ID, tk)
		require.NoError(t, repo.Create(ctx, inv))

		loaded, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.MarkPaid(day(2024, 6, 2)))
		require.NoError(t, repo.Update(ctx, loaded))

		done, err := tasks.FindByIDForTenant(ctx, tenantID, tk.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusCompleted, done.Status)

		totals, err := repo.TotalsByStatus(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), totals[invoice.StatusPaid].Count)
		assert.True(t, totals[invoice.StatusPaid].Total.Equal(decimal.NewFromInt(220)))
	})

	t.Run("stale update is rejected", func(t *testing.T) {
		tk := seedTask(t, db, c, 1, day(2024, 5, 2))
		inv := newDraft(t, tenantID, c.ID, tk)
		require.NoError(t, repo.Create(ctx, inv))

		a, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		b, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		require.NoError(t, err)

		require.NoError(t, a.MarkSent(day(2024, 6, 2)))
		require.NoError(t, repo.Update(ctx, a))

		require.NoError(t, b.MarkPaid(day(2024, 6, 3)))
		assert.ErrorIs(t, repo.Update(ctx, b), shared.ErrStaleVersion)
	})

	t.Run("delete releases the tasks", func(t *testing.T) {
		tk := seedTask(t, db, c, 1, day(2024, 5, 3))
		inv := newDraft(t, tenantID, c.ID, tk)
		require.NoError(t, repo.Create(ctx, inv))

		require.NoError(t, repo.Delete(ctx, inv))

		_, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)

		released, err := tasks.FindByIDForTenant(ctx, tenantID, tk.ID)
		require.NoError(t, err)
		assert.False(t, released.Invoiced)
		assert.Nil(t, released.InvoiceID)

		assert.ErrorIs(t, repo.Delete(ctx, inv), invoice.ErrInvoiceNotFound)
	})

	t.Run("filters by status", func(t *testing.T) {
		list, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{
			Page: 1, PageSize: 10,
			Filters: map[string]any{"status": string(invoice.StatusSent)},
		})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Len(t, list[0].Lines, 1)
	})
}

func TestNextInvoiceSequence_SQL(t *testing.T) {
	database, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	tenantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "invoice_sequences"`) + `.*` +
		regexp.QuoteMeta(`ON CONFLICT ("tenant_id") DO UPDATE SET "last_value"=invoice_sequences.last_value + 1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "invoice_sequences" WHERE tenant_id = $1`)).
		WithArgs(tenantID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "last_value"}).AddRow(tenantID, 42))
	mock.ExpectCommit()

	var seq int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		seq, err = nextInvoiceSequence(tx, tenantID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}
