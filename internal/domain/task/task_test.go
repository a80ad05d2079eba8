package task

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestTask(t *testing.T, hours, rate string) *Task {
	t.Helper()
	tk, err := NewTask(uuid.New(), uuid.New(), d(rate), Details{
		Description: "Design review",
		Hours:       d(hours),
		Date:        time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return tk
}

func TestNewTask(t *testing.T) {
	t.Run("computes amount from hours and rate", func(t *testing.T) {
		tk := newTestTask(t, "2.5", "50")

		assert.True(t, tk.Amount.Equal(d("125")), "amount %s", tk.Amount)
		assert.Equal(t, StatusPending, tk.Status)
		assert.False(t, tk.Invoiced)
		assert.Nil(t, tk.InvoiceID)
		assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), tk.Date)
		assert.Len(t, tk.GetDomainEvents(), 1)
	})

	t.Run("amount is exact at the stored scale", func(t *testing.T) {
		tk := newTestTask(t, "1.33", "72.57")
		assert.True(t, tk.Amount.Equal(d("96.5181")))
		assert.True(t, tk.Amount.Equal(tk.Hours.Mul(tk.HourlyRate)))
		assert.True(t, tk.Amount.Equal(tk.Amount.Round(4)))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name    string
			rate    string
			details Details
			want    error
		}{
			{"negative hours", "10", Details{Description: "x", Hours: d("-1"), Date: time.Now()}, ErrNegativeHours},
			{"negative rate", "-10", Details{Description: "x", Hours: d("1"), Date: time.Now()}, ErrNegativeRate},
			{"hours below a hundredth", "10", Details{Description: "x", Hours: d("0.3333"), Date: time.Now()}, ErrHoursPrecision},
			{"rate below a cent", "33.3333", Details{Description: "x", Hours: d("1"), Date: time.Now()}, ErrRatePrecision},
			{"missing description", "10", Details{Hours: d("1"), Date: time.Now()}, ErrInvalidDescription},
			{"missing date", "10", Details{Description: "x", Hours: d("1")}, ErrInvalidDate},
			{"unknown status", "10", Details{Description: "x", Hours: d("1"), Date: time.Now(), Status: "done"}, ErrInvalidStatus},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tk, err := NewTask(uuid.New(), uuid.New(), d(tt.rate), tt.details)
				assert.Nil(t, tk)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})
}

func TestTaskUpdateRecomputesAmount(t *testing.T) {
	tk := newTestTask(t, "2", "50")

	require.NoError(t, tk.Update(Details{Description: "Longer review", Hours: d("3"), Date: tk.Date, Status: StatusInProgress}))
	assert.True(t, tk.Amount.Equal(d("150")))
	assert.Equal(t, StatusInProgress, tk.Status)

	require.NoError(t, tk.Reassign(uuid.New(), d("80")))
	assert.True(t, tk.Amount.Equal(d("240")))

	require.NoError(t, tk.SetRate(d("0")))
	assert.True(t, tk.Amount.IsZero())
}

func TestInvoicedTaskRules(t *testing.T) {
	tk := newTestTask(t, "2", "50")
	require.NoError(t, tk.EnsureDeletable())

	invoiceID := uuid.New()
	tk.Invoiced = true
	tk.InvoiceID = &invoiceID

	t.Run("cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, tk.EnsureDeletable(), ErrTaskInvoiced)
	})

	t.Run("billing fields are frozen", func(t *testing.T) {
		assert.ErrorIs(t, tk.Update(Details{Description: "x", Hours: d("9"), Date: tk.Date}), ErrTaskLocked)
		assert.ErrorIs(t, tk.Reassign(uuid.New(), tk.HourlyRate), ErrTaskLocked)
		assert.ErrorIs(t, tk.SetRate(d("99")), ErrTaskLocked)
	})

	t.Run("description and status stay editable", func(t *testing.T) {
		require.NoError(t, tk.Update(Details{Description: "Renamed", Hours: tk.Hours, Date: tk.Date, Status: StatusCompleted}))
		assert.Equal(t, "Renamed", tk.Description)
	})
}

func TestRateChangesKeepPrecision(t *testing.T) {
	tk := newTestTask(t, "0.25", "80")
	assert.ErrorIs(t, tk.SetRate(d("80.005")), ErrRatePrecision)
	assert.True(t, tk.HourlyRate.Equal(d("80")))
	assert.ErrorIs(t, tk.Update(Details{Description: "x", Hours: d("0.255"), Date: tk.Date}), ErrHoursPrecision)
	assert.True(t, tk.Amount.Equal(d("20")))
}
