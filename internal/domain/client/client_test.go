package client

import (
	"testing"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{
		Name:       "Acme Studio",
		Email:      "Billing@Acme.io",
		Address:    "1 Main St",
		Website:    "https://acme.io",
		HourlyRate: decimal.NewFromInt(50),
	}
}

func TestNewClient(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates an active client with normalized email", func(t *testing.T) {
		c, err := NewClient(tenantID, validDetails())

		require.NoError(t, err)
		assert.Equal(t, tenantID, c.TenantID)
		assert.Equal(t, "billing@acme.io", c.Email)
		assert.Equal(t, StatusActive, c.Status)
		assert.True(t, c.HourlyRate.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, c.Version)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeClientCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("allows a zero rate", func(t *testing.T) {
		d := validDetails()
		d.HourlyRate = decimal.Zero
		_, err := NewClient(tenantID, d)
		assert.NoError(t, err)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Details)
			want   error
		}{
			{"negative rate", func(d *Details) { d.HourlyRate = decimal.NewFromInt(-1) }, ErrNegativeRate},
			{"rate below a cent", func(d *Details) { d.HourlyRate = decimal.RequireFromString("90.125") }, ErrRatePrecision},
			{"bad email", func(d *Details) { d.Email = "acme.io" }, ErrInvalidEmail},
			{"email without tld", func(d *Details) { d.Email = "a@acme" }, ErrInvalidEmail},
			{"blank name", func(d *Details) { d.Name = "   " }, ErrInvalidName},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := validDetails()
				tt.mutate(&d)
				c, err := NewClient(tenantID, d)
				assert.Nil(t, c)
				assert.ErrorIs(t, err, tt.want)
				assert.True(t, shared.IsValidation(err))
			})
		}
	})
}

func TestClientUpdate(t *testing.T) {
	c, err := NewClient(uuid.New(), validDetails())
	require.NoError(t, err)
	c.ClearDomainEvents()

	d := validDetails()
	d.Name = "Acme Ltd"
	d.HourlyRate = decimal.NewFromInt(75)
	require.NoError(t, c.Update(d))

	assert.Equal(t, "Acme Ltd", c.Name)
	assert.Equal(t, 2, c.Version)
	require.Len(t, c.GetDomainEvents(), 1)
	evt, ok := c.GetDomainEvents()[0].(*ClientUpdatedEvent)
	require.True(t, ok)
	assert.True(t, evt.RateChanged)

	d.HourlyRate = decimal.NewFromInt(-5)
	assert.ErrorIs(t, c.Update(d), ErrNegativeRate)
	assert.True(t, c.HourlyRate.Equal(decimal.NewFromInt(75)))
}

func TestClientStatus(t *testing.T) {
	c, err := NewClient(uuid.New(), validDetails())
	require.NoError(t, err)

	t.Run("archive sets inactive and is repeatable", func(t *testing.T) {
		c.Archive()
		assert.Equal(t, StatusInactive, c.Status)
		assert.False(t, c.IsActive())
		version := c.Version
		c.Archive()
		assert.Equal(t, version, c.Version)
	})

	t.Run("reactivate", func(t *testing.T) {
		require.NoError(t, c.SetStatus(StatusActive))
		assert.True(t, c.IsActive())
	})

	t.Run("unknown status", func(t *testing.T) {
		assert.ErrorIs(t, c.SetStatus("deleted"), ErrInvalidStatus)
	})
}
