package profile

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileUpdate(t *testing.T) {
	tenantID := uuid.New()
	p := New(tenantID)
	assert.Equal(t, tenantID, p.ID)

	require.NoError(t, p.Update(" Jane Doe Design ", "Jane@Doe.dev", "Berlin", "DE123"))
	assert.Equal(t, "Jane Doe Design", p.BusinessName)
	assert.Equal(t, "jane@doe.dev", p.Email)

	assert.ErrorIs(t, p.Update("x", "not-an-email", "", ""), ErrInvalidEmail)

	require.NoError(t, p.Update("", "jane@doe.dev", "", ""))
	assert.Equal(t, "jane@doe.dev", p.DisplayName())
}

func TestLogoObjectKey(t *testing.T) {
	tenantID := uuid.New()

	key, err := LogoObjectKey(tenantID, "image/PNG", 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "logos/"+tenantID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	_, err = LogoObjectKey(tenantID, "application/pdf", 10)
	assert.ErrorIs(t, err, ErrInvalidLogoType)
	_, err = LogoObjectKey(tenantID, "image/jpeg", MaxLogoSize+1)
	assert.ErrorIs(t, err, ErrLogoTooLarge)
	_, err = LogoObjectKey(tenantID, "image/jpeg", 0)
	assert.ErrorIs(t, err, ErrEmptyLogo)
}
