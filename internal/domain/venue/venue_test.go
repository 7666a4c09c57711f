package venue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holidaze/service-booking/internal/common/domain"
)

func TestNewVenue(t *testing.T) {
	managerID := uuid.New()

	v, err := NewVenue(managerID, "Fjord Cabin", "", 4, 120000, "")
	require.NoError(t, err)

	assert.True(t, v.IsActive())
	assert.True(t, v.IsManagedBy(managerID))
	assert.Equal(t, domain.CurrencyNOK, v.Currency())
}

func TestNewVenue_Validation(t *testing.T) {
	_, err := NewVenue(uuid.New(), "Cabin", "", 0, 100, "NOK")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = NewVenue(uuid.Nil, "Cabin", "", 2, 100, "NOK")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = NewVenue(uuid.New(), "", "", 2, 100, "NOK")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestVenue_UpdateAndArchive(t *testing.T) {
	v, err := NewVenue(uuid.New(), "Cabin", "", 2, 100, "NOK")
	require.NoError(t, err)

	v.Update("", "By the lake", 6, 0)
	assert.Equal(t, "Cabin", v.Name())
	assert.Equal(t, "By the lake", v.Description())
	assert.Equal(t, 6, v.MaxGuests())
	assert.Equal(t, int64(100), v.NightlyPriceCents())
	assert.Equal(t, int64(2), v.Version())

	v.Archive()
	assert.False(t, v.IsActive())
	assert.Equal(t, int64(3), v.Version())
}
