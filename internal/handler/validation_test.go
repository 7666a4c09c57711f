package handler_test

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holidaze/service-booking/internal/handler"
)

func TestRegisterValidators_CalendarDate(t *testing.T) {
	require.NotPanics(t, handler.RegisterValidators)
	require.NotPanics(t, handler.RegisterValidators)

	type request struct {
		Date string `binding:"omitempty,calendar_date"`
	}

	tests := []struct {
		date  string
		valid bool
	}{
		{"", true},
		{"2024-06-10", true},
		{"2024-06-10T00:00:00Z", true},
		{"2024-06-10T00:00:00.000+02:00", true},
		{"2024-06-10T00:00:00", true},
		{"2024-06-10T00:00:00.000", true},
		{"2024-02-30", false},
		{"10/06/2024", false},
		{"2024-06-10T", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(request{Date: tt.date})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
