package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("save booking: %w", NewConflictError("dates taken"))

	assert.Equal(t, CodeConflict, CodeOf(err))
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(fmt.Errorf("boom")))
}

func TestWithDetail(t *testing.T) {
	err := NewValidationError("bad guests").WithDetail("kind", "guest_bounds")

	assert.Equal(t, "guest_bounds", err.Details["kind"])
	assert.Equal(t, "VALIDATION_ERROR: bad guests", err.Error())
}

func TestNewPaginatedResult(t *testing.T) {
	res := NewPaginatedResult[int](nil, 41, 2, 20)

	assert.Equal(t, 3, res.TotalPages)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}
