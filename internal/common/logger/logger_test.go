package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNamed(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			log, err := NewNamed(env, "service-booking")
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}
