package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginLimiterBlocksAfterBurst(t *testing.T) {
	l := NewLoginLimiter(4) // burst of 2

	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	// Other clients have their own budget.
	require.True(t, l.Allow("10.0.0.2"))
}

func TestLoginLimiterDisabled(t *testing.T) {
	l := NewLoginLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("x"))
	}

	var nilLimiter *LoginLimiter
	require.True(t, nilLimiter.Allow("x"))
}
