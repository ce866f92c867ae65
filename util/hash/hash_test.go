package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("supersecret")
	require.NoError(t, err)
	require.NotEqual(t, "supersecret", h)

	require.True(t, Check(h, "supersecret"))
	require.False(t, Check(h, "wrong"))
	require.False(t, Check("not-a-hash", "supersecret"))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same input")
	require.NoError(t, err)
	b, err := HashPassword("same input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
