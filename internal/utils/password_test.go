package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "pw", hash)
	require.True(t, VerifyPassword(hash, "pw"))
	require.False(t, VerifyPassword(hash, "wrong"))
}

func TestHashPassword_OutOfRangeCost(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}
