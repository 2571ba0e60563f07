package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash_UsesConfiguredCost(t *testing.T) {
	digest, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, Cost, cost)
}

func TestHash_Salted(t *testing.T) {
	a, err := Hash("secret1")
	require.NoError(t, err)
	b, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify(t *testing.T) {
	digest, err := Hash("secret1")
	require.NoError(t, err)

	assert.True(t, Verify("secret1", digest))
	assert.False(t, Verify("secret2", digest))
	assert.False(t, Verify("", digest))
}

func TestVerify_MalformedDigest(t *testing.T) {
	assert.False(t, Verify("secret1", "not-a-bcrypt-hash"))
	assert.False(t, Verify("secret1", ""))
}

func TestHash_TooLong(t *testing.T) {
	_, err := Hash(strings.Repeat("p", MaxLength+8))
	assert.ErrorIs(t, err, ErrTooLong)

	digest, err := Hash(strings.Repeat("p", MaxLength))
	require.NoError(t, err)
	assert.True(t, Verify(strings.Repeat("p", MaxLength), digest))
}
