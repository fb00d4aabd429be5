// internal/credential/credential_test.go
package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDigestAndVerify(t *testing.T) {
	digest, err := Digest("1234", bcrypt.MinCost)
	require.NoError(t, err)

	// The plaintext must not be recoverable from (or equal to) the digest.
	assert.NotContains(t, string(digest), "1234")

	assert.True(t, Verify(digest, "1234"))
	assert.False(t, Verify(digest, "4321"))
	assert.False(t, Verify(digest, ""))
}

func TestDigestsDiffer(t *testing.T) {
	a, err := Digest("1234", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := Digest("1234", bcrypt.MinCost)
	require.NoError(t, err)

	// bcrypt salts, so identical PINs yield distinct digests.
	assert.NotEqual(t, a, b)
}

func TestSentinelMatchesNoPIN(t *testing.T) {
	s := Sentinel()
	require.NotEmpty(t, s)

	for _, pin := range []string{"", "1234", "0000", "sentinel"} {
		assert.False(t, Verify(s, pin))
	}

	// Stable across calls.
	assert.Equal(t, s, Sentinel())
}
