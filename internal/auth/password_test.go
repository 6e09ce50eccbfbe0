package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheapParams keeps argon2 fast in tests.
var cheapParams = HashParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(cheapParams)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_Format(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, "m=8192,t=1,p=1", parts[3])
	assert.NotContains(t, hash, "correct horse")
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)

	ok, err := h.Verify("s3cret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("s3cret-pasS", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_VerifiesOlderParams(t *testing.T) {
	t.Parallel()

	old, err := NewPasswordHasher(HashParams{Time: 2, Memory: 4 * 1024, Threads: 2, KeyLen: 16, SaltLen: 8})
	require.NoError(t, err)
	hash, err := old.Hash("rotate-me")
	require.NoError(t, err)

	ok, err := newTestHasher(t).Verify("rotate-me", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_Malformed(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{"empty", "", ErrMalformedHash},
		{"wrong algorithm", "$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA", ErrMalformedHash},
		{"bad version", "$argon2id$v=16$m=8192,t=1,p=1$c2FsdA$aGFzaA", ErrUnsupportedVersion},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA", ErrMalformedHash},
		{"bad salt", "$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA", ErrMalformedHash},
		{"empty key", "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$", ErrMalformedHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("anything", tt.encoded)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
