package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastHasher keeps the tests quick; the encoding does not depend on the
// cost parameters.
func fastHasher() PasswordHasher {
	return &argon2Hasher{time: 1, memory: 1024, threads: 1, keyLen: 16, saltLen: 8}
}

func TestHash_Format(t *testing.T) {
	encoded, err := fastHasher().Hash("secret")
	require.NoError(t, err)

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, "m=1024,t=1,p=1", parts[3])
}

func TestHash_SaltIsRandom(t *testing.T) {
	h := fastHasher()
	a, err := h.Hash("secret")
	require.NoError(t, err)
	b, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify(t *testing.T) {
	h := fastHasher()
	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	ok, err := h.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_UsesStoredParameters(t *testing.T) {
	encoded, err := fastHasher().Hash("pw")
	require.NoError(t, err)

	ok, err := NewPasswordHasher().Verify("pw", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{name: "empty", encoded: "", wantErr: ErrMalformedHash},
		{name: "other algorithm", encoded: "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5", wantErr: ErrMalformedHash},
		{name: "bad params", encoded: "$argon2id$v=19$m=x$c2FsdA$a2V5", wantErr: ErrMalformedHash},
		{name: "bad salt", encoded: "$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5", wantErr: ErrMalformedHash},
		{name: "old version", encoded: "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5", wantErr: ErrIncompatibleVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fastHasher().Verify("pw", tt.encoded)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
