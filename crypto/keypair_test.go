package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSecretKeyDerivesPublicKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	restored, err := FromSecretKey(kp.Private)
	require.NoError(t, err)

	assert.Equal(t, kp.Public, restored.Public, "derived public key must match the generated one")
	assert.Equal(t, kp.Private, restored.Private)
}

func TestWipeKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, WipeKeyPair(kp))
	assert.True(t, isZeroKey(kp.Private), "private key was not wiped")
	assert.False(t, isZeroKey(kp.Public), "public key must survive a wipe")

	assert.ErrorIs(t, WipeKeyPair(nil), ErrNilKeyPair)
}

func TestZeroBytes(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"nil slice", nil},
		{"empty slice", []byte{}},
		{"single byte", []byte{0xFF}},
		{"large buffer", bytes.Repeat([]byte{0xAB}, 1024)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ZeroBytes(tt.input)
			assert.Equal(t, make([]byte, len(tt.input)), append([]byte{}, tt.input...))
		})
	}
}

func TestFromSecretKeyRejectsZeroKey(t *testing.T) {
	_, err := FromSecretKey([32]byte{})
	assert.True(t, errors.Is(err, ErrZeroKey))
}

func TestGenerateKeyPairIsRandom(t *testing.T) {
	a, err := GenerateKeyPair()
	require.NoError(t, err)
	b, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.NotEqual(t, a.Public, b.Public)
	assert.False(t, bytes.Equal(a.Private[:], make([]byte, 32)))
}
