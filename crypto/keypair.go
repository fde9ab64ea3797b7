package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// KeySize is the size of public and secret keys in bytes.
const KeySize = 32

var (
	// ErrZeroKey is returned when a secret key consists only of zero bytes.
	ErrZeroKey = errors.New("invalid secret key: all zeros")

	// ErrNilKeyPair is returned by WipeKeyPair for a nil key pair.
	ErrNilKeyPair = errors.New("nil key pair")
)

// KeyPair represents a NaCl crypto_box key pair.
type KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateKeyPair creates a new random NaCl key pair.
func GenerateKeyPair() (*KeyPair, error) {
	publicKey, privateKey, err := box.GenerateKey(rand.Reader)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "GenerateKeyPair",
			"error":    err.Error(),
		}).Error("Key generation failed")
		return nil, fmt.Errorf("generate key pair: %w", err)
	}

	keyPair := &KeyPair{
		Public:  *publicKey,
		Private: *privateKey,
	}
	ZeroBytes(privateKey[:])

	return keyPair, nil
}

// FromSecretKey rebuilds a key pair from an existing secret key, deriving the
// public key with X25519 against the curve base point.
func FromSecretKey(secretKey [32]byte) (*KeyPair, error) {
	if isZeroKey(secretKey) {
		return nil, ErrZeroKey
	}

	public, err := curve25519.X25519(secretKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	kp := &KeyPair{Private: secretKey}
	copy(kp.Public[:], public)
	return kp, nil
}

// WipeKeyPair zeroes the secret half of kp. The public key stays usable.
func WipeKeyPair(kp *KeyPair) error {
	if kp == nil {
		return ErrNilKeyPair
	}
	ZeroBytes(kp.Private[:])
	return nil
}

// ZeroBytes overwrites secret material in place.
func ZeroBytes(data []byte) {
	clear(data)
	runtime.KeepAlive(data)
}

// isZeroKey reports in constant time whether key is all zeros.
func isZeroKey(key [32]byte) bool {
	var zero [32]byte
	return subtle.ConstantTimeCompare(key[:], zero[:]) == 1
}
