package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the number of iterations for passphrase key derivation.
	PBKDF2Iterations = 100000

	// SaltSize is the size of the PBKDF2 salt.
	SaltSize = 32

	// NonceSize is the size of a secretbox nonce.
	NonceSize = 24

	// SealOverhead is the number of bytes Seal adds to the plaintext:
	// salt, nonce and the Poly1305 tag.
	SealOverhead = SaltSize + NonceSize + secretbox.Overhead
)

var (
	// ErrEmptyPassphrase is returned when sealing or opening with no passphrase.
	ErrEmptyPassphrase = errors.New("passphrase cannot be empty")

	// ErrDecryptionFailed is returned when authentication of sealed data fails,
	// usually because the passphrase is wrong.
	ErrDecryptionFailed = errors.New("decryption failed: message authentication failed")
)

// deriveKey stretches a passphrase into a secretbox key.
func deriveKey(passphrase, salt []byte) [32]byte {
	var key [32]byte
	derived := pbkdf2.Key(passphrase, salt, PBKDF2Iterations, len(key), sha256.New)
	copy(key[:], derived)
	ZeroBytes(derived)
	return key
}

// SealWithPassphrase encrypts plaintext under a key derived from passphrase.
// Output format: salt(32) ‖ nonce(24) ‖ secretbox(plaintext).
func SealWithPassphrase(plaintext, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}

	out := make([]byte, SaltSize+NonceSize, SealOverhead+len(plaintext))
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("generate salt and nonce: %w", err)
	}

	var nonce [NonceSize]byte
	copy(nonce[:], out[SaltSize:])
	key := deriveKey(passphrase, out[:SaltSize])
	defer ZeroBytes(key[:])

	return secretbox.Seal(out, plaintext, &nonce, &key), nil
}

// OpenWithPassphrase reverses SealWithPassphrase.
func OpenWithPassphrase(sealed, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if len(sealed) < SealOverhead {
		return nil, fmt.Errorf("%w: sealed data too short (%d bytes)", ErrDecryptionFailed, len(sealed))
	}

	var nonce [NonceSize]byte
	copy(nonce[:], sealed[SaltSize:SaltSize+NonceSize])
	key := deriveKey(passphrase, sealed[:SaltSize])
	defer ZeroBytes(key[:])

	plaintext, ok := secretbox.Open(nil, sealed[SaltSize+NonceSize:], &nonce, &key)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
