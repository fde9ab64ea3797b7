// Package crypto implements the identity primitives of a session: the
// asymmetric key pair, the nospam value and the 38-byte address that friends
// use to send requests.
//
// # Key Pairs
//
// Key pairs are NaCl crypto_box (Curve25519) keys generated through
// golang.org/x/crypto:
//
//	keys, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A key pair restored from a persisted secret key derives its public half
// with curve25519.X25519:
//
//	keys, err := crypto.FromSecretKey(secret)
//
// # Addresses
//
// An Address is publicKey(32) ‖ nospam(4) ‖ checksum(2). The checksum is the
// XOR-fold of the 18 big-endian 16-bit words that precede it and is verified
// on every parse:
//
//	addr := crypto.NewAddress(keys.Public, nospam)
//	fmt.Println(addr.String()) // 76 upper-case hex characters
//
//	parsed, err := crypto.ParseAddress(raw)
//	if errors.Is(err, crypto.ErrBadChecksum) {
//	    // reject the address, it was mistyped or tampered with
//	}
//
// # Nospam
//
// The nospam value lets a user invalidate addresses that leaked without
// changing keys. GenerateNospam draws it from crypto/rand.
//
// # Secure Memory
//
// ZeroBytes and WipeKeyPair zero secret material once it is no longer needed.
//
// # Passphrases
//
// SealWithPassphrase encrypts a blob with NaCl secretbox under a key stretched
// from the passphrase with PBKDF2-SHA256; OpenWithPassphrase reverses it and
// returns ErrDecryptionFailed for a wrong passphrase or tampered data.
package crypto
