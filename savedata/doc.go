// Package savedata encodes the persistent state of a session.
//
// A plaintext blob starts with an 8-byte magic, a format version and a flags
// word, followed by sections:
//
//	u16 type | u32 length | payload
//
// Keys, self info, friends and the engine's opaque state each get one
// section and an End section terminates the blob. Unknown section types are
// skipped, so newer writers can add sections without breaking older
// readers. All integers are big-endian.
//
// An encrypted blob is the "toxEsave" magic followed by the plaintext blob
// sealed with crypto.SealWithPassphrase (PBKDF2-SHA256 key, secretbox).
//
//	blob, err := savedata.Encode(state, passphrase)
//	...
//	state, err := savedata.Decode(blob, passphrase)
//	if errors.Is(err, savedata.ErrEncrypted) {
//	    // ask for the passphrase again
//	}
package savedata
