package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// NospamSize is the size of the nospam value in bytes.
	NospamSize = 4

	// ChecksumSize is the size of the address checksum in bytes.
	ChecksumSize = 2

	// AddressSize is the size of an encoded address:
	// public key, nospam and checksum.
	AddressSize = KeySize + NospamSize + ChecksumSize
)

var (
	// ErrAddressLength is returned when an address is not exactly AddressSize bytes.
	ErrAddressLength = errors.New("invalid address length")

	// ErrBadChecksum is returned when the embedded checksum does not match the
	// one derived from the public key and nospam.
	ErrBadChecksum = errors.New("invalid address checksum")
)

// Nospam is the caller-rotatable part of an address.
type Nospam [NospamSize]byte

// Uint32 returns the nospam as a big-endian integer.
func (n Nospam) Uint32() uint32 {
	return binary.BigEndian.Uint32(n[:])
}

// NospamFromUint32 builds a nospam value from its big-endian integer form.
func NospamFromUint32(v uint32) Nospam {
	var n Nospam
	binary.BigEndian.PutUint32(n[:], v)
	return n
}

// GenerateNospam returns a random nospam value.
func GenerateNospam() (Nospam, error) {
	var n Nospam
	if _, err := rand.Read(n[:]); err != nil {
		return n, fmt.Errorf("generate nospam: %w", err)
	}
	return n, nil
}

// Address identifies a session to its would-be friends.
type Address struct {
	PublicKey [32]byte
	Nospam    Nospam
	Checksum  [ChecksumSize]byte
}

// NewAddress creates an Address from a public key and nospam value.
func NewAddress(publicKey [32]byte, nospam Nospam) Address {
	addr := Address{
		PublicKey: publicKey,
		Nospam:    nospam,
	}
	addr.Checksum = addr.computeChecksum()
	return addr
}

// ParseAddress decodes a 38-byte address and verifies its checksum.
func ParseAddress(data []byte) (Address, error) {
	var addr Address
	if len(data) != AddressSize {
		return addr, fmt.Errorf("%w: got %d bytes, want %d", ErrAddressLength, len(data), AddressSize)
	}

	copy(addr.PublicKey[:], data[:KeySize])
	copy(addr.Nospam[:], data[KeySize:KeySize+NospamSize])
	copy(addr.Checksum[:], data[KeySize+NospamSize:])

	if addr.Checksum != addr.computeChecksum() {
		return addr, ErrBadChecksum
	}
	return addr, nil
}

// ParseAddressString decodes the 76-character hexadecimal form of an address.
func ParseAddressString(s string) (Address, error) {
	if len(s) != AddressSize*2 {
		return Address{}, fmt.Errorf("%w: got %d hex characters, want %d", ErrAddressLength, len(s), AddressSize*2)
	}

	data, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("decode address: %w", err)
	}
	return ParseAddress(data)
}

// Bytes returns the 38-byte wire form of the address.
func (a Address) Bytes() []byte {
	data := make([]byte, AddressSize)
	copy(data[:KeySize], a.PublicKey[:])
	copy(data[KeySize:KeySize+NospamSize], a.Nospam[:])
	copy(data[KeySize+NospamSize:], a.Checksum[:])
	return data
}

// String returns the upper-case hexadecimal representation of the address.
func (a Address) String() string {
	return strings.ToUpper(hex.EncodeToString(a.Bytes()))
}

// computeChecksum XOR-folds the big-endian 16-bit words of key and nospam.
func (a Address) computeChecksum() [ChecksumSize]byte {
	var sum uint16
	prefix := make([]byte, 0, KeySize+NospamSize)
	prefix = append(prefix, a.PublicKey[:]...)
	prefix = append(prefix, a.Nospam[:]...)
	for i := 0; i < len(prefix); i += 2 {
		sum ^= binary.BigEndian.Uint16(prefix[i : i+2])
	}

	var out [ChecksumSize]byte
	binary.BigEndian.PutUint16(out[:], sum)
	return out
}
