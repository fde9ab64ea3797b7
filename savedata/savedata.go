package savedata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/friend"
	"github.com/opd-ai/toxsession/limits"
)

// Version is the plaintext format version written by Encode.
const Version uint16 = 1

// Blob framing.
var (
	plainMagic     = []byte{0x00, 0x00, 0x00, 0x00, 0x15, 0xED, 0x1B, 0x1F}
	encryptedMagic = []byte("toxEsave")
)

const headerSize = 8 + 2 + 2

type sectionType uint16

const (
	sectionKeys     sectionType = 1
	sectionSelfInfo sectionType = 2
	sectionFriends  sectionType = 3
	sectionEngine   sectionType = 4
	sectionEnd      sectionType = 0xFFFF
)

var (
	// ErrEncrypted is returned when an encrypted blob is decoded without a
	// passphrase or with the wrong one.
	ErrEncrypted = errors.New("savedata: encrypted, passphrase missing or wrong")

	// ErrBadFormat is returned for truncated, corrupted or unknown blobs.
	ErrBadFormat = errors.New("savedata: bad format")

	// ErrFieldTooLong is returned by Encode for a name, status message or
	// request message that does not fit its 16-bit length prefix.
	ErrFieldTooLong = errors.New("savedata: field too long")
)

// State is everything a session persists.
type State struct {
	PublicKey [32]byte
	SecretKey [32]byte
	Nospam    crypto.Nospam

	Name          string
	StatusMessage string
	Status        friend.Status

	// Friends keep their numbers across a save and load.
	Friends []friend.Friend

	// Engine is opaque state produced by the engine.
	Engine []byte
}

// IsEncrypted reports whether blob carries the encrypted header.
func IsEncrypted(blob []byte) bool {
	return bytes.HasPrefix(blob, encryptedMagic)
}

// Encode serializes s. A non-empty passphrase encrypts the result.
func Encode(s *State, passphrase []byte) ([]byte, error) {
	if s == nil {
		return nil, errors.New("savedata: nil state")
	}

	var w writer
	w.bytes(plainMagic)
	w.u16(Version)
	w.u16(0)

	var keys writer
	keys.bytes(s.PublicKey[:])
	keys.bytes(s.SecretKey[:])
	w.section(sectionKeys, keys.buf)
	crypto.ZeroBytes(keys.buf)

	var self writer
	self.bytes(s.Nospam[:])
	self.u8(uint8(s.Status))
	self.str(s.Name)
	self.str(s.StatusMessage)
	if self.err != nil {
		return nil, fmt.Errorf("self info: %w", self.err)
	}
	w.section(sectionSelfInfo, self.buf)

	var friends writer
	friends.u32(uint32(len(s.Friends)))
	for i := range s.Friends {
		encodeFriend(&friends, &s.Friends[i])
	}
	if friends.err != nil {
		return nil, fmt.Errorf("friends: %w", friends.err)
	}
	w.section(sectionFriends, friends.buf)

	if len(s.Engine) > 0 {
		w.section(sectionEngine, s.Engine)
	}
	w.section(sectionEnd, nil)

	if len(passphrase) == 0 {
		return w.buf, nil
	}

	sealed, err := crypto.SealWithPassphrase(w.buf, passphrase)
	crypto.ZeroBytes(w.buf)
	if err != nil {
		return nil, fmt.Errorf("savedata: encrypt: %w", err)
	}
	return append(append([]byte(nil), encryptedMagic...), sealed...), nil
}

func encodeFriend(w *writer, f *friend.Friend) {
	w.u32(f.Number)
	w.bytes(f.PublicKey[:])
	w.bytes(f.Nospam[:])
	w.u8(uint8(f.Status))
	var flags uint8
	if f.RequestPending {
		flags |= 1
	}
	w.u8(flags)
	w.str(f.Name)
	w.str(f.StatusMessage)
	w.blob(f.RequestMessage)
	var seen int64
	if !f.LastSeen.IsZero() {
		seen = f.LastSeen.Unix()
	}
	w.u64(uint64(seen))
}

// Decode parses a blob produced by Encode. The passphrase is only used for
// encrypted blobs.
func Decode(blob, passphrase []byte) (*State, error) {
	if len(blob) > limits.MaxSavedataSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit", ErrBadFormat, len(blob))
	}

	if IsEncrypted(blob) {
		if len(passphrase) == 0 {
			return nil, ErrEncrypted
		}
		plain, err := crypto.OpenWithPassphrase(blob[len(encryptedMagic):], passphrase)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Decode",
				"size":     len(blob),
			}).Warn("Failed to decrypt savedata")
			return nil, fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		defer crypto.ZeroBytes(plain)
		blob = plain
	}

	s, err := decodePlain(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return s, nil
}

func decodePlain(blob []byte) (*State, error) {
	if len(blob) < headerSize || !bytes.Equal(blob[:len(plainMagic)], plainMagic) {
		return nil, errors.New("missing header")
	}
	r := reader{buf: blob[len(plainMagic):]}
	version := r.u16()
	r.u16() // flags
	if version != Version {
		return nil, fmt.Errorf("unsupported version %d", version)
	}

	s := &State{}
	seen := make(map[sectionType]bool)
	for {
		typ := sectionType(r.u16())
		length := r.u32()
		payload := r.take(int(length))
		if r.err != nil {
			return nil, r.err
		}
		if seen[typ] {
			return nil, fmt.Errorf("duplicate section %d", typ)
		}
		seen[typ] = true

		var err error
		switch typ {
		case sectionKeys:
			err = decodeKeys(payload, s)
		case sectionSelfInfo:
			err = decodeSelfInfo(payload, s)
		case sectionFriends:
			s.Friends, err = decodeFriends(payload)
		case sectionEngine:
			s.Engine = append([]byte(nil), payload...)
		case sectionEnd:
			if !seen[sectionKeys] {
				return nil, errors.New("missing keys section")
			}
			if len(r.buf) != 0 {
				return nil, fmt.Errorf("%d trailing bytes", len(r.buf))
			}
			return s, nil
		default:
			logrus.WithFields(logrus.Fields{
				"function": "Decode",
				"section":  typ,
				"length":   length,
			}).Debug("Skipping unknown savedata section")
		}
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", typ, err)
		}
	}
}

func decodeKeys(payload []byte, s *State) error {
	r := reader{buf: payload}
	copy(s.PublicKey[:], r.take(32))
	copy(s.SecretKey[:], r.take(32))
	return r.done()
}

func decodeSelfInfo(payload []byte, s *State) error {
	r := reader{buf: payload}
	copy(s.Nospam[:], r.take(crypto.NospamSize))
	status := r.u8()
	s.Name = r.str()
	s.StatusMessage = r.str()
	if err := r.done(); err != nil {
		return err
	}
	st, ok := friend.StatusFromRaw(uint32(status))
	if !ok {
		return fmt.Errorf("unknown status %d", status)
	}
	s.Status = st
	if len(s.Name) > limits.MaxNameLength || len(s.StatusMessage) > limits.MaxStatusMessageLength {
		return errors.New("self info exceeds limits")
	}
	return nil
}

func decodeFriends(payload []byte) ([]friend.Friend, error) {
	r := reader{buf: payload}
	count := r.u32()
	if r.err != nil {
		return nil, r.err
	}
	if count > limits.MaxFriends {
		return nil, fmt.Errorf("%d friends exceeds limit", count)
	}

	friends := make([]friend.Friend, 0, count)
	for i := uint32(0); i < count; i++ {
		var f friend.Friend
		f.Number = r.u32()
		copy(f.PublicKey[:], r.take(32))
		copy(f.Nospam[:], r.take(crypto.NospamSize))
		status := r.u8()
		flags := r.u8()
		f.Name = r.str()
		f.StatusMessage = r.str()
		f.RequestMessage = r.blob()
		seen := int64(r.u64())
		if r.err != nil {
			return nil, r.err
		}

		st, ok := friend.StatusFromRaw(uint32(status))
		if !ok {
			return nil, fmt.Errorf("friend %d: unknown status %d", f.Number, status)
		}
		f.Status = st
		f.RequestPending = flags&1 != 0
		if seen != 0 {
			f.LastSeen = time.Unix(seen, 0)
		}
		friends = append(friends, f)
	}
	return friends, r.done()
}

// writer appends big-endian fields. A value that cannot be framed sets err
// and is left out.
type writer struct {
	buf []byte
	err error
}

func (w *writer) u8(v uint8)     { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16)   { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32)   { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64)   { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }
func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *writer) str(s string)   { w.blob([]byte(s)) }

// blob writes b behind a u16 length prefix.
func (w *writer) blob(b []byte) {
	if len(b) > math.MaxUint16 {
		if w.err == nil {
			w.err = fmt.Errorf("%w: %d bytes", ErrFieldTooLong, len(b))
		}
		return
	}
	w.u16(uint16(len(b)))
	w.bytes(b)
}

func (w *writer) section(t sectionType, payload []byte) {
	w.u16(uint16(t))
	w.u32(uint32(len(payload)))
	w.bytes(payload)
}

// reader consumes big-endian fields. The first short read sets err and every
// later read returns zero values.
type reader struct {
	buf []byte
	err error
}

var errTruncated = errors.New("truncated")

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf) {
		r.err = errTruncated
		r.buf = nil
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (r *reader) blob() []byte {
	n := r.u16()
	b := r.take(int(n))
	if b == nil || n == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

func (r *reader) str() string {
	return string(r.blob())
}

// done reports a read error or unconsumed bytes.
func (r *reader) done() error {
	if r.err != nil {
		return r.err
	}
	if len(r.buf) != 0 {
		return fmt.Errorf("%d unexpected bytes", len(r.buf))
	}
	return nil
}
