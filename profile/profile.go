package profile

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Version is the profile format written by Marshal.
const Version = 1

// MaxLogEntries caps the chat log. Append drops the oldest tenth when the
// cap is reached.
const MaxLogEntries = 10000

// ErrUnsupportedVersion is returned by Unmarshal for profiles written by a
// newer or unknown format.
var ErrUnsupportedVersion = errors.New("profile: unsupported version")

// Contact is the application's view of a friend.
type Contact struct {
	FriendNumber  uint32    `json:"friend_number"`
	PublicKey     Key       `json:"public_key"`
	Name          string    `json:"name,omitempty"`
	StatusMessage string    `json:"status_message,omitempty"`
	LastSeen      time.Time `json:"last_seen,omitempty"`
}

// Entry is one chat log line.
type Entry struct {
	Time         time.Time `json:"time"`
	FriendNumber uint32    `json:"friend_number"`
	Outgoing     bool      `json:"outgoing,omitempty"`
	Action       bool      `json:"action,omitempty"`
	Text         string    `json:"text"`
}

// Profile is the application data stored next to a session.
type Profile struct {
	Version int `json:"version"`

	// Session is the blob from Session.Save, kept as is.
	Session []byte `json:"session,omitempty"`

	Friends []Contact `json:"friends"`
	Log     []Entry   `json:"log"`
}

// Key is a 32-byte public key encoded as upper-case hex in JSON.
type Key [32]byte

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(k)))
	hex.Encode(out, k[:])
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 'a' + 'A'
		}
	}
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != len(k) {
		return fmt.Errorf("profile: key is %d hex characters, want %d", len(text), hex.EncodedLen(len(k)))
	}
	_, err := hex.Decode(k[:], text)
	return err
}

// New returns an empty profile of the current version.
func New() *Profile {
	return &Profile{Version: Version}
}

// Contact returns the contact for a friend number.
func (p *Profile) Contact(friendNumber uint32) (Contact, bool) {
	for _, c := range p.Friends {
		if c.FriendNumber == friendNumber {
			return c, true
		}
	}
	return Contact{}, false
}

// PutContact inserts or replaces the contact with the same friend number.
func (p *Profile) PutContact(c Contact) {
	for i := range p.Friends {
		if p.Friends[i].FriendNumber == c.FriendNumber {
			p.Friends[i] = c
			return
		}
	}
	p.Friends = append(p.Friends, c)
}

// RemoveContact drops a contact and its log entries.
func (p *Profile) RemoveContact(friendNumber uint32) {
	friends := p.Friends[:0]
	for _, c := range p.Friends {
		if c.FriendNumber != friendNumber {
			friends = append(friends, c)
		}
	}
	p.Friends = friends

	log := p.Log[:0]
	for _, e := range p.Log {
		if e.FriendNumber != friendNumber {
			log = append(log, e)
		}
	}
	p.Log = log
}

// Append adds a log entry, trimming the oldest tenth of the log when it is
// full.
func (p *Profile) Append(e Entry) {
	if len(p.Log) >= MaxLogEntries {
		drop := MaxLogEntries / 10
		p.Log = append(p.Log[:0], p.Log[drop:]...)
		logrus.WithFields(logrus.Fields{
			"function": "Append",
			"dropped":  drop,
		}).Debug("Trimmed chat log")
	}
	p.Log = append(p.Log, e)
}

// History returns the log entries of one friend in order.
func (p *Profile) History(friendNumber uint32) []Entry {
	var out []Entry
	for _, e := range p.Log {
		if e.FriendNumber == friendNumber {
			out = append(out, e)
		}
	}
	return out
}

// Marshal encodes the profile. The version field is always set to Version.
func Marshal(p *Profile) ([]byte, error) {
	if p == nil {
		return nil, errors.New("profile: nil profile")
	}
	out := *p
	out.Version = Version
	if out.Friends == nil {
		out.Friends = []Contact{}
	}
	if out.Log == nil {
		out.Log = []Entry{}
	}
	return json.MarshalIndent(&out, "", "  ")
}

// Unmarshal decodes a profile written by Marshal.
func Unmarshal(data []byte) (*Profile, error) {
	var header struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("profile: decode: %w", err)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}

	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("profile: decode: %w", err)
	}
	return p, nil
}

// WriteFile stores the profile at path. The file is replaced atomically
// through a temporary file in the same directory.
func WriteFile(path string, p *Profile) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("profile: create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("profile: write temporary file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("profile: chmod temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("profile: close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("profile: rename: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "WriteFile",
		"path":     path,
		"friends":  len(p.Friends),
		"entries":  len(p.Log),
	}).Debug("Profile written")
	return nil
}

// ReadFile loads a profile written by WriteFile.
func ReadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read: %w", err)
	}
	return Unmarshal(data)
}
