package friend

import (
	"time"

	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/interfaces"
)

// Status represents the user status a friend advertises.
type Status uint8

const (
	StatusNone Status = iota
	StatusAway
	StatusBusy
)

// String returns a human readable form of the status.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "None"
	case StatusAway:
		return "Away"
	case StatusBusy:
		return "Busy"
	default:
		return "Status(?)"
	}
}

// StatusFromRaw converts an engine status value. ok is false for values this
// layer does not know.
func StatusFromRaw(v uint32) (Status, bool) {
	switch v {
	case interfaces.RawUserStatusNone:
		return StatusNone, true
	case interfaces.RawUserStatusAway:
		return StatusAway, true
	case interfaces.RawUserStatusBusy:
		return StatusBusy, true
	}
	return 0, false
}

// Raw returns the engine representation of the status.
func (s Status) Raw() uint32 {
	return uint32(s)
}

// ConnectionStatus represents how a peer is currently reachable.
type ConnectionStatus uint8

const (
	ConnectionNone ConnectionStatus = iota
	ConnectionTCP
	ConnectionUDP
)

// String returns a human readable form of the connection status.
func (c ConnectionStatus) String() string {
	switch c {
	case ConnectionNone:
		return "None"
	case ConnectionTCP:
		return "TCP"
	case ConnectionUDP:
		return "UDP"
	default:
		return "ConnectionStatus(?)"
	}
}

// ConnectionFromRaw converts an engine connection value.
func ConnectionFromRaw(v uint32) (ConnectionStatus, bool) {
	switch v {
	case interfaces.RawConnectionNone:
		return ConnectionNone, true
	case interfaces.RawConnectionTCP:
		return ConnectionTCP, true
	case interfaces.RawConnectionUDP:
		return ConnectionUDP, true
	}
	return 0, false
}

// Friend is the registry's record of a remote identity.
type Friend struct {
	Number        uint32
	PublicKey     [32]byte
	Nospam        crypto.Nospam
	Name          string
	StatusMessage string
	Status        Status
	Connection    ConnectionStatus
	Typing        bool

	// RequestPending is set while our friend request has not been answered
	// by the peer coming online.
	RequestPending bool
	RequestMessage []byte

	LastSeen time.Time
}

// IsOnline checks if the friend currently has a live connection.
func (f *Friend) IsOnline() bool {
	return f.Connection != ConnectionNone
}

// clone returns a copy that shares no mutable memory with f.
func (f *Friend) clone() Friend {
	c := *f
	if f.RequestMessage != nil {
		c.RequestMessage = append([]byte(nil), f.RequestMessage...)
	}
	return c
}
