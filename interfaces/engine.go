package interfaces

import (
	"errors"
	"time"

	"golang.org/x/net/proxy"
)

// Sentinel errors an engine may return. Wrapped errors are matched with errors.Is.
var (
	// ErrPortAlloc reports that no port in the configured range could be bound.
	ErrPortAlloc = errors.New("engine: port allocation failed")

	// ErrMalloc reports that the engine could not allocate resources.
	ErrMalloc = errors.New("engine: allocation failed")

	// ErrQueueFull reports that an outgoing packet could not be queued.
	ErrQueueFull = errors.New("engine: send queue full")

	// ErrNotBound reports that the requested socket is not bound.
	ErrNotBound = errors.New("engine: socket not bound")

	// ErrNotConnected reports that the peer has no live connection.
	ErrNotConnected = errors.New("engine: peer not connected")
)

// EventTag identifies the native callback a RawEvent was produced by.
type EventTag uint8

const (
	TagSelfConnectionStatus EventTag = iota + 1
	TagFriendConnectionStatus
	TagFriendRequest
	TagFriendMessage
	TagFriendName
	TagFriendStatus
	TagFriendStatusMessage
	TagFriendTyping
	TagFriendReadReceipt
	TagFileRecvControl
	TagFileRecv
	TagFileRecvChunk
	TagFileChunkRequest
	TagFriendLossyPacket
	TagFriendLosslessPacket
)

// Raw numeric values used on the engine boundary.
const (
	RawConnectionNone uint32 = 0
	RawConnectionTCP  uint32 = 1
	RawConnectionUDP  uint32 = 2

	RawUserStatusNone uint32 = 0
	RawUserStatusAway uint32 = 1
	RawUserStatusBusy uint32 = 2

	RawFileControlResume uint32 = 0
	RawFileControlPause  uint32 = 1
	RawFileControlCancel uint32 = 2

	RawFileKindData   uint32 = 0
	RawFileKindAvatar uint32 = 1

	RawMessageNormal uint32 = 0
	RawMessageAction uint32 = 1
)

// RawEvent is one unit of activity reported by the engine.
//
// Field use depends on Tag:
//
//	SelfConnectionStatus    Value=connection
//	FriendConnectionStatus  FriendKey, Value=connection
//	FriendRequest           FriendKey=requester, TimeDelta, Data=message
//	FriendMessage           FriendKey, Value=message type, TimeDelta, Data=message
//	FriendName              FriendKey, Data=name
//	FriendStatus            FriendKey, Value=user status
//	FriendStatusMessage     FriendKey, Data=status message
//	FriendTyping            FriendKey, Flag=typing
//	FriendReadReceipt       FriendKey, Value=message id
//	FileRecvControl         FriendKey, FileNumber, Value=control
//	FileRecv                FriendKey, FileNumber, Value=kind, FileSize, FileID, Data=filename
//	FileRecvChunk           FriendKey, FileNumber, Position, Data=chunk
//	FileChunkRequest        FriendKey, FileNumber, Position, Value=length
//	FriendLossyPacket       FriendKey, Data=packet
//	FriendLosslessPacket    FriendKey, Data=packet
type RawEvent struct {
	Tag        EventTag
	FriendKey  [32]byte
	FileNumber uint32
	Value      uint32
	Flag       bool
	Position   uint64
	FileSize   uint64
	FileID     [32]byte
	TimeDelta  uint32
	Data       []byte
}

// SelfInfo is the profile the engine advertises to friends.
type SelfInfo struct {
	Name          []byte
	StatusMessage []byte
	Status        uint32
	Nospam        [4]byte
}

// EngineConfig carries everything an engine needs at creation.
type EngineConfig struct {
	PublicKey      [32]byte
	SecretKey      [32]byte
	IPv6Enabled    bool
	UDPEnabled     bool
	LocalDiscovery bool
	StartPort      uint16
	EndPort        uint16
	TCPPort        uint16

	// ProxyDialer is nil when no proxy is configured.
	ProxyDialer proxy.Dialer
	ProxyType   string
	ProxyAddr   string

	// State is the opaque engine state restored from savedata, or nil.
	State []byte
}

// Engine is the external network and crypto engine driven by a session.
//
// All methods are called from the session's owning goroutine. Poll must
// perform bounded, non-blocking work and never suspend indefinitely.
type Engine interface {
	Poll() ([]RawEvent, error)
	IterationInterval() time.Duration

	Bootstrap(host string, port uint16, publicKey [32]byte) error
	AddTCPRelay(host string, port uint16, publicKey [32]byte) error

	AddFriend(publicKey [32]byte) error
	SendFriendRequest(publicKey [32]byte, nospam [4]byte, message []byte) error
	RemoveFriend(publicKey [32]byte) error

	SendMessage(publicKey [32]byte, messageType uint32, message []byte) (uint32, error)
	SetTyping(publicKey [32]byte, typing bool) error
	SendCustomPacket(publicKey [32]byte, lossy bool, data []byte) error

	SendFileOffer(publicKey [32]byte, fileNumber, kind uint32, fileSize uint64, fileID [32]byte, filename []byte) error
	SendFileControl(publicKey [32]byte, fileNumber, control uint32) error
	SendFileSeek(publicKey [32]byte, fileNumber uint32, position uint64) error
	SendFileChunk(publicKey [32]byte, fileNumber uint32, position uint64, data []byte) error

	SetSelfInfo(info SelfInfo) error
	UDPPort() (uint16, error)
	TCPPort() (uint16, error)
	DHTID() [32]byte

	// Savedata returns the opaque engine state to embed in the session blob.
	Savedata() []byte
	Close() error
}

// EngineFactory creates an engine for a new session.
type EngineFactory func(cfg EngineConfig) (Engine, error)
