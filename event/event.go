package event

import (
	"github.com/opd-ai/toxsession/file"
	"github.com/opd-ai/toxsession/friend"
)

// Kind identifies the type of an Event.
type Kind uint8

const (
	KindSelfConnectionStatus Kind = iota + 1
	KindFriendConnectionStatus
	KindFriendRequest
	KindFriendMessage
	KindFriendName
	KindFriendStatus
	KindFriendStatusMessage
	KindFriendTyping
	KindFriendReadReceipt
	KindFileControl
	KindFileReceive
	KindFileReceiveChunk
	KindFileChunkRequest
	KindFriendLossyPacket
	KindFriendLosslessPacket
)

var kindNames = map[Kind]string{
	KindSelfConnectionStatus:   "SelfConnectionStatus",
	KindFriendConnectionStatus: "FriendConnectionStatus",
	KindFriendRequest:          "FriendRequest",
	KindFriendMessage:          "FriendMessage",
	KindFriendName:             "FriendName",
	KindFriendStatus:           "FriendStatus",
	KindFriendStatusMessage:    "FriendStatusMessage",
	KindFriendTyping:           "FriendTyping",
	KindFriendReadReceipt:      "FriendReadReceipt",
	KindFileControl:            "FileControl",
	KindFileReceive:            "FileReceive",
	KindFileReceiveChunk:       "FileReceiveChunk",
	KindFileChunkRequest:       "FileChunkRequest",
	KindFriendLossyPacket:      "FriendLossyPacket",
	KindFriendLosslessPacket:   "FriendLosslessPacket",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(?)"
}

// Event is one application-visible occurrence. The set of implementations is
// closed; every Event is one of the types in this package.
type Event interface {
	Kind() Kind

	deliver(l Listener)
	clone() Event
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// SelfConnectionStatus reports a change in this session's network reachability.
type SelfConnectionStatus struct {
	Connection friend.ConnectionStatus
}

// FriendConnectionStatus reports a friend going online, offline or switching
// transport.
type FriendConnectionStatus struct {
	FriendNumber uint32
	Connection   friend.ConnectionStatus
}

// FriendRequest is an inbound request from a key that is not yet a friend.
type FriendRequest struct {
	PublicKey [32]byte
	TimeDelta uint32
	Message   []byte
}

// FriendMessage is a chat message from a friend.
type FriendMessage struct {
	FriendNumber uint32
	Type         friend.MessageType
	TimeDelta    uint32
	Message      []byte
}

type FriendName struct {
	FriendNumber uint32
	Name         []byte
}

type FriendStatus struct {
	FriendNumber uint32
	Status       friend.Status
}

type FriendStatusMessage struct {
	FriendNumber uint32
	Message      []byte
}

type FriendTyping struct {
	FriendNumber uint32
	Typing       bool
}

// FriendReadReceipt acknowledges a message previously sent with the given id.
type FriendReadReceipt struct {
	FriendNumber uint32
	MessageID    uint32
}

// FileControl is a pause, resume or cancel issued by the friend.
type FileControl struct {
	FriendNumber uint32
	FileNumber   uint32
	Control      file.Control
}

// FileReceive is a file offered by a friend. The transfer waits in Init
// until it is resumed.
type FileReceive struct {
	FriendNumber uint32
	FileNumber   uint32
	FileKind     file.Kind
	FileSize     uint64
	Filename     []byte
}

// FileReceiveChunk carries file data. Empty Data marks the end of the file.
type FileReceiveChunk struct {
	FriendNumber uint32
	FileNumber   uint32
	Position     uint64
	Data         []byte
}

// FileChunkRequest asks for Length bytes of an outgoing file at Position.
// A zero Length means the transfer is complete.
type FileChunkRequest struct {
	FriendNumber uint32
	FileNumber   uint32
	Position     uint64
	Length       uint32
}

type FriendLossyPacket struct {
	FriendNumber uint32
	Data         []byte
}

type FriendLosslessPacket struct {
	FriendNumber uint32
	Data         []byte
}

func (SelfConnectionStatus) Kind() Kind   { return KindSelfConnectionStatus }
func (FriendConnectionStatus) Kind() Kind { return KindFriendConnectionStatus }
func (FriendRequest) Kind() Kind          { return KindFriendRequest }
func (FriendMessage) Kind() Kind          { return KindFriendMessage }
func (FriendName) Kind() Kind             { return KindFriendName }
func (FriendStatus) Kind() Kind           { return KindFriendStatus }
func (FriendStatusMessage) Kind() Kind    { return KindFriendStatusMessage }
func (FriendTyping) Kind() Kind           { return KindFriendTyping }
func (FriendReadReceipt) Kind() Kind      { return KindFriendReadReceipt }
func (FileControl) Kind() Kind            { return KindFileControl }
func (FileReceive) Kind() Kind            { return KindFileReceive }
func (FileReceiveChunk) Kind() Kind       { return KindFileReceiveChunk }
func (FileChunkRequest) Kind() Kind       { return KindFileChunkRequest }
func (FriendLossyPacket) Kind() Kind      { return KindFriendLossyPacket }
func (FriendLosslessPacket) Kind() Kind   { return KindFriendLosslessPacket }

func (e SelfConnectionStatus) deliver(l Listener)   { l.OnSelfConnectionStatus(e) }
func (e FriendConnectionStatus) deliver(l Listener) { l.OnFriendConnectionStatus(e) }
func (e FriendRequest) deliver(l Listener)          { l.OnFriendRequest(e) }
func (e FriendMessage) deliver(l Listener)          { l.OnFriendMessage(e) }
func (e FriendName) deliver(l Listener)             { l.OnFriendName(e) }
func (e FriendStatus) deliver(l Listener)           { l.OnFriendStatus(e) }
func (e FriendStatusMessage) deliver(l Listener)    { l.OnFriendStatusMessage(e) }
func (e FriendTyping) deliver(l Listener)           { l.OnFriendTyping(e) }
func (e FriendReadReceipt) deliver(l Listener)      { l.OnFriendReadReceipt(e) }
func (e FileControl) deliver(l Listener)            { l.OnFileControl(e) }
func (e FileReceive) deliver(l Listener)            { l.OnFileReceive(e) }
func (e FileReceiveChunk) deliver(l Listener)       { l.OnFileReceiveChunk(e) }
func (e FileChunkRequest) deliver(l Listener)       { l.OnFileChunkRequest(e) }
func (e FriendLossyPacket) deliver(l Listener)      { l.OnFriendLossyPacket(e) }
func (e FriendLosslessPacket) deliver(l Listener)   { l.OnFriendLosslessPacket(e) }

func (e SelfConnectionStatus) clone() Event   { return e }
func (e FriendConnectionStatus) clone() Event { return e }
func (e FriendStatus) clone() Event           { return e }
func (e FriendTyping) clone() Event           { return e }
func (e FriendReadReceipt) clone() Event      { return e }
func (e FileControl) clone() Event            { return e }
func (e FileChunkRequest) clone() Event       { return e }

func (e FriendRequest) clone() Event {
	e.Message = cloneBytes(e.Message)
	return e
}

func (e FriendMessage) clone() Event {
	e.Message = cloneBytes(e.Message)
	return e
}

func (e FriendName) clone() Event {
	e.Name = cloneBytes(e.Name)
	return e
}

func (e FriendStatusMessage) clone() Event {
	e.Message = cloneBytes(e.Message)
	return e
}

func (e FileReceive) clone() Event {
	e.Filename = cloneBytes(e.Filename)
	return e
}

func (e FileReceiveChunk) clone() Event {
	e.Data = cloneBytes(e.Data)
	return e
}

func (e FriendLossyPacket) clone() Event {
	e.Data = cloneBytes(e.Data)
	return e
}

func (e FriendLosslessPacket) clone() Event {
	e.Data = cloneBytes(e.Data)
	return e
}
