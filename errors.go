package toxsession

import "errors"

// ErrUseAfterClose is the panic value raised by any method called on a
// closed Session, including a second Close.
var ErrUseAfterClose = errors.New("toxsession: use after close")

// ErrInstanceNotFound is returned by Instances for an unknown handle.
var ErrInstanceNotFound = errors.New("toxsession: instance not found")

// NewError is returned by New.
type NewError uint8

const (
	// NewErrNull: options or the engine factory were nil, or savedata was
	// requested without data.
	NewErrNull NewError = iota + 1
	NewErrMalloc
	// NewErrPortAlloc: the port range is invalid or no port in it was free.
	NewErrPortAlloc
	NewErrProxyBadType
	NewErrProxyBadHost
	NewErrProxyBadPort
	NewErrProxyNotFound
	// NewErrLoadEncrypted: the savedata is encrypted and the passphrase was
	// missing or wrong.
	NewErrLoadEncrypted
	NewErrLoadBadFormat
	NewErrUnknown
)

var newErrorText = map[NewError]string{
	NewErrNull:          "new session: null argument",
	NewErrMalloc:        "new session: allocation failed",
	NewErrPortAlloc:     "new session: port allocation failed",
	NewErrProxyBadType:  "new session: bad proxy type",
	NewErrProxyBadHost:  "new session: bad proxy host",
	NewErrProxyBadPort:  "new session: bad proxy port",
	NewErrProxyNotFound: "new session: proxy host not found",
	NewErrLoadEncrypted: "new session: savedata encrypted",
	NewErrLoadBadFormat: "new session: savedata bad format",
	NewErrUnknown:       "new session: unknown failure",
}

func (e NewError) Error() string {
	if s, ok := newErrorText[e]; ok {
		return s
	}
	return "new session: unknown error"
}

// BootstrapError is returned by Bootstrap and AddTCPRelay. It reports
// malformed input only; unreachable nodes show up later as connection
// status events.
type BootstrapError uint8

const (
	BootstrapErrNull BootstrapError = iota + 1
	BootstrapErrBadHost
	BootstrapErrBadPort
	BootstrapErrBadKey
)

var bootstrapErrorText = map[BootstrapError]string{
	BootstrapErrNull:    "bootstrap: null argument",
	BootstrapErrBadHost: "bootstrap: bad host",
	BootstrapErrBadPort: "bootstrap: bad port",
	BootstrapErrBadKey:  "bootstrap: bad public key",
}

func (e BootstrapError) Error() string {
	if s, ok := bootstrapErrorText[e]; ok {
		return s
	}
	return "bootstrap: unknown error"
}

// SetInfoError is returned by the self name, status message and user status
// setters.
type SetInfoError uint8

const (
	SetInfoErrNull SetInfoError = iota + 1
	SetInfoErrTooLong
	SetInfoErrBadStatus
)

var setInfoErrorText = map[SetInfoError]string{
	SetInfoErrNull:      "set info: null argument",
	SetInfoErrTooLong:   "set info: value too long",
	SetInfoErrBadStatus: "set info: unknown user status",
}

func (e SetInfoError) Error() string {
	if s, ok := setInfoErrorText[e]; ok {
		return s
	}
	return "set info: unknown error"
}

// SendMessageError is returned by SendMessage.
type SendMessageError uint8

const (
	SendMessageErrNull SendMessageError = iota + 1
	SendMessageErrFriendNotFound
	SendMessageErrFriendNotConnected
	SendMessageErrSendQ
	SendMessageErrTooLong
	SendMessageErrEmpty
)

var sendMessageErrorText = map[SendMessageError]string{
	SendMessageErrNull:               "send message: null argument",
	SendMessageErrFriendNotFound:     "send message: friend not found",
	SendMessageErrFriendNotConnected: "send message: friend not connected",
	SendMessageErrSendQ:              "send message: send queue full",
	SendMessageErrTooLong:            "send message: message too long",
	SendMessageErrEmpty:              "send message: empty message",
}

func (e SendMessageError) Error() string {
	if s, ok := sendMessageErrorText[e]; ok {
		return s
	}
	return "send message: unknown error"
}

// CustomPacketError is returned by SendLossyPacket and SendLosslessPacket.
type CustomPacketError uint8

const (
	CustomPacketErrNull CustomPacketError = iota + 1
	CustomPacketErrFriendNotFound
	CustomPacketErrFriendNotConnected
	// CustomPacketErrInvalid: the first byte is outside the range reserved
	// for the packet kind.
	CustomPacketErrInvalid
	CustomPacketErrEmpty
	CustomPacketErrTooLong
	CustomPacketErrSendQ
)

var customPacketErrorText = map[CustomPacketError]string{
	CustomPacketErrNull:               "custom packet: null argument",
	CustomPacketErrFriendNotFound:     "custom packet: friend not found",
	CustomPacketErrFriendNotConnected: "custom packet: friend not connected",
	CustomPacketErrInvalid:            "custom packet: invalid packet id",
	CustomPacketErrEmpty:              "custom packet: empty packet",
	CustomPacketErrTooLong:            "custom packet: packet too long",
	CustomPacketErrSendQ:              "custom packet: send queue full",
}

func (e CustomPacketError) Error() string {
	if s, ok := customPacketErrorText[e]; ok {
		return s
	}
	return "custom packet: unknown error"
}

// GetPortError is returned by UDPPort and TCPPort.
type GetPortError uint8

const (
	GetPortErrNotBound GetPortError = iota + 1
)

func (e GetPortError) Error() string {
	if e == GetPortErrNotBound {
		return "get port: not bound"
	}
	return "get port: unknown error"
}

// SetTypingError is returned by SetTyping.
type SetTypingError uint8

const (
	SetTypingErrFriendNotFound SetTypingError = iota + 1
)

func (e SetTypingError) Error() string {
	if e == SetTypingErrFriendNotFound {
		return "set typing: friend not found"
	}
	return "set typing: unknown error"
}
