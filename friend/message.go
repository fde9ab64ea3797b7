package friend

import "github.com/opd-ai/toxsession/interfaces"

// MessageType distinguishes ordinary chat messages from actions ("/me").
type MessageType uint8

const (
	MessageNormal MessageType = iota
	MessageAction
)

// String returns a human readable form of the message type.
func (t MessageType) String() string {
	switch t {
	case MessageNormal:
		return "Normal"
	case MessageAction:
		return "Action"
	default:
		return "MessageType(?)"
	}
}

// MessageTypeFromRaw converts an engine message type.
func MessageTypeFromRaw(v uint32) (MessageType, bool) {
	switch v {
	case interfaces.RawMessageNormal:
		return MessageNormal, true
	case interfaces.RawMessageAction:
		return MessageAction, true
	}
	return 0, false
}

// Raw returns the engine representation of the message type.
func (t MessageType) Raw() uint32 {
	return uint32(t)
}
