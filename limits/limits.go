package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxMessageLength is the protocol limit for a single friend message.
	MaxMessageLength = 1372

	// MaxFriendRequestLength is the limit for the message attached to a
	// friend request.
	MaxFriendRequestLength = 1016

	// MaxNameLength is the limit for the self and friend display name.
	MaxNameLength = 128

	// MaxStatusMessageLength is the limit for the self and friend status message.
	MaxStatusMessageLength = 1007

	// MaxFilenameLength is the limit for filenames carried in file offers.
	MaxFilenameLength = 255

	// MaxCustomPacketSize is the limit for lossy and lossless custom packets.
	MaxCustomPacketSize = 1373

	// MaxFriends bounds the friend registry. Handles are dense, so this is
	// also the largest friend number plus one.
	MaxFriends = 1 << 16

	// MaxConcurrentFileTransfers bounds the number of outgoing transfers a
	// single friend may have active at once.
	MaxConcurrentFileTransfers = 256

	// MaxSavedataSize is the largest session blob accepted on load (16MB).
	MaxSavedataSize = 16 * 1024 * 1024

	// MaxHostnameLength is the limit for bootstrap, relay and proxy hosts.
	MaxHostnameLength = 255
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")
)

// ValidateSize validates data against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateSize(data []byte, maxSize int) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if len(data) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(data), maxSize)
	}
	return nil
}

// ValidateMessage validates a friend message against MaxMessageLength.
func ValidateMessage(message []byte) error {
	return ValidateSize(message, MaxMessageLength)
}

// ValidateFriendRequest validates a friend request message against
// MaxFriendRequestLength.
func ValidateFriendRequest(message []byte) error {
	return ValidateSize(message, MaxFriendRequestLength)
}

// ValidateFilename validates a file offer filename against MaxFilenameLength.
func ValidateFilename(name []byte) error {
	return ValidateSize(name, MaxFilenameLength)
}

// ValidateCustomPacket validates a custom packet against MaxCustomPacketSize.
func ValidateCustomPacket(data []byte) error {
	return ValidateSize(data, MaxCustomPacketSize)
}

// ValidateSelfInfo validates a name or status message. Unlike the other
// validators an empty value is allowed: it clears the field.
func ValidateSelfInfo(value []byte, maxSize int) error {
	if len(value) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(value), maxSize)
	}
	return nil
}
