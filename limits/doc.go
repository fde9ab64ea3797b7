// Package limits provides centralized size constants and validation functions
// for the session layer. Every public operation that accepts caller-provided
// bytes (names, messages, friend requests, filenames, custom packets) checks
// them against the constants defined here before the engine is contacted.
//
// # Size Hierarchy
//
//   - MaxMessageLength (1372 bytes): plaintext friend messages. This matches
//     the Tox protocol limit so messages stay interoperable with other clients.
//
//   - MaxFriendRequestLength (1016 bytes): the request text carried by a
//     friend request, which travels inside a single onion packet.
//
//   - MaxNameLength (128 bytes) and MaxStatusMessageLength (1007 bytes): self
//     information broadcast to friends.
//
//   - MaxFilenameLength (255 bytes): filenames carried in file offers.
//
//   - MaxCustomPacketSize (1373 bytes): lossy and lossless custom packets,
//     including their leading packet-id byte.
//
// # Validation Functions
//
// Each validation function distinguishes empty input from oversized input:
//
//	if err := limits.ValidateMessage(msg); err != nil {
//	    // ErrMessageEmpty or ErrMessageTooLarge
//	}
//
// Callers translate these sentinels into the closed error codes of the
// operation that triggered them.
package limits
