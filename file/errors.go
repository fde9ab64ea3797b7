package file

import "errors"

// SendError is returned by Coordinator.Send.
type SendError uint8

const (
	SendErrNull SendError = iota + 1
	SendErrFriendNotFound
	SendErrFriendNotConnected
	SendErrNameTooLong
	SendErrNameEmpty
	// SendErrTooMany: every outgoing file number for the friend is in use,
	// or the engine refused the offer.
	SendErrTooMany
)

var sendErrorText = map[SendError]string{
	SendErrNull:               "file send: null argument",
	SendErrFriendNotFound:     "file send: friend not found",
	SendErrFriendNotConnected: "file send: friend not connected",
	SendErrNameTooLong:        "file send: filename too long",
	SendErrNameEmpty:          "file send: filename empty",
	SendErrTooMany:            "file send: too many transfers",
}

func (e SendError) Error() string {
	if s, ok := sendErrorText[e]; ok {
		return s
	}
	return "file send: unknown error"
}

// ControlError is returned by Coordinator.Control.
type ControlError uint8

const (
	ControlErrFriendNotFound ControlError = iota + 1
	ControlErrFriendNotConnected
	ControlErrNotFound
	// ControlErrNotPaused: Resume on a transfer nobody paused.
	ControlErrNotPaused
	// ControlErrDenied: Resume on a transfer only the peer paused, or on an
	// outgoing transfer the peer has not accepted.
	ControlErrDenied
	// ControlErrAlreadyPaused: Pause on a transfer that is not running or is
	// already paused by us.
	ControlErrAlreadyPaused
	// ControlErrSendQ: the engine could not queue the control packet.
	ControlErrSendQ
)

var controlErrorText = map[ControlError]string{
	ControlErrFriendNotFound:     "file control: friend not found",
	ControlErrFriendNotConnected: "file control: friend not connected",
	ControlErrNotFound:           "file control: transfer not found",
	ControlErrNotPaused:          "file control: transfer not paused",
	ControlErrDenied:             "file control: denied",
	ControlErrAlreadyPaused:      "file control: already paused",
	ControlErrSendQ:              "file control: send queue full",
}

func (e ControlError) Error() string {
	if s, ok := controlErrorText[e]; ok {
		return s
	}
	return "file control: unknown error"
}

// SeekError is returned by Coordinator.Seek.
type SeekError uint8

const (
	SeekErrFriendNotFound SeekError = iota + 1
	SeekErrFriendNotConnected
	SeekErrNotFound
	// SeekErrDeniedOutOfBounds: data already moved, the transfer ended, or
	// the position is past the end of the file.
	SeekErrDeniedOutOfBounds
	SeekErrSendFailed
)

var seekErrorText = map[SeekError]string{
	SeekErrFriendNotFound:     "file seek: friend not found",
	SeekErrFriendNotConnected: "file seek: friend not connected",
	SeekErrNotFound:           "file seek: transfer not found",
	SeekErrDeniedOutOfBounds:  "file seek: denied or out of bounds",
	SeekErrSendFailed:         "file seek: send failed",
}

func (e SeekError) Error() string {
	if s, ok := seekErrorText[e]; ok {
		return s
	}
	return "file seek: unknown error"
}

// SendChunkError is returned by Coordinator.SendChunk.
type SendChunkError uint8

const (
	SendChunkErrFriendNotFound SendChunkError = iota + 1
	SendChunkErrFriendNotConnected
	SendChunkErrNotFound
	SendChunkErrNotSending
	SendChunkErrInvalidLength
	SendChunkErrInvalidPosition
	SendChunkErrSendFailed
)

var sendChunkErrorText = map[SendChunkError]string{
	SendChunkErrFriendNotFound:     "file send chunk: friend not found",
	SendChunkErrFriendNotConnected: "file send chunk: friend not connected",
	SendChunkErrNotFound:           "file send chunk: transfer not found",
	SendChunkErrNotSending:         "file send chunk: transfer not sending",
	SendChunkErrInvalidLength:      "file send chunk: invalid length",
	SendChunkErrInvalidPosition:    "file send chunk: invalid position",
	SendChunkErrSendFailed:         "file send chunk: send failed",
}

func (e SendChunkError) Error() string {
	if s, ok := sendChunkErrorText[e]; ok {
		return s
	}
	return "file send chunk: unknown error"
}

// GetError is returned by Coordinator.FileID and Coordinator.Get.
type GetError uint8

const (
	GetErrFriendNotFound GetError = iota + 1
	GetErrNotFound
)

var getErrorText = map[GetError]string{
	GetErrFriendNotFound: "file get: friend not found",
	GetErrNotFound:       "file get: transfer not found",
}

func (e GetError) Error() string {
	if s, ok := getErrorText[e]; ok {
		return s
	}
	return "file get: unknown error"
}

// Errors reported for inbound engine activity. The dispatcher drops the
// corresponding event when one of these is returned.
var (
	// ErrUnknownTransfer indicates the (friend, file) pair has no transfer.
	ErrUnknownTransfer = errors.New("unknown file transfer")

	// ErrNotAccepting indicates the transfer is not in a state that accepts
	// the inbound activity, e.g. a chunk before the offer was accepted.
	ErrNotAccepting = errors.New("file transfer not accepting data")

	// ErrStalePosition indicates an inbound chunk behind the current position.
	ErrStalePosition = errors.New("file chunk position is stale")

	// ErrDuplicateTransfer indicates an offer reused a live file number.
	ErrDuplicateTransfer = errors.New("file number already in use")

	// ErrFriendOffline indicates an offer from a friend that is not connected.
	ErrFriendOffline = errors.New("file offer from offline friend")
)
