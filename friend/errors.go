package friend

import "errors"

// AddError is the closed set of reasons AddFriend and AddFriendNoRequest fail.
type AddError uint8

const (
	// AddErrNull: an argument was nil or had the wrong length.
	AddErrNull AddError = iota + 1
	// AddErrTooLong: the request message exceeds limits.MaxFriendRequestLength.
	AddErrTooLong
	// AddErrNoMessage: the request message is empty.
	AddErrNoMessage
	// AddErrOwnKey: the key belongs to this session.
	AddErrOwnKey
	// AddErrAlreadySent: the key is already a friend or has a pending request.
	AddErrAlreadySent
	// AddErrBadChecksum: the address checksum does not match.
	AddErrBadChecksum
	// AddErrSetNewNospam: the key is already a friend but the address carried
	// a different nospam; the stored nospam was updated and the request resent.
	AddErrSetNewNospam
	// AddErrMalloc: the registry is full or the engine could not allocate.
	AddErrMalloc
)

var addErrorText = map[AddError]string{
	AddErrNull:         "friend add: null argument",
	AddErrTooLong:      "friend add: message too long",
	AddErrNoMessage:    "friend add: no message",
	AddErrOwnKey:       "friend add: own public key",
	AddErrAlreadySent:  "friend add: request already sent",
	AddErrBadChecksum:  "friend add: bad address checksum",
	AddErrSetNewNospam: "friend add: nospam mismatch, updated",
	AddErrMalloc:       "friend add: allocation failed",
}

func (e AddError) Error() string {
	if s, ok := addErrorText[e]; ok {
		return s
	}
	return "friend add: unknown error"
}

var (
	// ErrNotFound is returned when a friend number or public key does not
	// refer to an existing friend.
	ErrNotFound = errors.New("friend not found")

	// ErrDuplicate is returned by Restore when two records share a number or key.
	ErrDuplicate = errors.New("duplicate friend record")
)
