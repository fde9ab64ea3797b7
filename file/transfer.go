package file

import (
	"math"

	"github.com/opd-ai/toxsession/interfaces"
)

// SizeUnknown marks a transfer whose size is not known up front, such as a
// stream. It finishes only when an empty chunk is exchanged.
const SizeUnknown uint64 = math.MaxUint64

// receiveNumberShift places engine-assigned inbound file numbers above every
// outgoing number so both directions share one per-friend namespace.
const receiveNumberShift = 16

// ReceiveFileNumber returns the file number of the inbound transfer in the
// given engine slot.
func ReceiveFileNumber(slot uint32) uint32 {
	return (slot + 1) << receiveNumberShift
}

// IsReceiveFileNumber reports whether n is in the inbound namespace.
func IsReceiveFileNumber(n uint32) bool {
	return n>>receiveNumberShift != 0
}

// Direction indicates whether a transfer is incoming or outgoing.
type Direction uint8

const (
	// DirectionSend is a file we offered.
	DirectionSend Direction = iota
	// DirectionReceive is a file a friend offered to us.
	DirectionReceive
)

func (d Direction) String() string {
	if d == DirectionSend {
		return "Send"
	}
	return "Receive"
}

// Kind distinguishes ordinary files from avatar transfers.
type Kind uint8

const (
	KindData Kind = iota
	KindAvatar
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "Data"
	case KindAvatar:
		return "Avatar"
	default:
		return "Kind(?)"
	}
}

// KindFromRaw converts an engine file kind.
func KindFromRaw(v uint32) (Kind, bool) {
	switch v {
	case interfaces.RawFileKindData:
		return KindData, true
	case interfaces.RawFileKindAvatar:
		return KindAvatar, true
	}
	return 0, false
}

// Raw returns the engine representation of the kind.
func (k Kind) Raw() uint32 {
	return uint32(k)
}

// Control is a command that changes the state of a transfer.
type Control uint8

const (
	ControlResume Control = iota
	ControlPause
	ControlCancel
)

func (c Control) String() string {
	switch c {
	case ControlResume:
		return "Resume"
	case ControlPause:
		return "Pause"
	case ControlCancel:
		return "Cancel"
	default:
		return "Control(?)"
	}
}

// ControlFromRaw converts an engine control value.
func ControlFromRaw(v uint32) (Control, bool) {
	switch v {
	case interfaces.RawFileControlResume:
		return ControlResume, true
	case interfaces.RawFileControlPause:
		return ControlPause, true
	case interfaces.RawFileControlCancel:
		return ControlCancel, true
	}
	return 0, false
}

// Raw returns the engine representation of the command.
func (c Control) Raw() uint32 {
	return uint32(c)
}

// State is the lifecycle state of a transfer.
type State uint8

const (
	// StateInit: offered, not yet accepted.
	StateInit State = iota
	StateRunning
	// StatePaused: at least one side has paused the transfer.
	StatePaused
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateFinished:
		return "Finished"
	case StateCancelled:
		return "Cancelled"
	default:
		return "State(?)"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateCancelled
}

type chunkRequest struct {
	position uint64
	length   uint32
}

// Transfer is one file transfer between this session and a friend.
//
// The coordinator owns every Transfer. Callers receive read-only views
// through the accessor methods; a Transfer keeps reporting its final state
// after the coordinator has released its handle.
type Transfer struct {
	friendNumber uint32
	fileNumber   uint32
	direction    Direction
	kind         Kind
	fileSize     uint64
	fileID       [32]byte
	filename     []byte

	state        State
	position     uint64
	pausedBySelf bool
	pausedByPeer bool

	// moved is set once any chunk has been sent or received.
	moved    bool
	requests []chunkRequest
}

// Read-only accessors.
func (t *Transfer) FriendNumber() uint32 { return t.friendNumber }
func (t *Transfer) FileNumber() uint32   { return t.fileNumber }
func (t *Transfer) Direction() Direction { return t.direction }
func (t *Transfer) Kind() Kind           { return t.kind }
func (t *Transfer) FileSize() uint64     { return t.fileSize }
func (t *Transfer) FileID() [32]byte     { return t.fileID }
func (t *Transfer) State() State         { return t.state }
func (t *Transfer) Position() uint64     { return t.position }
func (t *Transfer) PausedBySelf() bool   { return t.pausedBySelf }
func (t *Transfer) PausedByPeer() bool   { return t.pausedByPeer }

// Filename returns a copy of the filename bytes.
func (t *Transfer) Filename() []byte {
	return append([]byte(nil), t.filename...)
}

// sizeKnown reports whether the transfer has a definite size.
func (t *Transfer) sizeKnown() bool {
	return t.fileSize != SizeUnknown
}

// refreshPauseState derives Running or Paused from the pause bits.
func (t *Transfer) refreshPauseState() {
	if t.state != StateRunning && t.state != StatePaused {
		return
	}
	if t.pausedBySelf || t.pausedByPeer {
		t.state = StatePaused
	} else {
		t.state = StateRunning
	}
}

// takeRequest removes the outstanding chunk request at position.
func (t *Transfer) takeRequest(position uint64) (chunkRequest, bool) {
	for i, req := range t.requests {
		if req.position == position {
			t.requests = append(t.requests[:i], t.requests[i+1:]...)
			return req, true
		}
	}
	return chunkRequest{}, false
}

// hasRequest reports whether a chunk request at position is outstanding.
func (t *Transfer) hasRequest(position uint64) (chunkRequest, bool) {
	for _, req := range t.requests {
		if req.position == position {
			return req, true
		}
	}
	return chunkRequest{}, false
}

// end moves the transfer into a terminal state.
func (t *Transfer) end(s State) {
	t.state = s
	t.requests = nil
	t.pausedBySelf = false
	t.pausedByPeer = false
}
