package file

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/limits"
)

// Friends is the view of the friend registry the coordinator needs.
type Friends interface {
	PublicKey(friendNumber uint32) ([32]byte, error)
	IsConnected(friendNumber uint32) bool
}

// transferKey uniquely identifies a file transfer.
type transferKey struct {
	friendNumber uint32
	fileNumber   uint32
}

// Coordinator owns every file transfer of a session.
type Coordinator struct {
	friends   Friends
	engine    interfaces.Engine
	transfers map[transferKey]*Transfer
}

// NewCoordinator creates a coordinator that resolves friends through friends
// and sends file packets through engine.
func NewCoordinator(friends Friends, engine interfaces.Engine) *Coordinator {
	logrus.WithFields(logrus.Fields{
		"function": "NewCoordinator",
	}).Debug("Creating file transfer coordinator")

	return &Coordinator{
		friends:   friends,
		engine:    engine,
		transfers: make(map[transferKey]*Transfer),
	}
}

// Send offers a file to a connected friend and returns its file number. A nil
// fileID is replaced with a random one.
func (c *Coordinator) Send(friendNumber uint32, kind Kind, fileSize uint64, fileID *[32]byte, filename []byte) (uint32, error) {
	if filename == nil {
		return 0, SendErrNull
	}
	pk, err := c.friends.PublicKey(friendNumber)
	if err != nil {
		return 0, SendErrFriendNotFound
	}
	if !c.friends.IsConnected(friendNumber) {
		return 0, SendErrFriendNotConnected
	}
	switch err := limits.ValidateFilename(filename); {
	case errors.Is(err, limits.ErrMessageEmpty):
		return 0, SendErrNameEmpty
	case err != nil:
		return 0, SendErrNameTooLong
	}

	fileNumber, ok := c.allocate(friendNumber)
	if !ok {
		return 0, SendErrTooMany
	}

	t := &Transfer{
		friendNumber: friendNumber,
		fileNumber:   fileNumber,
		direction:    DirectionSend,
		kind:         kind,
		fileSize:     fileSize,
		filename:     append([]byte(nil), filename...),
		state:        StateInit,
	}
	if fileID != nil {
		t.fileID = *fileID
	} else if _, err := rand.Read(t.fileID[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", SendErrTooMany, err)
	}

	if err := c.engine.SendFileOffer(pk, fileNumber, kind.Raw(), fileSize, t.fileID, t.filename); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "Send",
			"friend_number": friendNumber,
			"file_number":   fileNumber,
			"error":         err.Error(),
		}).Error("Engine refused file offer")
		return 0, fmt.Errorf("%w: %v", SendErrTooMany, err)
	}

	t.state = StateRunning
	c.transfers[transferKey{friendNumber, fileNumber}] = t

	logrus.WithFields(logrus.Fields{
		"function":      "Send",
		"friend_number": friendNumber,
		"file_number":   fileNumber,
		"kind":          kind,
		"file_size":     fileSize,
	}).Info("File offer sent")

	return fileNumber, nil
}

// allocate returns the smallest free outgoing file number for a friend.
func (c *Coordinator) allocate(friendNumber uint32) (uint32, bool) {
	for n := uint32(0); n < limits.MaxConcurrentFileTransfers; n++ {
		if _, used := c.transfers[transferKey{friendNumber, n}]; !used {
			return n, true
		}
	}
	return 0, false
}

// Control applies a Resume, Pause or Cancel command issued by this side.
func (c *Coordinator) Control(friendNumber, fileNumber uint32, cmd Control) error {
	pk, err := c.friends.PublicKey(friendNumber)
	if err != nil {
		return ControlErrFriendNotFound
	}
	if !c.friends.IsConnected(friendNumber) {
		return ControlErrFriendNotConnected
	}
	key := transferKey{friendNumber, fileNumber}
	t, ok := c.transfers[key]
	if !ok {
		return ControlErrNotFound
	}

	switch cmd {
	case ControlResume:
		if t.state == StateInit {
			if t.direction == DirectionSend {
				return ControlErrDenied
			}
		} else if !t.pausedBySelf {
			if t.pausedByPeer {
				return ControlErrDenied
			}
			return ControlErrNotPaused
		}
	case ControlPause:
		if t.pausedBySelf || (t.state != StateRunning && t.state != StatePaused) {
			return ControlErrAlreadyPaused
		}
	case ControlCancel:
	default:
		return fmt.Errorf("unknown file control %d", cmd)
	}

	if err := c.engine.SendFileControl(pk, fileNumber, cmd.Raw()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "Control",
			"friend_number": friendNumber,
			"file_number":   fileNumber,
			"control":       cmd,
			"error":         err.Error(),
		}).Error("Engine refused file control")
		return fmt.Errorf("%w: %v", ControlErrSendQ, err)
	}

	switch cmd {
	case ControlResume:
		if t.state == StateInit {
			t.state = StateRunning
		} else {
			t.pausedBySelf = false
			t.refreshPauseState()
		}
	case ControlPause:
		t.pausedBySelf = true
		t.refreshPauseState()
	case ControlCancel:
		c.release(key, StateCancelled)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Control",
		"friend_number": friendNumber,
		"file_number":   fileNumber,
		"control":       cmd,
		"state":         t.state,
	}).Debug("File control applied")
	return nil
}

// Seek moves the start position of a transfer. It is only allowed before any
// chunk has moved.
func (c *Coordinator) Seek(friendNumber, fileNumber uint32, position uint64) error {
	pk, err := c.friends.PublicKey(friendNumber)
	if err != nil {
		return SeekErrFriendNotFound
	}
	if !c.friends.IsConnected(friendNumber) {
		return SeekErrFriendNotConnected
	}
	t, ok := c.transfers[transferKey{friendNumber, fileNumber}]
	if !ok {
		return SeekErrNotFound
	}
	if t.moved || t.state.Terminal() {
		return SeekErrDeniedOutOfBounds
	}
	if t.sizeKnown() && position >= t.fileSize {
		return SeekErrDeniedOutOfBounds
	}

	if err := c.engine.SendFileSeek(pk, fileNumber, position); err != nil {
		return fmt.Errorf("%w: %v", SeekErrSendFailed, err)
	}
	t.position = position

	logrus.WithFields(logrus.Fields{
		"function":      "Seek",
		"friend_number": friendNumber,
		"file_number":   fileNumber,
		"position":      position,
	}).Debug("File position set")
	return nil
}

// SendChunk answers an outstanding chunk request of an outgoing transfer.
// Empty data ends the transfer.
func (c *Coordinator) SendChunk(friendNumber, fileNumber uint32, position uint64, data []byte) error {
	pk, err := c.friends.PublicKey(friendNumber)
	if err != nil {
		return SendChunkErrFriendNotFound
	}
	if !c.friends.IsConnected(friendNumber) {
		return SendChunkErrFriendNotConnected
	}
	key := transferKey{friendNumber, fileNumber}
	t, ok := c.transfers[key]
	if !ok || t.direction != DirectionSend {
		return SendChunkErrNotFound
	}
	if t.state != StateRunning {
		return SendChunkErrNotSending
	}

	if len(data) == 0 {
		if position != t.position {
			return SendChunkErrInvalidPosition
		}
	} else {
		req, found := t.hasRequest(position)
		if !found {
			return SendChunkErrInvalidPosition
		}
		if len(data) != int(req.length) {
			return SendChunkErrInvalidLength
		}
	}

	if err := c.engine.SendFileChunk(pk, fileNumber, position, data); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "SendChunk",
			"friend_number": friendNumber,
			"file_number":   fileNumber,
			"position":      position,
			"error":         err.Error(),
		}).Warn("Engine failed to send chunk")
		return fmt.Errorf("%w: %v", SendChunkErrSendFailed, err)
	}

	t.moved = true
	if len(data) == 0 {
		c.release(key, StateFinished)
		return nil
	}
	t.takeRequest(position)
	if end := position + uint64(len(data)); end > t.position {
		t.position = end
	}
	return nil
}

// FileID returns the 32-byte identifier of a transfer.
func (c *Coordinator) FileID(friendNumber, fileNumber uint32) ([32]byte, error) {
	t, err := c.Get(friendNumber, fileNumber)
	if err != nil {
		return [32]byte{}, err
	}
	return t.fileID, nil
}

// Get returns the live transfer for (friendNumber, fileNumber).
func (c *Coordinator) Get(friendNumber, fileNumber uint32) (*Transfer, error) {
	if _, err := c.friends.PublicKey(friendNumber); err != nil {
		return nil, GetErrFriendNotFound
	}
	t, ok := c.transfers[transferKey{friendNumber, fileNumber}]
	if !ok {
		return nil, GetErrNotFound
	}
	return t, nil
}

// Transfers returns the live transfers of a friend ordered by file number.
func (c *Coordinator) Transfers(friendNumber uint32) []*Transfer {
	var out []*Transfer
	for key, t := range c.transfers {
		if key.friendNumber == friendNumber {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].fileNumber < out[j].fileNumber })
	return out
}

// Active returns the number of live transfers.
func (c *Coordinator) Active() int {
	return len(c.transfers)
}

// CancelFriend cancels and releases every transfer of a friend without
// contacting the engine. It runs when a friend is deleted or goes offline.
func (c *Coordinator) CancelFriend(friendNumber uint32) int {
	cancelled := 0
	for key := range c.transfers {
		if key.friendNumber == friendNumber {
			c.release(key, StateCancelled)
			cancelled++
		}
	}
	if cancelled > 0 {
		logrus.WithFields(logrus.Fields{
			"function":      "CancelFriend",
			"friend_number": friendNumber,
			"cancelled":     cancelled,
		}).Info("Cancelled file transfers of friend")
	}
	return cancelled
}

// release ends a transfer and frees its file number.
func (c *Coordinator) release(key transferKey, s State) {
	if t, ok := c.transfers[key]; ok {
		t.end(s)
		delete(c.transfers, key)
	}
}

// ReceiveOffer records a file offered by a connected friend. The transfer
// starts in StateInit and accepts no data until this side resumes it. An
// empty filename is allowed.
func (c *Coordinator) ReceiveOffer(friendNumber, fileNumber uint32, kind Kind, fileSize uint64, fileID [32]byte, filename []byte) (*Transfer, error) {
	if !IsReceiveFileNumber(fileNumber) {
		return nil, fmt.Errorf("%w: inbound file number %d", ErrUnknownTransfer, fileNumber)
	}
	if !c.friends.IsConnected(friendNumber) {
		return nil, ErrFriendOffline
	}
	if err := limits.ValidateFilename(filename); errors.Is(err, limits.ErrMessageTooLarge) {
		return nil, fmt.Errorf("offer filename: %w", err)
	}
	key := transferKey{friendNumber, fileNumber}
	if _, exists := c.transfers[key]; exists {
		return nil, ErrDuplicateTransfer
	}

	t := &Transfer{
		friendNumber: friendNumber,
		fileNumber:   fileNumber,
		direction:    DirectionReceive,
		kind:         kind,
		fileSize:     fileSize,
		fileID:       fileID,
		filename:     append([]byte(nil), filename...),
		state:        StateInit,
	}
	c.transfers[key] = t

	logrus.WithFields(logrus.Fields{
		"function":      "ReceiveOffer",
		"friend_number": friendNumber,
		"file_number":   fileNumber,
		"kind":          kind,
		"file_size":     fileSize,
	}).Info("Received file offer")
	return t, nil
}

// ReceiveControl applies a control command sent by the friend.
func (c *Coordinator) ReceiveControl(friendNumber, fileNumber uint32, cmd Control) (*Transfer, error) {
	key := transferKey{friendNumber, fileNumber}
	t, ok := c.transfers[key]
	if !ok {
		return nil, ErrUnknownTransfer
	}

	switch cmd {
	case ControlResume:
		if t.state == StateInit {
			if t.direction == DirectionReceive {
				return nil, fmt.Errorf("%w: peer cannot accept its own offer", ErrNotAccepting)
			}
			t.state = StateRunning
		} else {
			t.pausedByPeer = false
			t.refreshPauseState()
		}
	case ControlPause:
		if t.state != StateRunning && t.state != StatePaused {
			return nil, fmt.Errorf("%w: pause in state %s", ErrNotAccepting, t.state)
		}
		t.pausedByPeer = true
		t.refreshPauseState()
	case ControlCancel:
		c.release(key, StateCancelled)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "ReceiveControl",
		"friend_number": friendNumber,
		"file_number":   fileNumber,
		"control":       cmd,
		"state":         t.state,
	}).Debug("Peer file control applied")
	return t, nil
}

// ReceiveChunk records inbound file data. Chunks for transfers that are not
// running, or behind the current position, are rejected. An empty chunk
// finishes the transfer.
func (c *Coordinator) ReceiveChunk(friendNumber, fileNumber uint32, position uint64, data []byte) (*Transfer, error) {
	key := transferKey{friendNumber, fileNumber}
	t, ok := c.transfers[key]
	if !ok || t.direction != DirectionReceive {
		return nil, ErrUnknownTransfer
	}
	if t.state != StateRunning {
		return nil, fmt.Errorf("%w: state %s", ErrNotAccepting, t.state)
	}
	if position < t.position {
		return nil, ErrStalePosition
	}

	if len(data) == 0 {
		t.moved = true
		t.position = position
		c.release(key, StateFinished)
		return t, nil
	}

	if position > math.MaxUint64-uint64(len(data)) {
		return nil, fmt.Errorf("%w: chunk at %d overflows position", ErrNotAccepting, position)
	}
	end := position + uint64(len(data))
	if t.sizeKnown() && end > t.fileSize {
		return nil, fmt.Errorf("%w: chunk ends at %d past size %d", ErrNotAccepting, end, t.fileSize)
	}
	t.moved = true
	t.position = end
	return t, nil
}

// ChunkRequest records the engine asking for the next piece of an outgoing
// file. A zero length means the friend has everything and the transfer is
// finished.
func (c *Coordinator) ChunkRequest(friendNumber, fileNumber uint32, position uint64, length uint32) (*Transfer, error) {
	key := transferKey{friendNumber, fileNumber}
	t, ok := c.transfers[key]
	if !ok || t.direction != DirectionSend {
		return nil, ErrUnknownTransfer
	}
	if t.state.Terminal() || t.state == StateInit {
		return nil, fmt.Errorf("%w: state %s", ErrNotAccepting, t.state)
	}

	if length == 0 {
		t.position = position
		c.release(key, StateFinished)
		return t, nil
	}
	if _, dup := t.hasRequest(position); !dup {
		t.requests = append(t.requests, chunkRequest{position: position, length: length})
	}
	return t, nil
}
