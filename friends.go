package toxsession

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxsession/friend"
	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/limits"
)

// First-byte ranges reserved for custom packets.
const (
	lossyPacketFirst    = 200
	lossyPacketLast     = 254
	losslessPacketFirst = 160
	losslessPacketLast  = 191
)

// AddFriend sends a friend request to a 38-byte address and returns the new
// friend number. Errors are friend.AddError values.
func (s *Session) AddFriend(address, message []byte) (uint32, error) {
	s.checkOpen()
	n, err := s.friends.AddFriend(address, message)
	if err != nil {
		return 0, err
	}
	s.metrics.SetFriends(s.friends.Len())
	return n, nil
}

// AddFriendNoRequest adds a friend by public key without sending a request,
// typically to accept a FriendRequest event. A pending inbound request from
// the same key is consumed.
func (s *Session) AddFriendNoRequest(publicKey []byte) (uint32, error) {
	s.checkOpen()
	n, err := s.friends.AddFriendNoRequest(publicKey)
	if err != nil {
		return 0, err
	}
	pk, _ := s.friends.PublicKey(n)
	s.inbox.Take(pk)
	s.metrics.SetFriends(s.friends.Len())
	return n, nil
}

// DeleteFriend removes a friend. Its transfers are cancelled and its number
// becomes available for reuse.
func (s *Session) DeleteFriend(friendNumber uint32) error {
	s.checkOpen()
	if err := s.friends.Delete(friendNumber); err != nil {
		return err
	}
	s.metrics.SetFriends(s.friends.Len())
	s.metrics.SetTransfers(s.files.Active())
	return nil
}

// FriendRequests returns inbound requests that were neither accepted nor
// superseded, oldest first.
func (s *Session) FriendRequests() []friend.Request {
	s.checkOpen()
	return s.inbox.Pending()
}

// FriendByPublicKey returns the number of the friend with the given key.
func (s *Session) FriendByPublicKey(publicKey []byte) (uint32, error) {
	s.checkOpen()
	if len(publicKey) != 32 {
		return 0, friend.ErrNotFound
	}
	var pk [32]byte
	copy(pk[:], publicKey)
	return s.friends.ByPublicKey(pk)
}

// FriendExists reports whether friendNumber refers to a friend.
func (s *Session) FriendExists(friendNumber uint32) bool {
	s.checkOpen()
	return s.friends.Exists(friendNumber)
}

// FriendList returns all friend numbers in ascending order.
func (s *Session) FriendList() []uint32 {
	s.checkOpen()
	return s.friends.List()
}

// FriendPublicKey returns the public key of a friend.
func (s *Session) FriendPublicKey(friendNumber uint32) ([32]byte, error) {
	s.checkOpen()
	return s.friends.PublicKey(friendNumber)
}

// Friend returns a snapshot of a friend record.
func (s *Session) Friend(friendNumber uint32) (friend.Friend, error) {
	s.checkOpen()
	return s.friends.Get(friendNumber)
}

// SendMessage queues a message to a connected friend and returns the id a
// later FriendReadReceipt will carry.
func (s *Session) SendMessage(friendNumber uint32, messageType friend.MessageType, message []byte) (uint32, error) {
	s.checkOpen()
	if message == nil {
		return 0, SendMessageErrNull
	}
	verr := limits.ValidateMessage(message)
	if errors.Is(verr, limits.ErrMessageEmpty) {
		return 0, SendMessageErrEmpty
	}
	pk, err := s.friends.PublicKey(friendNumber)
	if err != nil {
		return 0, SendMessageErrFriendNotFound
	}
	if verr != nil {
		return 0, SendMessageErrTooLong
	}
	if !s.friends.IsConnected(friendNumber) {
		return 0, SendMessageErrFriendNotConnected
	}

	id, err := s.engine.SendMessage(pk, messageType.Raw(), message)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "SendMessage",
			"friend_number": friendNumber,
			"error":         err.Error(),
		}).Warn("Engine rejected message")
		if errors.Is(err, interfaces.ErrNotConnected) {
			return 0, SendMessageErrFriendNotConnected
		}
		return 0, fmt.Errorf("%w: %v", SendMessageErrSendQ, err)
	}
	return id, nil
}

// SetTyping tells a friend whether we are typing. The notification is best
// effort; it is dropped silently if the friend is offline.
func (s *Session) SetTyping(friendNumber uint32, typing bool) error {
	s.checkOpen()
	pk, err := s.friends.PublicKey(friendNumber)
	if err != nil {
		return SetTypingErrFriendNotFound
	}
	if err := s.engine.SetTyping(pk, typing); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "SetTyping",
			"friend_number": friendNumber,
			"error":         err.Error(),
		}).Debug("Typing notification not sent")
	}
	return nil
}

// SendLossyPacket sends a custom packet that may be dropped or reordered.
// The first byte must be in the lossy range 200..254.
func (s *Session) SendLossyPacket(friendNumber uint32, data []byte) error {
	s.checkOpen()
	return s.sendCustomPacket(friendNumber, data, true)
}

// SendLosslessPacket sends a custom packet that is delivered reliably and in
// order. The first byte must be in the lossless range 160..191.
func (s *Session) SendLosslessPacket(friendNumber uint32, data []byte) error {
	s.checkOpen()
	return s.sendCustomPacket(friendNumber, data, false)
}

func (s *Session) sendCustomPacket(friendNumber uint32, data []byte, lossy bool) error {
	if data == nil {
		return CustomPacketErrNull
	}
	verr := limits.ValidateCustomPacket(data)
	if errors.Is(verr, limits.ErrMessageEmpty) {
		return CustomPacketErrEmpty
	}
	pk, err := s.friends.PublicKey(friendNumber)
	if err != nil {
		return CustomPacketErrFriendNotFound
	}
	if verr != nil {
		return CustomPacketErrTooLong
	}

	first, last := byte(losslessPacketFirst), byte(losslessPacketLast)
	if lossy {
		first, last = lossyPacketFirst, lossyPacketLast
	}
	if data[0] < first || data[0] > last {
		return CustomPacketErrInvalid
	}
	if !s.friends.IsConnected(friendNumber) {
		return CustomPacketErrFriendNotConnected
	}

	if err := s.engine.SendCustomPacket(pk, lossy, data); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":      "sendCustomPacket",
			"friend_number": friendNumber,
			"lossy":         lossy,
			"error":         err.Error(),
		}).Debug("Engine rejected custom packet")
		if errors.Is(err, interfaces.ErrNotConnected) {
			return CustomPacketErrFriendNotConnected
		}
		return fmt.Errorf("%w: %v", CustomPacketErrSendQ, err)
	}
	return nil
}
