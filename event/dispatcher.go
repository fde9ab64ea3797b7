package event

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxsession/file"
	"github.com/opd-ai/toxsession/friend"
	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/limits"
	"github.com/opd-ai/toxsession/metrics"
)

// Delivery classes, in the order they are delivered within one batch.
const (
	classSelfConnection = iota
	classFriendConnection
	classFriend
	classFile
	classCustomPacket
	numClasses
)

var errAlreadyFriend = errors.New("request from existing friend")

// tagInfo maps an engine tag to its event kind and delivery class.
var tagInfo = map[interfaces.EventTag]struct {
	kind  Kind
	class int
}{
	interfaces.TagSelfConnectionStatus:   {KindSelfConnectionStatus, classSelfConnection},
	interfaces.TagFriendConnectionStatus: {KindFriendConnectionStatus, classFriendConnection},
	interfaces.TagFriendRequest:          {KindFriendRequest, classFriend},
	interfaces.TagFriendMessage:          {KindFriendMessage, classFriend},
	interfaces.TagFriendName:             {KindFriendName, classFriend},
	interfaces.TagFriendStatus:           {KindFriendStatus, classFriend},
	interfaces.TagFriendStatusMessage:    {KindFriendStatusMessage, classFriend},
	interfaces.TagFriendTyping:           {KindFriendTyping, classFriend},
	interfaces.TagFriendReadReceipt:      {KindFriendReadReceipt, classFriend},
	interfaces.TagFileRecvControl:        {KindFileControl, classFile},
	interfaces.TagFileRecv:               {KindFileReceive, classFile},
	interfaces.TagFileRecvChunk:          {KindFileReceiveChunk, classFile},
	interfaces.TagFileChunkRequest:       {KindFileChunkRequest, classFile},
	interfaces.TagFriendLossyPacket:      {KindFriendLossyPacket, classCustomPacket},
	interfaces.TagFriendLosslessPacket:   {KindFriendLosslessPacket, classCustomPacket},
}

// Dispatcher turns engine events into typed events, applies their effect on
// the friend registry and file coordinator, and delivers them to the
// listener in a fixed order.
//
// Within one Dispatch call events are delivered class by class: self
// connection, friend connection, friend activity (requests, messages,
// metadata, typing, receipts), file activity, then custom packets. Events of
// the same class keep their arrival order. The state change for an event is
// applied before the listener sees it.
type Dispatcher struct {
	friends  *friend.Registry
	files    *file.Coordinator
	inbox    *friend.Inbox
	metrics  *metrics.Metrics
	listener Listener

	selfConnection friend.ConnectionStatus
}

// NewDispatcher creates a dispatcher that updates friends, files and inbox.
// m may be nil.
func NewDispatcher(friends *friend.Registry, files *file.Coordinator, inbox *friend.Inbox, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		friends:  friends,
		files:    files,
		inbox:    inbox,
		metrics:  m,
		listener: BaseListener{},
	}
}

// SetListener replaces the listener. A nil listener discards events.
func (d *Dispatcher) SetListener(l Listener) {
	if l == nil {
		l = BaseListener{}
	}
	d.listener = l
}

// SelfConnection returns the last reported connection status of the session.
func (d *Dispatcher) SelfConnection() friend.ConnectionStatus {
	return d.selfConnection
}

// Dispatch delivers one batch of engine events and returns how many reached
// the listener. It panics with *SkewError if any event in the batch carries
// an unknown tag or enum value; in that case nothing is delivered.
func (d *Dispatcher) Dispatch(batch []interfaces.RawEvent) int {
	var classes [numClasses][]int
	for i := range batch {
		class := validate(&batch[i])
		classes[class] = append(classes[class], i)
	}

	delivered := 0
	for _, indices := range classes {
		for _, i := range indices {
			raw := &batch[i]
			kind := tagInfo[raw.Tag].kind

			e, err := d.apply(raw)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function":    "Dispatch",
					"kind":        kind,
					"file_number": raw.FileNumber,
					"reason":      err.Error(),
				}).Debug("Dropping engine event")
				if d.metrics != nil {
					d.metrics.ObserveDropped(kind.String())
				}
				continue
			}

			e.deliver(d.listener)
			delivered++
			if d.metrics != nil {
				d.metrics.ObserveEvent(kind.String())
			}
		}
	}
	return delivered
}

// validate checks tag and enum fields of raw and returns its delivery class.
func validate(raw *interfaces.RawEvent) int {
	info, ok := tagInfo[raw.Tag]
	if !ok {
		panic(&SkewError{Tag: raw.Tag})
	}

	var field string
	switch raw.Tag {
	case interfaces.TagSelfConnectionStatus, interfaces.TagFriendConnectionStatus:
		if _, ok := friend.ConnectionFromRaw(raw.Value); !ok {
			field = "connection"
		}
	case interfaces.TagFriendMessage:
		if _, ok := friend.MessageTypeFromRaw(raw.Value); !ok {
			field = "message type"
		}
	case interfaces.TagFriendStatus:
		if _, ok := friend.StatusFromRaw(raw.Value); !ok {
			field = "user status"
		}
	case interfaces.TagFileRecvControl:
		if _, ok := file.ControlFromRaw(raw.Value); !ok {
			field = "file control"
		}
	case interfaces.TagFileRecv:
		if _, ok := file.KindFromRaw(raw.Value); !ok {
			field = "file kind"
		}
	}
	if field != "" {
		panic(&SkewError{Tag: raw.Tag, Field: field, Value: raw.Value})
	}
	return info.class
}

// apply performs the state change for raw and builds the event to deliver.
// Enum fields were checked by validate.
func (d *Dispatcher) apply(raw *interfaces.RawEvent) (Event, error) {
	switch raw.Tag {
	case interfaces.TagSelfConnectionStatus:
		c, _ := friend.ConnectionFromRaw(raw.Value)
		d.selfConnection = c
		return SelfConnectionStatus{Connection: c}, nil

	case interfaces.TagFriendRequest:
		if _, err := d.friends.ByPublicKey(raw.FriendKey); err == nil {
			return nil, errAlreadyFriend
		}
		if d.inbox != nil {
			d.inbox.Add(raw.FriendKey, raw.Data)
		}
		return FriendRequest{PublicKey: raw.FriendKey, TimeDelta: raw.TimeDelta, Message: raw.Data}, nil
	}

	n, err := d.friends.ByPublicKey(raw.FriendKey)
	if err != nil {
		return nil, err
	}

	switch raw.Tag {
	case interfaces.TagFriendConnectionStatus:
		c, _ := friend.ConnectionFromRaw(raw.Value)
		prev, err := d.friends.SetConnection(n, c)
		if err != nil {
			return nil, err
		}
		if c == friend.ConnectionNone && prev != friend.ConnectionNone {
			d.files.CancelFriend(n)
		}
		return FriendConnectionStatus{FriendNumber: n, Connection: c}, nil

	case interfaces.TagFriendMessage:
		t, _ := friend.MessageTypeFromRaw(raw.Value)
		return FriendMessage{FriendNumber: n, Type: t, TimeDelta: raw.TimeDelta, Message: raw.Data}, nil

	case interfaces.TagFriendName:
		if err := limits.ValidateSelfInfo(raw.Data, limits.MaxNameLength); err != nil {
			return nil, fmt.Errorf("friend name: %w", err)
		}
		if err := d.friends.SetName(n, string(raw.Data)); err != nil {
			return nil, err
		}
		return FriendName{FriendNumber: n, Name: raw.Data}, nil

	case interfaces.TagFriendStatus:
		s, _ := friend.StatusFromRaw(raw.Value)
		if err := d.friends.SetStatus(n, s); err != nil {
			return nil, err
		}
		return FriendStatus{FriendNumber: n, Status: s}, nil

	case interfaces.TagFriendStatusMessage:
		if err := limits.ValidateSelfInfo(raw.Data, limits.MaxStatusMessageLength); err != nil {
			return nil, fmt.Errorf("friend status message: %w", err)
		}
		if err := d.friends.SetStatusMessage(n, string(raw.Data)); err != nil {
			return nil, err
		}
		return FriendStatusMessage{FriendNumber: n, Message: raw.Data}, nil

	case interfaces.TagFriendTyping:
		if err := d.friends.SetTyping(n, raw.Flag); err != nil {
			return nil, err
		}
		return FriendTyping{FriendNumber: n, Typing: raw.Flag}, nil

	case interfaces.TagFriendReadReceipt:
		return FriendReadReceipt{FriendNumber: n, MessageID: raw.Value}, nil

	case interfaces.TagFileRecvControl:
		ctl, _ := file.ControlFromRaw(raw.Value)
		if _, err := d.files.ReceiveControl(n, raw.FileNumber, ctl); err != nil {
			return nil, err
		}
		return FileControl{FriendNumber: n, FileNumber: raw.FileNumber, Control: ctl}, nil

	case interfaces.TagFileRecv:
		kind, _ := file.KindFromRaw(raw.Value)
		if _, err := d.files.ReceiveOffer(n, raw.FileNumber, kind, raw.FileSize, raw.FileID, raw.Data); err != nil {
			return nil, err
		}
		return FileReceive{
			FriendNumber: n,
			FileNumber:   raw.FileNumber,
			FileKind:     kind,
			FileSize:     raw.FileSize,
			Filename:     raw.Data,
		}, nil

	case interfaces.TagFileRecvChunk:
		if _, err := d.files.ReceiveChunk(n, raw.FileNumber, raw.Position, raw.Data); err != nil {
			return nil, err
		}
		return FileReceiveChunk{FriendNumber: n, FileNumber: raw.FileNumber, Position: raw.Position, Data: raw.Data}, nil

	case interfaces.TagFileChunkRequest:
		if _, err := d.files.ChunkRequest(n, raw.FileNumber, raw.Position, raw.Value); err != nil {
			return nil, err
		}
		return FileChunkRequest{FriendNumber: n, FileNumber: raw.FileNumber, Position: raw.Position, Length: raw.Value}, nil

	case interfaces.TagFriendLossyPacket:
		return FriendLossyPacket{FriendNumber: n, Data: raw.Data}, nil

	case interfaces.TagFriendLosslessPacket:
		return FriendLosslessPacket{FriendNumber: n, Data: raw.Data}, nil
	}

	return nil, fmt.Errorf("unhandled event tag %d", raw.Tag)
}
