package toxsession

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/friend"
	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/limits"
)

// pushSelfInfo advertises the current profile through the engine.
func (s *Session) pushSelfInfo() error {
	return s.engine.SetSelfInfo(interfaces.SelfInfo{
		Name:          append([]byte(nil), s.name...),
		StatusMessage: append([]byte(nil), s.statusMessage...),
		Status:        s.status.Raw(),
		Nospam:        s.nospam,
	})
}

// publishSelfInfo pushes the profile and logs a refusal. Profile changes are
// local state first; the engine catches up on its next successful push.
func (s *Session) publishSelfInfo(function string) {
	if err := s.pushSelfInfo(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": function,
			"error":    err.Error(),
		}).Warn("Engine rejected self info update")
	}
}

// SelfPublicKey returns the long-term public key of this session.
func (s *Session) SelfPublicKey() [32]byte {
	s.checkOpen()
	return s.keys.Public
}

// SelfAddress returns the 38-byte address friends use to send requests.
func (s *Session) SelfAddress() crypto.Address {
	s.checkOpen()
	return crypto.NewAddress(s.keys.Public, s.nospam)
}

// SelfNospam returns the nospam part of the address.
func (s *Session) SelfNospam() uint32 {
	s.checkOpen()
	return s.nospam.Uint32()
}

// SelfSetNospam changes the nospam. Addresses handed out before the change
// stop working for new friend requests.
func (s *Session) SelfSetNospam(nospam uint32) {
	s.checkOpen()
	s.nospam = crypto.NospamFromUint32(nospam)
	s.publishSelfInfo("SelfSetNospam")
}

// SelfSetName sets the display name. An empty name clears it.
func (s *Session) SelfSetName(name []byte) error {
	s.checkOpen()
	if name == nil {
		return SetInfoErrNull
	}
	if err := limits.ValidateSelfInfo(name, limits.MaxNameLength); err != nil {
		return fmt.Errorf("%w: %v", SetInfoErrTooLong, err)
	}
	s.name = append([]byte(nil), name...)
	s.publishSelfInfo("SelfSetName")
	return nil
}

// SelfName returns a copy of the display name.
func (s *Session) SelfName() []byte {
	s.checkOpen()
	return append([]byte(nil), s.name...)
}

// SelfSetStatusMessage sets the status message. An empty message clears it.
func (s *Session) SelfSetStatusMessage(message []byte) error {
	s.checkOpen()
	if message == nil {
		return SetInfoErrNull
	}
	if err := limits.ValidateSelfInfo(message, limits.MaxStatusMessageLength); err != nil {
		return fmt.Errorf("%w: %v", SetInfoErrTooLong, err)
	}
	s.statusMessage = append([]byte(nil), message...)
	s.publishSelfInfo("SelfSetStatusMessage")
	return nil
}

// SelfStatusMessage returns a copy of the status message.
func (s *Session) SelfStatusMessage() []byte {
	s.checkOpen()
	return append([]byte(nil), s.statusMessage...)
}

// SelfSetStatus sets the advertised user status.
func (s *Session) SelfSetStatus(status friend.Status) error {
	s.checkOpen()
	if _, ok := friend.StatusFromRaw(status.Raw()); !ok {
		return fmt.Errorf("%w: %d", SetInfoErrBadStatus, status)
	}
	s.status = status
	s.publishSelfInfo("SelfSetStatus")
	return nil
}

// SelfStatus returns the advertised user status.
func (s *Session) SelfStatus() friend.Status {
	s.checkOpen()
	return s.status
}

// SelfConnectionStatus returns the connection status last reported by the
// engine. It only changes while Iterate runs.
func (s *Session) SelfConnectionStatus() friend.ConnectionStatus {
	s.checkOpen()
	return s.dispatcher.SelfConnection()
}

// DHTID returns the temporary DHT public key. It differs from SelfPublicKey
// and changes every time a session is created.
func (s *Session) DHTID() [32]byte {
	s.checkOpen()
	return s.engine.DHTID()
}

// UDPPort returns the bound UDP port.
func (s *Session) UDPPort() (uint16, error) {
	s.checkOpen()
	return port(s.engine.UDPPort())
}

// TCPPort returns the port of the TCP relay server, if one was requested.
func (s *Session) TCPPort() (uint16, error) {
	s.checkOpen()
	return port(s.engine.TCPPort())
}

func port(p uint16, err error) (uint16, error) {
	if err != nil {
		if errors.Is(err, interfaces.ErrNotBound) {
			return 0, GetPortErrNotBound
		}
		return 0, fmt.Errorf("%w: %v", GetPortErrNotBound, err)
	}
	return p, nil
}
