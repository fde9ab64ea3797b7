package friend

import (
	"errors"
	"time"

	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/interfaces"
)

var errMockEngine = errors.New("mock engine failure")

// friendRequestCall records one SendFriendRequest invocation.
type friendRequestCall struct {
	publicKey [32]byte
	nospam    [4]byte
	message   []byte
}

// mockEngine implements interfaces.Engine, recording friend-related calls.
type mockEngine struct {
	requests []friendRequestCall
	added    [][32]byte
	removed  [][32]byte

	failRequest bool
	failAdd     bool
}

func (m *mockEngine) Poll() ([]interfaces.RawEvent, error) { return nil, nil }

func (m *mockEngine) IterationInterval() time.Duration { return 50 * time.Millisecond }

func (m *mockEngine) Bootstrap(string, uint16, [32]byte) error { return nil }

func (m *mockEngine) AddTCPRelay(string, uint16, [32]byte) error { return nil }

func (m *mockEngine) AddFriend(pk [32]byte) error {
	if m.failAdd {
		return errMockEngine
	}
	m.added = append(m.added, pk)
	return nil
}

func (m *mockEngine) SendFriendRequest(pk [32]byte, nospam [4]byte, message []byte) error {
	if m.failRequest {
		return errMockEngine
	}
	m.requests = append(m.requests, friendRequestCall{
		publicKey: pk,
		nospam:    nospam,
		message:   append([]byte(nil), message...),
	})
	return nil
}

func (m *mockEngine) RemoveFriend(pk [32]byte) error {
	m.removed = append(m.removed, pk)
	return nil
}

func (m *mockEngine) SendMessage([32]byte, uint32, []byte) (uint32, error) { return 0, nil }

func (m *mockEngine) SetTyping([32]byte, bool) error { return nil }

func (m *mockEngine) SendCustomPacket([32]byte, bool, []byte) error { return nil }

func (m *mockEngine) SendFileOffer([32]byte, uint32, uint32, uint64, [32]byte, []byte) error {
	return nil
}

func (m *mockEngine) SendFileControl([32]byte, uint32, uint32) error { return nil }

func (m *mockEngine) SendFileSeek([32]byte, uint32, uint64) error { return nil }

func (m *mockEngine) SendFileChunk([32]byte, uint32, uint64, []byte) error { return nil }

func (m *mockEngine) SetSelfInfo(interfaces.SelfInfo) error { return nil }

func (m *mockEngine) UDPPort() (uint16, error) { return 33445, nil }

func (m *mockEngine) TCPPort() (uint16, error) { return 0, interfaces.ErrNotBound }

func (m *mockEngine) DHTID() [32]byte { return [32]byte{} }

func (m *mockEngine) Savedata() []byte { return nil }

func (m *mockEngine) Close() error { return nil }

// generateTestKeyPair generates a keypair for testing using the crypto package.
func generateTestKeyPair() (*crypto.KeyPair, error) {
	return crypto.GenerateKeyPair()
}

// testAddress builds a valid address for a fresh key pair.
func testAddress(nospam uint32) (crypto.Address, error) {
	kp, err := generateTestKeyPair()
	if err != nil {
		return crypto.Address{}, err
	}
	return crypto.NewAddress(kp.Public, crypto.NospamFromUint32(nospam)), nil
}
