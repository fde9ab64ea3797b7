package file

import (
	"errors"
	"time"

	"github.com/opd-ai/toxsession/interfaces"
)

var errMockEngine = errors.New("mock engine failure")

// mockFriends implements Friends for testing.
type mockFriends struct {
	keys      map[uint32][32]byte
	connected map[uint32]bool
}

func newMockFriends() *mockFriends {
	return &mockFriends{
		keys:      make(map[uint32][32]byte),
		connected: make(map[uint32]bool),
	}
}

func (m *mockFriends) add(n uint32, online bool) {
	m.keys[n] = [32]byte{byte(n), 0xAB}
	m.connected[n] = online
}

func (m *mockFriends) PublicKey(n uint32) ([32]byte, error) {
	pk, ok := m.keys[n]
	if !ok {
		return pk, errors.New("friend not found")
	}
	return pk, nil
}

func (m *mockFriends) IsConnected(n uint32) bool {
	return m.connected[n]
}

type sentChunk struct {
	fileNumber uint32
	position   uint64
	data       []byte
}

// mockEngine implements interfaces.Engine for testing, recording file calls.
type mockEngine struct {
	offers   []uint32
	controls []uint32
	seeks    []uint64
	chunks   []sentChunk

	failOffer   bool
	failControl bool
	failSeek    bool
	failChunk   bool
}

func (m *mockEngine) Poll() ([]interfaces.RawEvent, error) { return nil, nil }

func (m *mockEngine) IterationInterval() time.Duration { return 50 * time.Millisecond }

func (m *mockEngine) Bootstrap(string, uint16, [32]byte) error { return nil }

func (m *mockEngine) AddTCPRelay(string, uint16, [32]byte) error { return nil }

func (m *mockEngine) AddFriend([32]byte) error { return nil }

func (m *mockEngine) SendFriendRequest([32]byte, [4]byte, []byte) error { return nil }

func (m *mockEngine) RemoveFriend([32]byte) error { return nil }

func (m *mockEngine) SendMessage([32]byte, uint32, []byte) (uint32, error) { return 0, nil }

func (m *mockEngine) SetTyping([32]byte, bool) error { return nil }

func (m *mockEngine) SendCustomPacket([32]byte, bool, []byte) error { return nil }

func (m *mockEngine) SendFileOffer(_ [32]byte, fileNumber, _ uint32, _ uint64, _ [32]byte, _ []byte) error {
	if m.failOffer {
		return errMockEngine
	}
	m.offers = append(m.offers, fileNumber)
	return nil
}

func (m *mockEngine) SendFileControl(_ [32]byte, _ uint32, control uint32) error {
	if m.failControl {
		return errMockEngine
	}
	m.controls = append(m.controls, control)
	return nil
}

func (m *mockEngine) SendFileSeek(_ [32]byte, _ uint32, position uint64) error {
	if m.failSeek {
		return errMockEngine
	}
	m.seeks = append(m.seeks, position)
	return nil
}

func (m *mockEngine) SendFileChunk(_ [32]byte, fileNumber uint32, position uint64, data []byte) error {
	if m.failChunk {
		return errMockEngine
	}
	m.chunks = append(m.chunks, sentChunk{fileNumber, position, append([]byte(nil), data...)})
	return nil
}

func (m *mockEngine) SetSelfInfo(interfaces.SelfInfo) error { return nil }

func (m *mockEngine) UDPPort() (uint16, error) { return 33445, nil }

func (m *mockEngine) TCPPort() (uint16, error) { return 0, interfaces.ErrNotBound }

func (m *mockEngine) DHTID() [32]byte { return [32]byte{} }

func (m *mockEngine) Savedata() []byte { return nil }

func (m *mockEngine) Close() error { return nil }
