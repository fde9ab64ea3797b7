package testing

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxsession/interfaces"
)

// DefaultIterationInterval is the poll interval a SimulatedEngine reports
// unless SetIterationInterval is called.
const DefaultIterationInterval = 50 * time.Millisecond

// defaultUDPPort is reported when the configuration leaves StartPort at 0.
const defaultUDPPort = 33445

// stateMagic prefixes the opaque engine state produced by Savedata.
var stateMagic = []byte("simengine1")

// ErrClosed is returned by every engine call after Close.
var ErrClosed = errors.New("simulated engine closed")

// Call records one invocation of an engine method.
type Call struct {
	Method     string
	PublicKey  [32]byte
	FileNumber uint32
	Value      uint32
	Position   uint64
	Data       []byte
}

// SimulatedEngine is a deterministic in-memory interfaces.Engine. Tests feed
// it engine events with Inject and inspect what the session asked of the
// network through Calls. Nothing ever touches a socket.
type SimulatedEngine struct {
	mu sync.Mutex

	config   interfaces.EngineConfig
	queue    []interfaces.RawEvent
	calls    []Call
	failures map[string]error
	interval time.Duration

	dhtID         [32]byte
	friends       map[[32]byte]bool
	selfInfo      interfaces.SelfInfo
	nextMessageID uint32
	closed        bool
}

// NewSimulatedEngine creates an engine for cfg. Engine state previously
// returned by Savedata is restored from cfg.State.
func NewSimulatedEngine(cfg interfaces.EngineConfig) (*SimulatedEngine, error) {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")

	e := &SimulatedEngine{
		config:   cfg,
		failures: make(map[string]error),
		interval: DefaultIterationInterval,
		friends:  make(map[[32]byte]bool),
	}

	if len(cfg.State) > 0 {
		if err := e.restore(cfg.State); err != nil {
			return nil, err
		}
	} else if _, err := rand.Read(e.dhtID[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrMalloc, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewSimulatedEngine",
		"udp":        cfg.UDPEnabled,
		"start_port": cfg.StartPort,
		"end_port":   cfg.EndPort,
		"proxy":      cfg.ProxyType,
		"restored":   len(cfg.State) > 0,
	}).Info("Created simulated engine")
	return e, nil
}

func (e *SimulatedEngine) restore(state []byte) error {
	if !bytes.HasPrefix(state, stateMagic) || (len(state)-len(stateMagic))%32 != 0 || len(state) < len(stateMagic)+32 {
		return fmt.Errorf("simulated engine: corrupt state (%d bytes)", len(state))
	}
	body := state[len(stateMagic):]
	copy(e.dhtID[:], body[:32])
	for body = body[32:]; len(body) > 0; body = body[32:] {
		var pk [32]byte
		copy(pk[:], body[:32])
		e.friends[pk] = true
	}
	return nil
}

// Config returns the configuration the engine was created with.
func (e *SimulatedEngine) Config() interfaces.EngineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Inject queues events for the next Poll.
func (e *SimulatedEngine) Inject(events ...interfaces.RawEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, events...)
}

// Pending returns the number of queued events.
func (e *SimulatedEngine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// SetFailure makes every later call of method return err. A nil err clears
// the failure.
func (e *SimulatedEngine) SetFailure(method string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.failures, method)
		return
	}
	e.failures[method] = err
}

// SetIterationInterval changes the interval reported to the session.
func (e *SimulatedEngine) SetIterationInterval(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interval = d
}

// Calls returns the recorded calls in order.
func (e *SimulatedEngine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

// CallsTo returns the recorded calls of one method.
func (e *SimulatedEngine) CallsTo(method string) []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Call
	for _, c := range e.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// ClearCalls empties the call log.
func (e *SimulatedEngine) ClearCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

// IsClosed reports whether Close was called.
func (e *SimulatedEngine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// HasFriend reports whether the engine tracks pk as a friend.
func (e *SimulatedEngine) HasFriend(pk [32]byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.friends[pk]
}

// SelfInfo returns the profile last set by the session.
func (e *SimulatedEngine) SelfInfo() interfaces.SelfInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selfInfo
}

// record logs a call and returns the configured failure for it. e.mu must
// be held.
func (e *SimulatedEngine) record(c Call) error {
	if c.Data != nil {
		c.Data = append([]byte(nil), c.Data...)
	}
	e.calls = append(e.calls, c)
	if e.closed {
		return ErrClosed
	}
	return e.failures[c.Method]
}

func (e *SimulatedEngine) Poll() ([]interfaces.RawEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if err := e.failures["Poll"]; err != nil {
		return nil, err
	}
	events := e.queue
	e.queue = nil
	return events, nil
}

func (e *SimulatedEngine) IterationInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

func (e *SimulatedEngine) Bootstrap(host string, port uint16, pk [32]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(Call{Method: "Bootstrap", PublicKey: pk, Value: uint32(port), Data: []byte(host)})
}

func (e *SimulatedEngine) AddTCPRelay(host string, port uint16, pk [32]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(Call{Method: "AddTCPRelay", PublicKey: pk, Value: uint32(port), Data: []byte(host)})
}

func (e *SimulatedEngine) AddFriend(pk [32]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record(Call{Method: "AddFriend", PublicKey: pk}); err != nil {
		return err
	}
	e.friends[pk] = true
	return nil
}

func (e *SimulatedEngine) SendFriendRequest(pk [32]byte, nospam [4]byte, message []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	call := Call{Method: "SendFriendRequest", PublicKey: pk, Data: message}
	call.Value = uint32(nospam[0])<<24 | uint32(nospam[1])<<16 | uint32(nospam[2])<<8 | uint32(nospam[3])
	if err := e.record(call); err != nil {
		return err
	}
	e.friends[pk] = true
	return nil
}

func (e *SimulatedEngine) RemoveFriend(pk [32]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record(Call{Method: "RemoveFriend", PublicKey: pk}); err != nil {
		return err
	}
	delete(e.friends, pk)
	return nil
}

func (e *SimulatedEngine) SendMessage(pk [32]byte, messageType uint32, message []byte) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record(Call{Method: "SendMessage", PublicKey: pk, Value: messageType, Data: message}); err != nil {
		return 0, err
	}
	e.nextMessageID++
	return e.nextMessageID, nil
}

func (e *SimulatedEngine) SetTyping(pk [32]byte, typing bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var v uint32
	if typing {
		v = 1
	}
	return e.record(Call{Method: "SetTyping", PublicKey: pk, Value: v})
}

func (e *SimulatedEngine) SendCustomPacket(pk [32]byte, lossy bool, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var v uint32
	if lossy {
		v = 1
	}
	return e.record(Call{Method: "SendCustomPacket", PublicKey: pk, Value: v, Data: data})
}

func (e *SimulatedEngine) SendFileOffer(pk [32]byte, fileNumber, kind uint32, fileSize uint64, _ [32]byte, filename []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(Call{Method: "SendFileOffer", PublicKey: pk, FileNumber: fileNumber, Value: kind, Position: fileSize, Data: filename})
}

func (e *SimulatedEngine) SendFileControl(pk [32]byte, fileNumber, control uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(Call{Method: "SendFileControl", PublicKey: pk, FileNumber: fileNumber, Value: control})
}

func (e *SimulatedEngine) SendFileSeek(pk [32]byte, fileNumber uint32, position uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(Call{Method: "SendFileSeek", PublicKey: pk, FileNumber: fileNumber, Position: position})
}

func (e *SimulatedEngine) SendFileChunk(pk [32]byte, fileNumber uint32, position uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(Call{Method: "SendFileChunk", PublicKey: pk, FileNumber: fileNumber, Position: position, Data: data})
}

func (e *SimulatedEngine) SetSelfInfo(info interfaces.SelfInfo) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record(Call{Method: "SetSelfInfo", Value: info.Status}); err != nil {
		return err
	}
	e.selfInfo = interfaces.SelfInfo{
		Name:          append([]byte(nil), info.Name...),
		StatusMessage: append([]byte(nil), info.StatusMessage...),
		Status:        info.Status,
		Nospam:        info.Nospam,
	}
	return nil
}

func (e *SimulatedEngine) UDPPort() (uint16, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.config.UDPEnabled || e.closed {
		return 0, interfaces.ErrNotBound
	}
	if e.config.StartPort == 0 {
		return defaultUDPPort, nil
	}
	return e.config.StartPort, nil
}

func (e *SimulatedEngine) TCPPort() (uint16, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.config.TCPPort == 0 || e.closed {
		return 0, interfaces.ErrNotBound
	}
	return e.config.TCPPort, nil
}

func (e *SimulatedEngine) DHTID() [32]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dhtID
}

// Savedata encodes the DHT id and the friend keys the engine tracks, in
// key order so identical state yields identical bytes.
func (e *SimulatedEngine) Savedata() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([][32]byte, 0, len(e.friends))
	for pk := range e.friends {
		keys = append(keys, pk)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

	out := append([]byte(nil), stateMagic...)
	out = append(out, e.dhtID[:]...)
	for _, pk := range keys {
		out = append(out, pk[:]...)
	}
	return out
}

func (e *SimulatedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	e.queue = nil
	logrus.WithFields(logrus.Fields{
		"function": "SimulatedEngine.Close",
		"calls":    len(e.calls),
	}).Info("Simulated engine closed")
	return nil
}
