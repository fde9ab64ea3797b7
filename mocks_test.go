package toxsession

import (
	"context"
	"net"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/event"
	"github.com/opd-ai/toxsession/interfaces"
	testsim "github.com/opd-ai/toxsession/testing"
)

// harness bundles a session with the simulated engine behind it.
type harness struct {
	session *Session
	engine  *testsim.SimulatedEngine
	factory *testsim.Factory
	clock   *clock.Mock
	rec     *event.Recorder
}

// newHarness creates a session on a simulated engine with a mock clock and
// a private metrics registry. mutate adjusts the options before New.
func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()

	h := &harness{
		factory: testsim.NewFactory(),
		clock:   clock.NewMock(),
		rec:     &event.Recorder{},
	}
	opts := NewOptions()
	opts.Engine = h.factory.New
	opts.Clock = h.clock
	opts.Metrics = prometheus.NewRegistry()
	for _, m := range mutate {
		m(opts)
	}

	s, err := New(opts)
	require.NoError(t, err)
	s.Callback(h.rec)

	h.session = s
	h.engine = h.factory.Last()
	t.Cleanup(func() {
		if !s.closed {
			s.Close()
		}
	})
	return h
}

// addPeer adds a friend without a request and returns its number and key.
func (h *harness) addPeer(t *testing.T) (uint32, [32]byte) {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	n, err := h.session.AddFriendNoRequest(kp.Public[:])
	require.NoError(t, err)
	return n, kp.Public
}

// connect reports pk online over UDP and runs one iteration.
func (h *harness) connect(t *testing.T, pk [32]byte) {
	t.Helper()
	h.engine.Inject(testsim.FriendConnection(pk, interfaces.RawConnectionUDP))
	require.NoError(t, h.session.Iterate())
}

// feed injects events and runs one iteration.
func (h *harness) feed(t *testing.T, events ...interfaces.RawEvent) {
	t.Helper()
	h.engine.Inject(events...)
	require.NoError(t, h.session.Iterate())
}

// peerAddress returns a fresh valid address and its public key.
func peerAddress(t *testing.T) ([]byte, [32]byte) {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	nospam, err := crypto.GenerateNospam()
	require.NoError(t, err)
	return crypto.NewAddress(kp.Public, nospam).Bytes(), kp.Public
}

type stubResolver struct {
	hosts map[string][]string
}

func (r stubResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if addrs, ok := r.hosts[host]; ok {
		return addrs, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}
