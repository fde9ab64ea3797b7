package toxsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/net/proxy"

	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/event"
	"github.com/opd-ai/toxsession/file"
	"github.com/opd-ai/toxsession/friend"
	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/metrics"
	"github.com/opd-ai/toxsession/savedata"
	"github.com/opd-ai/toxsession/transport"
)

// proxyLookupTimeout bounds the proxy host lookup done by New.
const proxyLookupTimeout = 5 * time.Second

// Session is one cryptographic identity driving an external network engine.
//
// A Session is not safe for concurrent use. One goroutine owns it, calls
// Iterate in a loop and calls Close after the last Iterate has returned.
type Session struct {
	keys   *crypto.KeyPair
	nospam crypto.Nospam

	name          []byte
	statusMessage []byte
	status        friend.Status

	engine     interfaces.Engine
	clock      clock.Clock
	metrics    *metrics.Metrics
	friends    *friend.Registry
	inbox      *friend.Inbox
	files      *file.Coordinator
	dispatcher *event.Dispatcher

	closed bool
}

// New creates a session from options. On failure the error is a NewError,
// possibly wrapped with detail.
func New(options *Options) (*Session, error) {
	if options == nil || options.Engine == nil {
		return nil, NewErrNull
	}
	opts := *options

	startPort, endPort := opts.StartPort, opts.EndPort
	if startPort == 0 && endPort == 0 {
		startPort, endPort = DefaultStartPort, DefaultEndPort
	}
	if startPort > endPort {
		return nil, fmt.Errorf("%w: start port %d above end port %d", NewErrPortAlloc, startPort, endPort)
	}

	dialer, err := newProxyDialer(&opts)
	if err != nil {
		return nil, err
	}

	keys, nospam, state, err := loadIdentity(&opts)
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	m, err := metrics.New(opts.Metrics)
	if err != nil {
		return nil, fmt.Errorf("%w: metrics: %v", NewErrUnknown, err)
	}

	cfg := interfaces.EngineConfig{
		PublicKey:      keys.Public,
		SecretKey:      keys.Private,
		IPv6Enabled:    opts.IPv6Enabled,
		UDPEnabled:     opts.UDPEnabled,
		LocalDiscovery: opts.LocalDiscovery,
		StartPort:      startPort,
		EndPort:        endPort,
		TCPPort:        opts.TCPPort,
		ProxyDialer:    dialer,
	}
	if dialer != nil {
		cfg.ProxyType = opts.Proxy.Type.String()
		cfg.ProxyAddr = (&transport.ProxyConfig{Host: opts.Proxy.Host, Port: opts.Proxy.Port}).Address()
	}
	if state != nil {
		cfg.State = state.Engine
	}

	engine, err := opts.Engine(cfg)
	if err != nil {
		m.Unregister()
		logrus.WithFields(logrus.Fields{
			"function": "New",
			"error":    err.Error(),
		}).Error("Engine creation failed")
		switch {
		case errors.Is(err, interfaces.ErrPortAlloc):
			return nil, fmt.Errorf("%w: %v", NewErrPortAlloc, err)
		case errors.Is(err, interfaces.ErrMalloc):
			return nil, fmt.Errorf("%w: %v", NewErrMalloc, err)
		default:
			return nil, fmt.Errorf("%w: %v", NewErrUnknown, err)
		}
	}

	s := &Session{
		keys:    keys,
		nospam:  nospam,
		engine:  engine,
		clock:   clk,
		metrics: m,
		friends: friend.NewRegistry(keys.Public, engine, clk),
		inbox:   friend.NewInbox(clk),
	}
	s.files = file.NewCoordinator(s.friends, engine)
	s.friends.OnDelete(func(n uint32) { s.files.CancelFriend(n) })
	s.dispatcher = event.NewDispatcher(s.friends, s.files, s.inbox, m)

	if state != nil {
		s.name = []byte(state.Name)
		s.statusMessage = []byte(state.StatusMessage)
		s.status = state.Status
		if err := s.friends.Restore(state.Friends); err != nil {
			s.release()
			return nil, fmt.Errorf("%w: %v", NewErrLoadBadFormat, err)
		}
	}

	if err := s.pushSelfInfo(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "New",
			"error":    err.Error(),
		}).Warn("Engine rejected initial self info")
	}
	m.SetFriends(s.friends.Len())

	logrus.WithFields(logrus.Fields{
		"function":   "New",
		"public_key": fmt.Sprintf("%X", keys.Public[:8]),
		"friends":    s.friends.Len(),
		"udp":        opts.UDPEnabled,
		"proxy":      dialer != nil,
		"savedata":   opts.SavedataType,
	}).Info("Session created")
	return s, nil
}

// newProxyDialer validates the proxy options and maps transport errors to
// NewError codes. It returns nil when no proxy is configured.
func newProxyDialer(opts *Options) (proxy.Dialer, error) {
	if opts.Proxy == nil || opts.Proxy.Type == ProxyTypeNone {
		return nil, nil
	}

	cfg := &transport.ProxyConfig{
		Type:     opts.Proxy.Type,
		Host:     opts.Proxy.Host,
		Port:     opts.Proxy.Port,
		Username: opts.Proxy.Username,
		Password: opts.Proxy.Password,
	}
	ctx, cancel := context.WithTimeout(context.Background(), proxyLookupTimeout)
	defer cancel()

	dialer, err := transport.NewProxyDialer(ctx, cfg, opts.Resolver)
	switch {
	case err == nil:
		return dialer, nil
	case errors.Is(err, transport.ErrProxyBadHost):
		return nil, fmt.Errorf("%w: %v", NewErrProxyBadHost, err)
	case errors.Is(err, transport.ErrProxyBadPort):
		return nil, fmt.Errorf("%w: %v", NewErrProxyBadPort, err)
	case errors.Is(err, transport.ErrProxyNotFound):
		return nil, fmt.Errorf("%w: %v", NewErrProxyNotFound, err)
	default:
		return nil, fmt.Errorf("%w: %v", NewErrProxyBadType, err)
	}
}

// loadIdentity produces the key pair and nospam, from savedata when given.
// state is nil unless a session blob was loaded.
func loadIdentity(opts *Options) (*crypto.KeyPair, crypto.Nospam, *savedata.State, error) {
	var nospam crypto.Nospam

	switch opts.SavedataType {
	case SaveDataTypeNone:
		keys, err := crypto.GenerateKeyPair()
		if err != nil {
			return nil, nospam, nil, fmt.Errorf("%w: %v", NewErrMalloc, err)
		}
		if nospam, err = crypto.GenerateNospam(); err != nil {
			return nil, nospam, nil, fmt.Errorf("%w: %v", NewErrMalloc, err)
		}
		return keys, nospam, nil, nil

	case SaveDataTypeSecretKey:
		if opts.SavedataData == nil {
			return nil, nospam, nil, NewErrNull
		}
		if len(opts.SavedataData) != crypto.KeySize {
			return nil, nospam, nil, fmt.Errorf("%w: secret key is %d bytes", NewErrLoadBadFormat, len(opts.SavedataData))
		}
		var sk [32]byte
		copy(sk[:], opts.SavedataData)
		keys, err := crypto.FromSecretKey(sk)
		crypto.ZeroBytes(sk[:])
		if err != nil {
			return nil, nospam, nil, fmt.Errorf("%w: %v", NewErrLoadBadFormat, err)
		}
		if nospam, err = crypto.GenerateNospam(); err != nil {
			return nil, nospam, nil, fmt.Errorf("%w: %v", NewErrMalloc, err)
		}
		return keys, nospam, nil, nil

	case SaveDataTypeToxSave:
		if opts.SavedataData == nil {
			return nil, nospam, nil, NewErrNull
		}
		state, err := savedata.Decode(opts.SavedataData, opts.SavedataPassphrase)
		switch {
		case errors.Is(err, savedata.ErrEncrypted):
			return nil, nospam, nil, fmt.Errorf("%w: %v", NewErrLoadEncrypted, err)
		case err != nil:
			return nil, nospam, nil, fmt.Errorf("%w: %v", NewErrLoadBadFormat, err)
		}
		keys, err := crypto.FromSecretKey(state.SecretKey)
		if err != nil {
			return nil, nospam, nil, fmt.Errorf("%w: %v", NewErrLoadBadFormat, err)
		}
		if keys.Public != state.PublicKey {
			return nil, nospam, nil, fmt.Errorf("%w: public key does not match secret key", NewErrLoadBadFormat)
		}
		crypto.ZeroBytes(state.SecretKey[:])
		return keys, state.Nospam, state, nil

	default:
		return nil, nospam, nil, fmt.Errorf("%w: savedata type %d", NewErrLoadBadFormat, opts.SavedataType)
	}
}

// checkOpen enforces that no method runs after Close.
func (s *Session) checkOpen() {
	if s.closed {
		panic(ErrUseAfterClose)
	}
}

// Iterate polls the engine once and delivers the resulting events to the
// listener before returning. It is the only method that produces events.
//
// A poll failure is returned after being counted; the session stays usable.
// Iterate panics with *event.SkewError if the engine reports an event this
// package cannot represent.
func (s *Session) Iterate() error {
	s.checkOpen()

	batch, err := s.engine.Poll()
	s.metrics.ObserveIteration(err)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Iterate",
			"error":    err.Error(),
		}).Warn("Engine poll failed")
		return fmt.Errorf("poll engine: %w", err)
	}

	if len(batch) > 0 {
		delivered := s.dispatcher.Dispatch(batch)
		logrus.WithFields(logrus.Fields{
			"function":  "Iterate",
			"events":    len(batch),
			"delivered": delivered,
		}).Debug("Dispatched engine events")
	}

	s.metrics.SetFriends(s.friends.Len())
	s.metrics.SetTransfers(s.files.Active())
	return nil
}

// IterationInterval returns the recommended interval between iterations. It
// is a hint from the engine, not a scheduling guarantee.
func (s *Session) IterationInterval() time.Duration {
	s.checkOpen()
	return s.engine.IterationInterval()
}

// Run calls Iterate and waits IterationInterval on the session clock until
// ctx is done. It returns ctx.Err(). Poll failures are logged and the loop
// continues. Close must only be called after Run has returned.
func (s *Session) Run(ctx context.Context) error {
	s.checkOpen()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Iterate(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Run",
				"error":    err.Error(),
			}).Debug("Iteration failed, continuing")
		}

		timer := s.clock.Timer(s.engine.IterationInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Callback registers the listener that receives every event. A nil listener
// discards events.
func (s *Session) Callback(l event.Listener) {
	s.checkOpen()
	s.dispatcher.SetListener(l)
}

// Bootstrap asks the engine to contact a DHT node. Only the input is
// checked; an unreachable node is reported later through connection status
// events.
func (s *Session) Bootstrap(host string, port uint16, publicKey []byte) error {
	s.checkOpen()
	pk, err := checkNode(host, port, publicKey)
	if err != nil {
		return err
	}
	if err := s.engine.Bootstrap(host, port, pk); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Bootstrap",
			"host":     host,
			"port":     port,
			"error":    err.Error(),
		}).Warn("Engine rejected bootstrap node")
		return fmt.Errorf("%w: %v", BootstrapErrBadHost, err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "Bootstrap",
		"host":     host,
		"port":     port,
	}).Info("Bootstrap node added")
	return nil
}

// AddTCPRelay asks the engine to use a TCP relay. Errors are as for Bootstrap.
func (s *Session) AddTCPRelay(host string, port uint16, publicKey []byte) error {
	s.checkOpen()
	pk, err := checkNode(host, port, publicKey)
	if err != nil {
		return err
	}
	if err := s.engine.AddTCPRelay(host, port, pk); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "AddTCPRelay",
			"host":     host,
			"port":     port,
			"error":    err.Error(),
		}).Warn("Engine rejected TCP relay")
		return fmt.Errorf("%w: %v", BootstrapErrBadHost, err)
	}
	return nil
}

func checkNode(host string, port uint16, publicKey []byte) ([32]byte, error) {
	var pk [32]byte
	if publicKey == nil {
		return pk, BootstrapErrNull
	}
	if err := transport.ValidateHost(host); err != nil {
		return pk, fmt.Errorf("%w: %v", BootstrapErrBadHost, err)
	}
	if port == 0 {
		return pk, BootstrapErrBadPort
	}
	if len(publicKey) != crypto.KeySize {
		return pk, BootstrapErrBadKey
	}
	copy(pk[:], publicKey)
	return pk, nil
}

// Save returns the session state as an unencrypted blob suitable for
// Options.SavedataData with SaveDataTypeToxSave.
func (s *Session) Save() []byte {
	s.checkOpen()
	blob, err := savedata.Encode(s.state(), nil)
	if err != nil {
		// Encode only fails for a nil state or while encrypting.
		panic(err)
	}
	return blob
}

// SaveEncrypted is Save with the blob encrypted under passphrase.
func (s *Session) SaveEncrypted(passphrase []byte) ([]byte, error) {
	s.checkOpen()
	if len(passphrase) == 0 {
		return nil, crypto.ErrEmptyPassphrase
	}
	return savedata.Encode(s.state(), passphrase)
}

func (s *Session) state() *savedata.State {
	return &savedata.State{
		PublicKey:     s.keys.Public,
		SecretKey:     s.keys.Private,
		Nospam:        s.nospam,
		Name:          string(s.name),
		StatusMessage: string(s.statusMessage),
		Status:        s.status,
		Friends:       s.friends.Snapshot(),
		Engine:        s.engine.Savedata(),
	}
}

// Close shuts the engine down and releases all session state. The session
// must not be used afterwards; any further call, including Close, panics
// with ErrUseAfterClose.
func (s *Session) Close() error {
	s.checkOpen()
	err := s.release()

	logrus.WithFields(logrus.Fields{
		"function": "Close",
		"error":    err,
	}).Info("Session closed")
	return err
}

// release tears everything down and marks the session closed.
func (s *Session) release() error {
	s.closed = true
	for _, n := range s.friends.List() {
		s.files.CancelFriend(n)
	}
	s.inbox.Clear()
	s.dispatcher.SetListener(nil)

	return multierr.Combine(
		s.engine.Close(),
		s.metrics.Unregister(),
		crypto.WipeKeyPair(s.keys),
	)
}
