package toxsession

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/transport"
)

// Default UDP port range searched by the engine.
const (
	DefaultStartPort uint16 = 33445
	DefaultEndPort   uint16 = 33545
)

// ProxyType specifies the type of proxy to use.
type ProxyType = transport.ProxyType

const (
	ProxyTypeNone   = transport.ProxyNone
	ProxyTypeHTTP   = transport.ProxyHTTP
	ProxyTypeSOCKS5 = transport.ProxySOCKS5
)

// ProxyOptions contains proxy configuration.
type ProxyOptions struct {
	Type     ProxyType
	Host     string
	Port     uint16
	Username string
	Password string
}

// SaveDataType specifies the type of saved data.
type SaveDataType uint8

const (
	SaveDataTypeNone SaveDataType = iota
	// SaveDataTypeToxSave: SavedataData is a blob produced by Session.Save.
	SaveDataTypeToxSave
	// SaveDataTypeSecretKey: SavedataData is a 32-byte secret key.
	SaveDataTypeSecretKey
)

// Options contains configuration options for creating a Session. Options are
// read once by New; later changes have no effect on the session.
type Options struct {
	IPv6Enabled    bool
	UDPEnabled     bool
	LocalDiscovery bool
	Proxy          *ProxyOptions

	// StartPort and EndPort bound the UDP ports the engine may bind. Both
	// zero selects the default range.
	StartPort uint16
	EndPort   uint16
	// TCPPort enables a TCP relay server on this port when non-zero.
	TCPPort uint16

	SavedataType       SaveDataType
	SavedataData       []byte
	SavedataPassphrase []byte

	// Engine creates the network engine. It is required.
	Engine interfaces.EngineFactory

	// Clock drives Run and friend last-seen times. Nil uses the wall clock.
	Clock clock.Clock

	// Metrics receives the session's collectors. Nil leaves them unregistered.
	Metrics prometheus.Registerer

	// Resolver checks that a named proxy host exists. Nil uses the system
	// resolver.
	Resolver transport.Resolver
}

// NewOptions creates a new default Options.
func NewOptions() *Options {
	return &Options{
		IPv6Enabled:    true,
		UDPEnabled:     true,
		LocalDiscovery: true,
		StartPort:      DefaultStartPort,
		EndPort:        DefaultEndPort,
		TCPPort:        0, // Disabled by default
		SavedataType:   SaveDataTypeNone,
	}
}
