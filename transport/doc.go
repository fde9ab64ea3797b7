// Package transport validates network endpoints supplied by the application
// and builds the proxy dialers handed to the engine.
//
// The engine owns every socket. This package only decides what the engine is
// allowed to connect to and how: hosts are checked for syntax before any
// bootstrap or relay request is forwarded, and proxy settings become a
// golang.org/x/net/proxy Dialer.
//
// # Hosts
//
// ValidateHost accepts literal IPv4 and IPv6 addresses and DNS names made of
// letters, digits and hyphens. It never performs a lookup.
//
// # Proxies
//
// SOCKS5 and HTTP CONNECT proxies are supported:
//
//	cfg := &transport.ProxyConfig{
//	    Type: transport.ProxySOCKS5,
//	    Host: "127.0.0.1",
//	    Port: 9050,
//	}
//	dialer, err := transport.NewProxyDialer(ctx, cfg, nil)
//
// NewProxyDialer resolves a named proxy host once, so a typo fails at session
// creation with ErrProxyNotFound instead of on the first connection attempt.
// The HTTP dialer is registered with proxy.RegisterDialerType, so
// proxy.FromURL also understands http:// proxy URLs once this package is
// imported.
//
// UDP traffic is never proxied. Sessions that must hide their address should
// also disable UDP.
package transport
