package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

// ProxyType selects the proxy protocol used for outbound TCP connections.
type ProxyType uint8

const (
	ProxyNone ProxyType = iota
	ProxyHTTP
	ProxySOCKS5
)

// String returns the URL scheme of the proxy type.
func (p ProxyType) String() string {
	switch p {
	case ProxyNone:
		return "none"
	case ProxyHTTP:
		return "http"
	case ProxySOCKS5:
		return "socks5"
	default:
		return "ProxyType(" + strconv.Itoa(int(p)) + ")"
	}
}

// Proxy configuration errors. NewProxyDialer wraps them with context.
var (
	ErrProxyBadType  = errors.New("transport: unknown proxy type")
	ErrProxyBadHost  = errors.New("transport: invalid proxy host")
	ErrProxyBadPort  = errors.New("transport: invalid proxy port")
	ErrProxyNotFound = errors.New("transport: proxy host could not be resolved")
)

// connectTimeout bounds dialing the proxy and its CONNECT handshake.
const connectTimeout = 10 * time.Second

// ProxyConfig contains configuration for proxy connections.
type ProxyConfig struct {
	Type     ProxyType
	Host     string
	Port     uint16
	Username string
	Password string
}

// Resolver looks up host names. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

func init() {
	proxy.RegisterDialerType("http", newHTTPProxyDialer)
}

// Validate checks the configuration without touching the network.
func (c *ProxyConfig) Validate() error {
	switch c.Type {
	case ProxyHTTP, ProxySOCKS5:
	default:
		return fmt.Errorf("%w: %s", ErrProxyBadType, c.Type)
	}
	if err := ValidateHost(c.Host); err != nil {
		return fmt.Errorf("%w: %v", ErrProxyBadHost, err)
	}
	if c.Port == 0 {
		return fmt.Errorf("%w: port 0", ErrProxyBadPort)
	}
	return nil
}

// Address returns host:port of the proxy.
func (c *ProxyConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// URL returns the proxy as a URL understood by proxy.FromURL.
func (c *ProxyConfig) URL() *url.URL {
	u := &url.URL{Scheme: c.Type.String(), Host: c.Address()}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	return u
}

// NewProxyDialer validates cfg, checks that the proxy host resolves and
// returns a dialer that routes TCP connections through the proxy. A nil
// resolver uses net.DefaultResolver. Literal IP hosts are not looked up.
func NewProxyDialer(ctx context.Context, cfg *ProxyConfig, resolver Resolver) (proxy.Dialer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrProxyBadType)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewProxyDialer",
		"proxy_type": cfg.Type,
		"proxy_addr": cfg.Address(),
	}).Info("Creating proxy dialer")

	if net.ParseIP(cfg.Host) == nil {
		if resolver == nil {
			resolver = net.DefaultResolver
		}
		addrs, err := resolver.LookupHost(ctx, cfg.Host)
		if err != nil || len(addrs) == 0 {
			logrus.WithFields(logrus.Fields{
				"function":   "NewProxyDialer",
				"proxy_host": cfg.Host,
				"error":      err,
			}).Warn("Proxy host did not resolve")
			return nil, fmt.Errorf("%w: %s", ErrProxyNotFound, cfg.Host)
		}
	}

	dialer, err := proxy.FromURL(cfg.URL(), proxy.Direct)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "NewProxyDialer",
			"proxy_type": cfg.Type,
			"proxy_addr": cfg.Address(),
			"error":      err.Error(),
		}).Error("Failed to create proxy dialer")
		return nil, fmt.Errorf("%w: %v", ErrProxyBadType, err)
	}
	return dialer, nil
}

// httpProxyDialer implements the proxy.Dialer interface for HTTP CONNECT proxies.
type httpProxyDialer struct {
	proxyURL *url.URL
	forward  proxy.Dialer
}

func newHTTPProxyDialer(u *url.URL, forward proxy.Dialer) (proxy.Dialer, error) {
	return &httpProxyDialer{proxyURL: u, forward: forward}, nil
}

// Dial connects to the address via HTTP CONNECT proxy.
func (d *httpProxyDialer) Dial(network, addr string) (net.Conn, error) {
	if network != "tcp" && network != "tcp4" && network != "tcp6" {
		return nil, fmt.Errorf("HTTP CONNECT proxy only supports TCP, got: %s", network)
	}

	proxyConn, err := d.forward.Dial("tcp", d.proxyURL.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to proxy: %w", err)
	}

	connectReq := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if d.proxyURL.User != nil {
		password, _ := d.proxyURL.User.Password()
		connectReq.SetBasicAuth(d.proxyURL.User.Username(), password)
	}

	if err := proxyConn.SetDeadline(time.Now().Add(connectTimeout)); err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}
	if err := connectReq.Write(proxyConn); err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to write CONNECT request: %w", err)
	}

	br := bufio.NewReader(proxyConn)
	resp, err := http.ReadResponse(br, connectReq)
	if err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to read CONNECT response: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		proxyConn.Close()
		return nil, fmt.Errorf("proxy returned non-200 status: %s", resp.Status)
	}
	if err := proxyConn.SetDeadline(time.Time{}); err != nil {
		proxyConn.Close()
		return nil, fmt.Errorf("failed to clear deadline: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "httpProxyDialer.Dial",
		"address":    addr,
		"proxy_addr": d.proxyURL.Host,
	}).Debug("HTTP CONNECT tunnel established")

	if br.Buffered() > 0 {
		return &bufferedConn{Conn: proxyConn, r: br}, nil
	}
	return proxyConn, nil
}

// bufferedConn returns bytes the proxy sent right after its CONNECT reply
// before reading from the connection again.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
