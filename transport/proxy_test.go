package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver answers lookups from a fixed table.
type fakeResolver struct {
	hosts   map[string][]string
	lookups []string
}

func (r *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	r.lookups = append(r.lookups, host)
	if addrs, ok := r.hosts[host]; ok {
		return addrs, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

func TestProxyTypeString(t *testing.T) {
	assert.Equal(t, "none", ProxyNone.String())
	assert.Equal(t, "http", ProxyHTTP.String())
	assert.Equal(t, "socks5", ProxySOCKS5.String())
	assert.Equal(t, "ProxyType(9)", ProxyType(9).String())
}

func TestProxyConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  ProxyConfig
		wantErr error
	}{
		{"socks5", ProxyConfig{Type: ProxySOCKS5, Host: "127.0.0.1", Port: 9050}, nil},
		{"http named host", ProxyConfig{Type: ProxyHTTP, Host: "proxy.example.com", Port: 8080}, nil},
		{"ipv6 host", ProxyConfig{Type: ProxySOCKS5, Host: "::1", Port: 1080}, nil},
		{"none type", ProxyConfig{Type: ProxyNone, Host: "127.0.0.1", Port: 9050}, ErrProxyBadType},
		{"unknown type", ProxyConfig{Type: ProxyType(7), Host: "127.0.0.1", Port: 9050}, ErrProxyBadType},
		{"empty host", ProxyConfig{Type: ProxySOCKS5, Port: 9050}, ErrProxyBadHost},
		{"invalid host", ProxyConfig{Type: ProxySOCKS5, Host: "bad host!", Port: 9050}, ErrProxyBadHost},
		{"zero port", ProxyConfig{Type: ProxyHTTP, Host: "127.0.0.1"}, ErrProxyBadPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestProxyConfigURL(t *testing.T) {
	cfg := &ProxyConfig{Type: ProxySOCKS5, Host: "::1", Port: 1080, Username: "u", Password: "p"}
	u := cfg.URL()
	assert.Equal(t, "socks5", u.Scheme)
	assert.Equal(t, "[::1]:1080", u.Host)
	assert.Equal(t, "u", u.User.Username())
	pw, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p", pw)

	noAuth := (&ProxyConfig{Type: ProxyHTTP, Host: "10.0.0.1", Port: 3128}).URL()
	assert.Nil(t, noAuth.User)
	assert.Equal(t, "http://10.0.0.1:3128", noAuth.String())
}

func TestNewProxyDialerResolution(t *testing.T) {
	resolver := &fakeResolver{hosts: map[string][]string{"proxy.example.com": {"192.0.2.10"}}}
	ctx := context.Background()

	dialer, err := NewProxyDialer(ctx, &ProxyConfig{Type: ProxySOCKS5, Host: "proxy.example.com", Port: 1080}, resolver)
	require.NoError(t, err)
	assert.NotNil(t, dialer)

	_, err = NewProxyDialer(ctx, &ProxyConfig{Type: ProxySOCKS5, Host: "missing.example.com", Port: 1080}, resolver)
	assert.ErrorIs(t, err, ErrProxyNotFound)

	_, err = NewProxyDialer(ctx, &ProxyConfig{Type: ProxyHTTP, Host: "127.0.0.1", Port: 3128}, resolver)
	require.NoError(t, err)

	assert.Equal(t, []string{"proxy.example.com", "missing.example.com"}, resolver.lookups)
}

func TestNewProxyDialerInvalid(t *testing.T) {
	_, err := NewProxyDialer(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrProxyBadType)

	_, err = NewProxyDialer(context.Background(), &ProxyConfig{Type: ProxyHTTP, Host: "127.0.0.1"}, nil)
	assert.ErrorIs(t, err, ErrProxyBadPort)
}

// startConnectProxy runs a single-connection HTTP CONNECT proxy that answers
// with status and, on success, echoes everything it receives.
func startConnectProxy(t *testing.T, status int) (host string, port uint16, gotTarget chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	gotTarget = make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		br := bufio.NewReader(conn)
		req, err := http.ReadRequest(br)
		if err != nil {
			return
		}
		gotTarget <- req.Host
		io.WriteString(conn, "HTTP/1.1 "+strconv.Itoa(status)+" "+http.StatusText(status)+"\r\n\r\n")
		if status == http.StatusOK {
			io.Copy(conn, br)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), uint16(addr.Port), gotTarget
}

func TestHTTPProxyDialerConnect(t *testing.T) {
	host, port, target := startConnectProxy(t, http.StatusOK)

	dialer, err := NewProxyDialer(context.Background(), &ProxyConfig{Type: ProxyHTTP, Host: host, Port: port}, nil)
	require.NoError(t, err)

	conn, err := dialer.Dial("tcp", "node.example.com:33445")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, "node.example.com:33445", <-target)

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestHTTPProxyDialerRejected(t *testing.T) {
	host, port, _ := startConnectProxy(t, http.StatusForbidden)

	dialer, err := NewProxyDialer(context.Background(), &ProxyConfig{Type: ProxyHTTP, Host: host, Port: port}, nil)
	require.NoError(t, err)

	_, err = dialer.Dial("tcp", "node.example.com:33445")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "403"), err.Error())
}

func TestHTTPProxyDialerRejectsUDP(t *testing.T) {
	d := &httpProxyDialer{}
	_, err := d.Dial("udp", "127.0.0.1:1")
	assert.Error(t, err)
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		host  string
		valid bool
	}{
		{"127.0.0.1", true},
		{"2001:db8::1", true},
		{"node.tox.chat", true},
		{"localhost", true},
		{"a-b.example", true},
		{"", false},
		{"has space.example", false},
		{"under_score.example", false},
		{"-leading.example", false},
		{"double..dot", false},
		{strings.Repeat("a", 64) + ".example", false},
		{strings.Repeat("a.", 130), false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			err := ValidateHost(tt.host)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.True(t, errors.Is(ValidateHost(""), ErrEmptyHost))
}
