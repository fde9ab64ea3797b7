package transport

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/net/idna"

	"github.com/opd-ai/toxsession/limits"
)

// ErrEmptyHost is returned by ValidateHost for an empty host.
var ErrEmptyHost = errors.New("transport: empty host")

// hostProfile accepts letters, digits and hyphens in labels of valid DNS length.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.VerifyDNSLength(true),
	idna.BidiRule(),
)

// ValidateHost accepts a literal IPv4 or IPv6 address or a syntactically
// valid DNS name. Reachability is not checked.
func ValidateHost(host string) error {
	if host == "" {
		return ErrEmptyHost
	}
	if len(host) > limits.MaxHostnameLength {
		return fmt.Errorf("host length %d exceeds limit %d", len(host), limits.MaxHostnameLength)
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if _, err := hostProfile.ToASCII(host); err != nil {
		return fmt.Errorf("invalid host %q: %w", host, err)
	}
	return nil
}
