package origin

import (
	"errors"
	"fmt"
	"net/netip"
)

var (
	// ErrMissingAndUntrusted is returned when trust depth is non-zero, no
	// usable proxy header is present, and the direct-peer fallback has been
	// disabled with RequireProxyHeaders.
	ErrMissingAndUntrusted = errors.New("no usable proxy header and peer fallback disabled")

	// ErrMalformedSelectedHop is returned when the hop chosen by the trust
	// boundary computation has an invalid address token, invalid quoting,
	// or an invalid scheme token.
	ErrMalformedSelectedHop = errors.New("malformed token at selected hop")

	// ErrChainTooLong is returned when a header chain exceeds the configured
	// maximum length.
	ErrChainTooLong = errors.New("proxy chain too long")

	// ErrInvalidPeer is returned by ResolveRequest when the request's
	// RemoteAddr cannot be parsed as a network address.
	ErrInvalidPeer = errors.New("invalid peer address")
)

// ResolutionError wraps a resolution failure with the header source that
// produced it.
type ResolutionError struct {
	Err    error
	Source string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func (e *ResolutionError) SourceName() string {
	return e.Source
}

// MalformedHopError reports the exact token and chain position that failed
// validation at the trust boundary.
type MalformedHopError struct {
	ResolutionError
	HopIndex int
	Token    string
	Reason   string
}

func (e *MalformedHopError) Error() string {
	return fmt.Sprintf("%s: %v (hop_index=%d, token=%q, reason=%s)",
		e.Source, e.Err, e.HopIndex, e.Token, e.Reason)
}

// ChainTooLongError reports an oversized proxy chain.
type ChainTooLongError struct {
	ResolutionError
	ChainLength int
	MaxLength   int
}

func (e *ChainTooLongError) Error() string {
	return fmt.Sprintf("%s: %v (chain_length=%d, max_length=%d)",
		e.Source, e.Err, e.ChainLength, e.MaxLength)
}

// ResolvedOrigin is the outcome of a successful resolution.
//
// Addr is always a syntactically valid address. Port is zero when the
// selected token carried no port. Scheme is empty when no scheme claim was
// present at the selected hop.
type ResolvedOrigin struct {
	Addr netip.Addr

	Port uint16

	Scheme string

	// HopIndex is the chain position that was selected, 0-based from the
	// client end. Peer-resolved results report zero: no header chain
	// contributed to them.
	HopIndex int

	// Source names the header the address was taken from, or SourcePeer
	// for peer-resolved results.
	Source string
}

// AddrPort returns the resolved address with its port. The port is zero
// when the selected token carried none.
func (r ResolvedOrigin) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(r.Addr, r.Port)
}

// ParsePrefixes parses CIDR strings into prefixes for TrustedPeerPrefixes.
func ParsePrefixes(cidrs ...string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}
