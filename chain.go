package origin

import (
	"net/http"
	"strings"
)

// typicalChainCapacity is the initial capacity used when parsing proxy
// chains.
//
// Most deployments have short chains (around 1-5 hops). Preallocating 8
// avoids reallocations in common cases without meaningful memory overhead.
const typicalChainCapacity = 8

const (
	// SourceForwarded names the RFC 7239 Forwarded header source.
	SourceForwarded = "forwarded"
	// SourceXForwardedFor names the X-Forwarded-For / X-Forwarded-Proto
	// pair source.
	SourceXForwardedFor = "x_forwarded_for"
	// SourcePeer names the transport-level peer pseudo-source.
	SourcePeer = "peer"
)

// RawHeaderChain carries the raw, unparsed proxy header values of one
// request. Any field may be empty when the corresponding header is absent.
//
// Values must be exactly as received, one slice entry per header line.
// RawHeaderChain is built and discarded per request; it holds no state.
type RawHeaderChain struct {
	// Forwarded holds the values of the Forwarded header.
	Forwarded []string

	// ForwardedFor holds the values of the X-Forwarded-For header.
	ForwardedFor []string

	// ForwardedProto holds the value of the X-Forwarded-Proto header. The
	// value is not per-hop; it applies globally when present.
	ForwardedProto string
}

// ChainFromHeader extracts the proxy headers from an http.Header.
func ChainFromHeader(h http.Header) RawHeaderChain {
	if h == nil {
		return RawHeaderChain{}
	}

	return RawHeaderChain{
		Forwarded:      h.Values("Forwarded"),
		ForwardedFor:   h.Values("X-Forwarded-For"),
		ForwardedProto: h.Get("X-Forwarded-Proto"),
	}
}

// parseForwardedForTokens splits X-Forwarded-For values into a client-first
// token list.
//
// Empty entries (consecutive commas, leading or trailing commas) are kept
// as zero-length tokens rather than skipped: dropping them would shift
// every position after them and with it the trust boundary. A zero-length
// token fails validation only if it ends up selected.
func parseForwardedForTokens(values []string, maxLength int) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	tokens := make([]string, 0, typicalChainCapacity)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if len(tokens) >= maxLength {
				return nil, &ChainTooLongError{
					ResolutionError: ResolutionError{
						Err:    ErrChainTooLong,
						Source: SourceXForwardedFor,
					},
					ChainLength: len(tokens) + 1,
					MaxLength:   maxLength,
				}
			}

			tokens = append(tokens, strings.TrimSpace(part))
		}
	}

	return tokens, nil
}
