package origin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
)

// Resolver resolves the original client address and scheme from proxy
// header chains under a fixed trust policy.
//
// Resolver instances are safe for concurrent reuse; the configuration is
// immutable after New. Callers needing several trust policies construct
// several resolvers.
type Resolver struct {
	config *Config
}

// New creates a Resolver from one or more Option builders.
func New(opts ...Option) (*Resolver, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Resolver{config: cfg}, nil
}

// Resolve determines the client origin from the raw header chain and the
// transport-level peer address.
//
// With trust depth zero the peer is returned unconditionally and no header
// is parsed. Otherwise the configured header preference is walked; the
// first source that is present and well-formed as a sequence supplies the
// hop list, and the hop at max(len(hops) - trustedHops, 0) is believed.
// That position depends only on the trust depth and the chain length,
// never on what the entries contain.
//
// Resolve performs no I/O and never blocks; ctx is used only to let
// tracing metadata flow into log output.
func (r *Resolver) Resolve(ctx context.Context, chain RawHeaderChain, peer netip.AddrPort) (ResolvedOrigin, error) {
	cfg := r.config

	if cfg.trustedHops == 0 {
		cfg.metrics.RecordResolutionSuccess(SourcePeer)
		return peerOrigin(peer), nil
	}

	if cfg.peerMatch.initialized && !cfg.peerMatch.contains(peer.Addr()) {
		if chainHasHeaders(chain) {
			cfg.metrics.RecordSecurityEvent(securityEventUntrustedPeer)
			cfg.logger.WarnContext(ctx, "proxy headers ignored: peer outside trusted ranges",
				"event", securityEventUntrustedPeer,
				"peer", peer.Addr().String(),
			)
		}

		return r.resolvePeerFallback(ctx, peer)
	}

	for _, source := range cfg.headerPreference {
		switch source {
		case SourceForwarded:
			hops, usable, err := r.parseForwardedSource(ctx, chain.Forwarded)
			if err != nil {
				return ResolvedOrigin{}, err
			}
			if !usable {
				continue
			}

			return r.resolveForwarded(ctx, hops)
		case SourceXForwardedFor:
			tokens, usable, err := r.parseForwardedForSource(ctx, chain.ForwardedFor)
			if err != nil {
				return ResolvedOrigin{}, err
			}
			if !usable {
				continue
			}

			return r.resolveForwardedFor(ctx, tokens, chain.ForwardedProto)
		}
	}

	return r.resolvePeerFallback(ctx, peer)
}

// ResolveRequest is a convenience wrapper building the chain from the
// request headers and the peer from RemoteAddr.
func (r *Resolver) ResolveRequest(req *http.Request) (ResolvedOrigin, error) {
	if req == nil {
		return ResolvedOrigin{}, &ResolutionError{Err: ErrInvalidPeer, Source: SourcePeer}
	}

	peer, ok := parsePeer(req.RemoteAddr)
	if !ok {
		r.config.metrics.RecordResolutionFailure(SourcePeer)
		return ResolvedOrigin{}, &ResolutionError{
			Err:    fmt.Errorf("%w: %q", ErrInvalidPeer, req.RemoteAddr),
			Source: SourcePeer,
		}
	}

	return r.Resolve(req.Context(), ChainFromHeader(req.Header), peer)
}

// parseForwardedSource reports whether the Forwarded header is usable: it
// must be present and parse as a non-empty, well-formed sequence of
// parameter sets. A sequence-level parse failure makes the source
// unusable (preference falls through); an oversized chain is terminal
// because truncating it would shift the trust boundary.
func (r *Resolver) parseForwardedSource(ctx context.Context, values []string) ([]forwardedHop, bool, error) {
	if len(values) == 0 {
		return nil, false, nil
	}

	hops, err := parseForwardedChain(values, r.config.maxChainLength)
	if err != nil {
		if errors.Is(err, ErrChainTooLong) {
			return nil, false, r.chainTooLong(ctx, SourceForwarded, err)
		}

		r.config.metrics.RecordSecurityEvent(securityEventMalformedForwarded)
		r.config.logger.WarnContext(ctx, "malformed Forwarded header received",
			"event", securityEventMalformedForwarded,
			"source", SourceForwarded,
			"parse_error", err.Error(),
		)
		return nil, false, nil
	}

	if len(hops) == 0 {
		return nil, false, nil
	}

	return hops, true, nil
}

func (r *Resolver) parseForwardedForSource(ctx context.Context, values []string) ([]string, bool, error) {
	if len(values) == 0 {
		return nil, false, nil
	}

	tokens, err := parseForwardedForTokens(values, r.config.maxChainLength)
	if err != nil {
		return nil, false, r.chainTooLong(ctx, SourceXForwardedFor, err)
	}

	if len(tokens) == 0 {
		return nil, false, nil
	}

	return tokens, true, nil
}

// selectHopIndex computes the trust boundary: the believed position in a
// client-first hop list of length n. Trusting one hop believes the entry
// closest to the server; trust depth exceeding the chain clamps to the
// client-most entry, never to an out-of-range index.
func (r *Resolver) selectHopIndex(n int) int {
	idx := n - r.config.trustedHops
	if idx < 0 {
		return 0
	}
	return idx
}

func (r *Resolver) resolveForwarded(ctx context.Context, hops []forwardedHop) (ResolvedOrigin, error) {
	idx := r.selectHopIndex(len(hops))
	hop := hops[idx]

	if hop.badReason != "" {
		return ResolvedOrigin{}, r.malformedSelectedHop(ctx, SourceForwarded, idx, "", hop.badReason)
	}
	if !hop.hasFor {
		return ResolvedOrigin{}, r.malformedSelectedHop(ctx, SourceForwarded, idx, "", "missing for parameter")
	}

	addr, port, reason := parseAddrToken(hop.forToken)
	if reason != "" {
		return ResolvedOrigin{}, r.malformedSelectedHop(ctx, SourceForwarded, idx, hop.forToken, reason)
	}

	scheme := ""
	if hop.hasProto {
		parsed, ok := parseSchemeToken(hop.proto)
		if !ok {
			return ResolvedOrigin{}, r.malformedSelectedHop(ctx, SourceForwarded, idx, hop.proto, "invalid scheme token")
		}
		scheme = parsed
	}

	r.config.metrics.RecordResolutionSuccess(SourceForwarded)
	return ResolvedOrigin{
		Addr:     normalizeAddr(addr),
		Port:     port,
		Scheme:   scheme,
		HopIndex: idx,
		Source:   SourceForwarded,
	}, nil
}

func (r *Resolver) resolveForwardedFor(ctx context.Context, tokens []string, proto string) (ResolvedOrigin, error) {
	idx := r.selectHopIndex(len(tokens))

	addr, port, reason := parseAddrToken(tokens[idx])
	if reason != "" {
		return ResolvedOrigin{}, r.malformedSelectedHop(ctx, SourceXForwardedFor, idx, tokens[idx], reason)
	}

	// X-Forwarded-Proto carries a single scheme claim for the whole
	// chain; it applies to whichever hop was selected.
	scheme := ""
	if proto != "" {
		parsed, ok := parseSchemeToken(proto)
		if !ok {
			return ResolvedOrigin{}, r.malformedSelectedHop(ctx, SourceXForwardedFor, idx, proto, "invalid scheme token")
		}
		scheme = parsed
	}

	r.config.metrics.RecordResolutionSuccess(SourceXForwardedFor)
	return ResolvedOrigin{
		Addr:     normalizeAddr(addr),
		Port:     port,
		Scheme:   scheme,
		HopIndex: idx,
		Source:   SourceXForwardedFor,
	}, nil
}

// resolvePeerFallback handles trust depth > 0 with no usable header. The
// implicit server hop contributes the verified peer address; callers that
// insist on header evidence get ErrMissingAndUntrusted instead.
func (r *Resolver) resolvePeerFallback(ctx context.Context, peer netip.AddrPort) (ResolvedOrigin, error) {
	if r.config.requireProxyHeaders {
		r.config.metrics.RecordSecurityEvent(securityEventMissingHeaders)
		r.config.logger.WarnContext(ctx, "no usable proxy header and peer fallback disabled",
			"event", securityEventMissingHeaders,
			"peer", peer.Addr().String(),
		)
		r.config.metrics.RecordResolutionFailure(SourcePeer)
		return ResolvedOrigin{}, &ResolutionError{
			Err:    ErrMissingAndUntrusted,
			Source: SourcePeer,
		}
	}

	r.config.metrics.RecordResolutionSuccess(SourcePeer)
	return peerOrigin(peer), nil
}

func (r *Resolver) malformedSelectedHop(ctx context.Context, source string, idx int, token, reason string) error {
	r.config.metrics.RecordSecurityEvent(securityEventMalformedSelectedHop)
	r.config.logger.WarnContext(ctx, "malformed token at selected hop",
		"event", securityEventMalformedSelectedHop,
		"source", source,
		"hop_index", idx,
		"reason", reason,
	)
	r.config.metrics.RecordResolutionFailure(source)

	return &MalformedHopError{
		ResolutionError: ResolutionError{
			Err:    ErrMalformedSelectedHop,
			Source: source,
		},
		HopIndex: idx,
		Token:    token,
		Reason:   reason,
	}
}

func (r *Resolver) chainTooLong(ctx context.Context, source string, err error) error {
	var chainErr *ChainTooLongError
	if errors.As(err, &chainErr) {
		r.config.logger.WarnContext(ctx, "proxy chain exceeds configured maximum length",
			"event", securityEventChainTooLong,
			"source", source,
			"chain_length", chainErr.ChainLength,
			"max_length", chainErr.MaxLength,
		)
	}

	r.config.metrics.RecordSecurityEvent(securityEventChainTooLong)
	r.config.metrics.RecordResolutionFailure(source)
	return err
}

func peerOrigin(peer netip.AddrPort) ResolvedOrigin {
	return ResolvedOrigin{
		Addr:     normalizeAddr(peer.Addr()),
		Port:     peer.Port(),
		HopIndex: 0,
		Source:   SourcePeer,
	}
}

func chainHasHeaders(chain RawHeaderChain) bool {
	return len(chain.Forwarded) > 0 || len(chain.ForwardedFor) > 0 || chain.ForwardedProto != ""
}
