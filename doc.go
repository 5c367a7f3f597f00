// Package origin resolves the original client address and scheme from
// proxy-supplied HTTP headers (Forwarded, X-Forwarded-For,
// X-Forwarded-Proto) under an explicit hop-count trust policy.
//
// # Features
//
//   - Deterministic trust boundary: the believed chain position is computed
//     from the configured trust depth and the chain length only, never from
//     header content, so attacker-controlled entries cannot shift it
//   - RFC 7239 Forwarded parsing with quoted-string unescaping, plus the
//     X-Forwarded-For / X-Forwarded-Proto pair, in configurable preference
//   - Strict validation of the selected hop: IPv4/IPv6 literals with
//     optional port, bracketed IPv6 when ported; obfuscated or unknown
//     identifiers fail resolution instead of falling through
//   - Safe defaults: trust depth 0 resolves to the transport peer and never
//     consults headers
//   - Optional trusted-peer prefix gating before any header is believed
//   - Optional observability with context-aware logging and pluggable
//     metrics
//   - Type-safe using modern Go netip.Addr
//
// # Basic Usage
//
// A server directly exposed to clients trusts nothing:
//
//	resolver, err := origin.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resolved, err := resolver.ResolveRequest(req)
//	if err != nil {
//	    log.Printf("resolve failed: %v", err)
//	    return
//	}
//
//	fmt.Printf("client: %s scheme: %s\n", resolved.Addr, resolved.Scheme)
//
// # Behind Reverse Proxies
//
// Configure how many intermediary hops, counted from the server inward,
// are believed:
//
//	resolver, err := origin.New(
//	    origin.TrustedHops(1),
//	    origin.HeaderPreference(origin.SourceXForwardedFor),
//	)
//
// Trusting one hop believes the rightmost header entry; trusting N hops
// walks N positions inward from the server end. A trust depth exceeding
// the chain length degrades to the client-most entry, never to an error.
//
// # Peer Gating
//
// Headers can additionally be gated on the transport peer being one of
// your own proxies:
//
//	prefixes, _ := origin.ParsePrefixes("10.0.0.0/8")
//	resolver, _ := origin.New(
//	    origin.TrustedHops(1),
//	    origin.TrustedPeerPrefixes(prefixes...),
//	)
//
// When the peer is outside the ranges, headers are ignored and the peer
// address itself is resolved.
//
// # Observability
//
// The logger receives the request context, allowing trace or span IDs to
// flow through. A Prometheus adapter lives in the prometheus subpackage.
//
//	resolver, err := origin.New(
//	    origin.TrustedHops(2),
//	    origin.WithLogger(slog.Default()),
//	    origin.WithMetrics(metrics),
//	)
//
// # Security Considerations
//
//   - The selected hop is final: a malformed address, quoting or scheme
//     token at that position is an error, never a silently substituted
//     value from another position
//   - Malformation in unselected hops is ignored, bounding the cost of
//     adversarial noise elsewhere in the chain
//   - Chain length limits protect against oversized header values
//   - Empty X-Forwarded-For entries are kept as zero-length tokens so they
//     cannot shift the trusted position
//
// # Thread Safety
//
// Resolver instances are safe for concurrent use. They are typically
// created once at application startup and reused across all requests.
package origin
