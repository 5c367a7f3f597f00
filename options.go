package origin

import (
	"fmt"
	"net/netip"
)

// TrustedHops sets how many proxy hops, counted from the server inward,
// are believed. Zero trusts nothing: resolution always returns the direct
// peer and never consults a header.
func TrustedHops(hops int) Option {
	return func(c *Config) error {
		c.trustedHops = hops
		return nil
	}
}

// HeaderPreference sets which header sources are consulted and in what
// precedence. Accepted names are SourceForwarded and SourceXForwardedFor
// (header-style spellings such as "X-Forwarded-For" are canonicalized).
//
// The X-Forwarded-For source implies its X-Forwarded-Proto companion for
// the scheme claim.
func HeaderPreference(sources ...string) Option {
	sources = cloneStrings(sources)

	return func(c *Config) error {
		resolved := make([]string, 0, len(sources))
		for _, source := range sources {
			name, ok := canonicalSourceName(source)
			if !ok {
				return fmt.Errorf("unknown header source %q", source)
			}
			resolved = append(resolved, name)
		}

		c.headerPreference = resolved
		return nil
	}
}

// RequireProxyHeaders disables the direct-peer fallback when trust depth
// is non-zero: a request carrying no usable proxy header then fails with
// ErrMissingAndUntrusted instead of resolving to the peer.
func RequireProxyHeaders() Option {
	return func(c *Config) error {
		c.requireProxyHeaders = true
		return nil
	}
}

// MaxChainLength sets the maximum number of hops accepted in proxy chains.
func MaxChainLength(max int) Option {
	return func(c *Config) error {
		c.maxChainLength = max
		return nil
	}
}

// TrustedPeerPrefixes gates header consumption on the transport peer:
// headers are only consulted when the direct peer falls inside one of the
// given prefixes. Requests from other peers resolve to the peer address
// as if no header were present.
//
// The gate inspects the transport peer only, never header content, so it
// cannot influence which chain position is selected.
func TrustedPeerPrefixes(prefixes ...netip.Prefix) Option {
	prefixes = clonePrefixes(prefixes)

	return func(c *Config) error {
		normalized, err := normalizePeerPrefixes(prefixes)
		if err != nil {
			return err
		}

		appendTrustedPeerPrefixes(c, normalized...)
		return nil
	}
}

// TrustLoopbackPeers adds loopback ranges to the trusted peer prefixes,
// for apps behind a reverse proxy on the same host.
func TrustLoopbackPeers() Option {
	return func(c *Config) error {
		appendTrustedPeerPrefixes(c, loopbackPeerPrefixes...)
		return nil
	}
}

// TrustPrivatePeers adds private-network ranges to the trusted peer
// prefixes, for VM and internal network deployments.
func TrustPrivatePeers() Option {
	return func(c *Config) error {
		appendTrustedPeerPrefixes(c, privatePeerPrefixes...)
		return nil
	}
}

// WithLogger sets the logger implementation used for warning events.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics sets a concrete metrics implementation.
//
// If previously configured, a metrics factory is disabled.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) error {
		c.metrics = metrics
		c.metricsFactory = nil
		c.useMetricsFactory = false
		return nil
	}
}

// WithMetricsFactory configures a lazy metrics constructor.
//
// The factory is invoked only for the final winning metrics option after
// option validation succeeds.
func WithMetricsFactory(factory func() (Metrics, error)) Option {
	return func(c *Config) error {
		if factory == nil {
			return fmt.Errorf("metrics factory cannot be nil")
		}

		c.metricsFactory = factory
		c.useMetricsFactory = true
		return nil
	}
}
