package origin

import (
	"fmt"
	"net/netip"
	"strings"
)

const (
	// DefaultMaxChainLength is the maximum number of hops allowed in a
	// proxy chain. This prevents DoS attacks using extremely long header
	// values that could cause excessive memory allocation or CPU usage
	// during parsing. 100 accommodates complex multi-region, multi-CDN
	// setups while still providing protection. Typical proxy chains rarely
	// exceed 5-10 entries.
	DefaultMaxChainLength = 100
)

// Option configures a Resolver.
//
// Construct options using package-provided option builder functions.
type Option func(*Config) error

// Config holds resolver configuration state.
//
// It is mutated by Option functions during construction and is read-only
// afterwards for the life of the Resolver.
type Config struct {
	trustedHops         int
	headerPreference    []string
	requireProxyHeaders bool
	maxChainLength      int

	trustedPeerPrefixes []netip.Prefix
	peerMatch           peerPrefixMatcher

	logger  Logger
	metrics Metrics

	metricsFactory    func() (Metrics, error)
	useMetricsFactory bool
}

var (
	// loopbackPeerPrefixes contains loopback networks used when the app
	// sits behind a reverse proxy running on the same host.
	loopbackPeerPrefixes = []netip.Prefix{
		mustParsePrefix("127.0.0.0/8"),
		mustParsePrefix("::1/128"),
	}

	// privatePeerPrefixes contains private-network ranges commonly used for
	// upstream proxies in VM and internal network deployments.
	privatePeerPrefixes = []netip.Prefix{
		mustParsePrefix("10.0.0.0/8"),
		mustParsePrefix("172.16.0.0/12"),
		mustParsePrefix("192.168.0.0/16"),
		mustParsePrefix("fc00::/7"),
	}
)

func mustParsePrefix(cidr string) netip.Prefix {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in CIDR %q: %v", cidr, err))
	}
	return prefix
}

func defaultConfig() *Config {
	return &Config{
		trustedHops:    0,
		maxChainLength: DefaultMaxChainLength,
		logger:         noopLogger{},
		metrics:        noopMetrics{},
		headerPreference: []string{
			SourceForwarded,
			SourceXForwardedFor,
		},
	}
}

func applyOptions(c *Config, opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

func configFromOptions(opts ...Option) (*Config, error) {
	cfg := defaultConfig()

	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	cfg.peerMatch = buildPeerPrefixMatcher(cfg.trustedPeerPrefixes)

	if cfg.useMetricsFactory && cfg.metricsFactory == nil {
		return nil, fmt.Errorf("metrics factory cannot be nil")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory {
		metrics, err := cfg.metricsFactory()
		if err != nil {
			return nil, err
		}
		if isNilMetrics(metrics) {
			return nil, fmt.Errorf("metrics factory returned nil metrics")
		}
		cfg.metrics = metrics
	}

	return cfg, nil
}

func canonicalSourceName(sourceName string) (string, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(sourceName), "-", "_")) {
	case SourceForwarded:
		return SourceForwarded, true
	case SourceXForwardedFor, "x_forwarded":
		return SourceXForwardedFor, true
	default:
		return "", false
	}
}

func clonePrefixes(prefixes []netip.Prefix) []netip.Prefix {
	if prefixes == nil {
		return nil
	}
	cloned := make([]netip.Prefix, len(prefixes))
	copy(cloned, prefixes)
	return cloned
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func normalizePeerPrefixes(prefixes []netip.Prefix) ([]netip.Prefix, error) {
	normalized := make([]netip.Prefix, 0, len(prefixes))
	for _, prefix := range prefixes {
		if !prefix.IsValid() {
			return nil, fmt.Errorf("invalid trusted peer prefix %q", prefix)
		}
		normalized = append(normalized, prefix.Masked())
	}

	return normalized, nil
}

func mergeUniquePrefixes(existing []netip.Prefix, additions ...netip.Prefix) []netip.Prefix {
	if len(existing) == 0 && len(additions) == 0 {
		return nil
	}

	merged := make([]netip.Prefix, 0, len(existing)+len(additions))
	seen := make(map[netip.Prefix]struct{}, len(existing)+len(additions))

	for _, prefix := range existing {
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		merged = append(merged, prefix)
	}

	for _, prefix := range additions {
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		merged = append(merged, prefix)
	}

	return merged
}

func appendTrustedPeerPrefixes(c *Config, prefixes ...netip.Prefix) {
	if len(prefixes) == 0 {
		return
	}

	c.trustedPeerPrefixes = mergeUniquePrefixes(c.trustedPeerPrefixes, prefixes...)
}
