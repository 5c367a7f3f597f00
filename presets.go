package origin

// PresetDirectConnection configures resolution for direct client-to-app
// traffic.
//
// Trust depth is zero: the transport peer is always the resolved origin
// and proxy headers are never consulted.
func PresetDirectConnection() Option {
	return TrustedHops(0)
}

// PresetSingleReverseProxy configures resolution for apps behind exactly
// one reverse proxy (for example NGINX in front of the app).
//
// It trusts one hop and consults the X-Forwarded-For / X-Forwarded-Proto
// pair, the headers such proxies set by default.
func PresetSingleReverseProxy() Option {
	return func(c *Config) error {
		return applyOptions(c,
			TrustedHops(1),
			HeaderPreference(SourceXForwardedFor),
		)
	}
}

// PresetFrontedCDN configures resolution for apps behind a CDN or edge
// layer feeding an internal reverse proxy.
//
// It trusts two hops and prefers the RFC 7239 Forwarded header, falling
// back to the X-Forwarded-* pair for intermediaries that do not emit it.
func PresetFrontedCDN() Option {
	return func(c *Config) error {
		return applyOptions(c,
			TrustedHops(2),
			HeaderPreference(SourceForwarded, SourceXForwardedFor),
		)
	}
}
