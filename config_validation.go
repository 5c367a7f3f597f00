package origin

import (
	"fmt"
	"reflect"
)

func (c *Config) validate() error {
	if c.trustedHops < 0 {
		return fmt.Errorf("trustedHops must be >= 0, got %d", c.trustedHops)
	}
	if c.maxChainLength <= 0 {
		return fmt.Errorf("maxChainLength must be > 0, got %d", c.maxChainLength)
	}
	if len(c.headerPreference) == 0 {
		return fmt.Errorf("at least one header source required in preference list")
	}

	seen := make(map[string]struct{}, len(c.headerPreference))
	for _, sourceName := range c.headerPreference {
		if _, ok := seen[sourceName]; ok {
			return fmt.Errorf("duplicate source %q in preference list", sourceName)
		}
		seen[sourceName] = struct{}{}
	}

	if c.requireProxyHeaders && c.trustedHops == 0 {
		return fmt.Errorf("RequireProxyHeaders needs TrustedHops > 0; with zero trusted hops headers are never consulted")
	}

	if isNilLogger(c.logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNilMetrics(c.metrics) {
		return fmt.Errorf("metrics cannot be nil")
	}
	return nil
}

func isNilLogger(logger Logger) bool {
	return isNilInterface(logger)
}

func isNilMetrics(metrics Metrics) bool {
	return isNilInterface(metrics)
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
