package origin

import (
	"context"
	"net/netip"
	"strings"
	"sync"
	"testing"
)

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()

	addr, err := netip.ParseAddr(s)
	if err != nil {
		t.Fatalf("invalid test address %q: %v", s, err)
	}
	return addr
}

func mustAddrPort(t *testing.T, s string) netip.AddrPort {
	t.Helper()

	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		t.Fatalf("invalid test address:port %q: %v", s, err)
	}
	return ap
}

func mustPrefixes(t *testing.T, cidrs ...string) []netip.Prefix {
	t.Helper()

	prefixes, err := ParsePrefixes(cidrs...)
	if err != nil {
		t.Fatalf("invalid test CIDRs %v: %v", cidrs, err)
	}
	return prefixes
}

func errorContains(t *testing.T, err error, substr string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("error %q does not contain %q", err.Error(), substr)
	}
}

// recordingLogger captures warning messages for assertions.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) WarnContext(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// recordingMetrics counts outcomes per source and events per label.
type recordingMetrics struct {
	mu        sync.Mutex
	successes map[string]int
	failures  map[string]int
	events    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		successes: make(map[string]int),
		failures:  make(map[string]int),
		events:    make(map[string]int),
	}
}

func (m *recordingMetrics) RecordResolutionSuccess(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes[source]++
}

func (m *recordingMetrics) RecordResolutionFailure(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[source]++
}

func (m *recordingMetrics) RecordSecurityEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event]++
}

func (m *recordingMetrics) successCount(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successes[source]
}

func (m *recordingMetrics) failureCount(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[source]
}

func (m *recordingMetrics) eventCount(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[event]
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()

	resolver, err := New(opts...)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return resolver
}
