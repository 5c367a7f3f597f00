package origin

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChainFromHeader(t *testing.T) {
	t.Parallel()

	t.Run("nil header", func(t *testing.T) {
		t.Parallel()

		got := ChainFromHeader(nil)
		if diff := cmp.Diff(RawHeaderChain{}, got); diff != "" {
			t.Errorf("ChainFromHeader(nil) mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("populated header", func(t *testing.T) {
		t.Parallel()

		h := http.Header{}
		h.Add("Forwarded", "for=192.0.2.5")
		h.Add("Forwarded", "for=10.0.0.2")
		h.Add("X-Forwarded-For", "203.0.113.1, 10.0.0.2")
		h.Set("X-Forwarded-Proto", "https")
		h.Set("User-Agent", "test")

		want := RawHeaderChain{
			Forwarded:      []string{"for=192.0.2.5", "for=10.0.0.2"},
			ForwardedFor:   []string{"203.0.113.1, 10.0.0.2"},
			ForwardedProto: "https",
		}

		got := ChainFromHeader(h)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ChainFromHeader() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("case-insensitive header names", func(t *testing.T) {
		t.Parallel()

		req, err := http.NewRequest(http.MethodGet, "http://app.example/", nil)
		if err != nil {
			t.Fatalf("NewRequest: %v", err)
		}
		req.Header.Set("x-forwarded-for", "203.0.113.1")
		req.Header.Set("x-forwarded-proto", "https")

		got := ChainFromHeader(req.Header)
		want := RawHeaderChain{
			ForwardedFor:   []string{"203.0.113.1"},
			ForwardedProto: "https",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ChainFromHeader() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParseForwardedForTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			name:   "absent header",
			values: nil,
			want:   nil,
		},
		{
			name:   "single value",
			values: []string{"203.0.113.1"},
			want:   []string{"203.0.113.1"},
		},
		{
			name:   "comma separated with spaces",
			values: []string{"203.0.113.1, 10.0.0.2"},
			want:   []string{"203.0.113.1", "10.0.0.2"},
		},
		{
			name:   "multiple header lines concatenated in order",
			values: []string{"203.0.113.1", "10.0.0.2, 10.0.0.3"},
			want:   []string{"203.0.113.1", "10.0.0.2", "10.0.0.3"},
		},
		{
			name:   "empty entries preserved as zero-length tokens",
			values: []string{"203.0.113.1,, 10.0.0.2"},
			want:   []string{"203.0.113.1", "", "10.0.0.2"},
		},
		{
			name:   "trailing comma preserved",
			values: []string{"203.0.113.1,"},
			want:   []string{"203.0.113.1", ""},
		},
		{
			name:   "leading comma preserved",
			values: []string{",203.0.113.1"},
			want:   []string{"", "203.0.113.1"},
		},
		{
			name:   "single empty value is one empty token",
			values: []string{""},
			want:   []string{""},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseForwardedForTokens(tt.values, DefaultMaxChainLength)
			if err != nil {
				t.Fatalf("parseForwardedForTokens(%v) unexpected error: %v", tt.values, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseForwardedForTokens(%v) mismatch (-want +got):\n%s", tt.values, diff)
			}
		})
	}
}

func TestParseForwardedForTokensTooLong(t *testing.T) {
	t.Parallel()

	_, err := parseForwardedForTokens([]string{"10.0.0.1, 10.0.0.2, 10.0.0.3"}, 2)
	if !errors.Is(err, ErrChainTooLong) {
		t.Fatalf("expected ErrChainTooLong, got %v", err)
	}

	var chainErr *ChainTooLongError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected *ChainTooLongError, got %T", err)
	}
	if chainErr.SourceName() != SourceXForwardedFor {
		t.Errorf("SourceName() = %q, want %q", chainErr.SourceName(), SourceXForwardedFor)
	}
}
