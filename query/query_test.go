package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuilderEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func() *Builder
		want  string
	}{
		{
			name:  "empty",
			build: func() *Builder { return &Builder{} },
			want:  "",
		},
		{
			name: "insertion order preserved",
			build: func() *Builder {
				return new(Builder).Add("b", "2").Add("a", "1")
			},
			want: "b=2&a=1",
		},
		{
			name: "duplicate keys kept",
			build: func() *Builder {
				return new(Builder).Add("k", "1").Add("k", "2")
			},
			want: "k=1&k=2",
		},
		{
			name: "values escaped",
			build: func() *Builder {
				return new(Builder).Add("q", "a b&c=d")
			},
			want: "q=a+b%26c%3Dd",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.build().Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuilderSorted(t *testing.T) {
	t.Parallel()

	b := NewBuilder(
		Pair{Key: "c", Value: "3"},
		Pair{Key: "a", Value: "1"},
		Pair{Key: "b", Value: "2"},
	)

	if got, want := b.Sorted().Encode(), "a=1&b=2&c=3"; got != want {
		t.Errorf("Sorted().Encode() = %q, want %q", got, want)
	}

	// Sorting must not disturb the original builder.
	if got, want := b.Encode(), "c=3&a=1&b=2"; got != want {
		t.Errorf("Encode() after Sorted() = %q, want %q", got, want)
	}
}

func TestMD5SignerSign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		signer  MD5Signer
		encoded string
		want    string
	}{
		{
			name:    "suffix salt",
			signer:  MD5Signer{SuffixSalt: "0123456789abcdef"},
			encoded: "test1=1&test2=2",
			want:    "test1=1&test2=2&sign=cc4f5844a6a1893a88d648cebba5462f",
		},
		{
			name:    "custom key",
			signer:  MD5Signer{Key: "sig", SuffixSalt: "0123456789abcdef"},
			encoded: "test1=1&test2=2",
			want:    "test1=1&test2=2&sig=cc4f5844a6a1893a88d648cebba5462f",
		},
		{
			name:    "empty query still signed",
			signer:  MD5Signer{},
			encoded: "",
			want:    "sign=d41d8cd98f00b204e9800998ecf8427e",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.signer.Sign(tt.encoded); got != tt.want {
				t.Errorf("Sign(%q) = %q, want %q", tt.encoded, got, tt.want)
			}
		})
	}
}

func TestSignedEncodeSortsFirst(t *testing.T) {
	t.Parallel()

	b := new(Builder).Add("test2", "2").Add("test1", "1")
	signer := MD5Signer{SuffixSalt: "0123456789abcdef"}

	want := "test1=1&test2=2&sign=cc4f5844a6a1893a88d648cebba5462f"
	if got := b.SignedEncode(signer); got != want {
		t.Errorf("SignedEncode() = %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  []Pair
	}{
		{
			name:  "empty",
			query: "",
			want:  nil,
		},
		{
			name:  "basic pairs in order",
			query: "b=2&a=1",
			want:  []Pair{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}},
		},
		{
			name:  "bare key",
			query: "flag",
			want:  []Pair{{Key: "flag", Value: ""}},
		},
		{
			name:  "empty segments skipped",
			query: "a=1&&b=2&",
			want:  []Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
		},
		{
			name:  "percent decoding",
			query: "q=a+b%26c",
			want:  []Pair{{Key: "q", Value: "a b&c"}},
		},
		{
			name:  "invalid escape kept raw",
			query: "q=%zz",
			want:  []Pair{{Key: "q", Value: "%zz"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Parse(tt.query)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	b := new(Builder).Add("a", "1").Add("b", "x y").Add("a", "2")
	parsed := Parse(b.Encode())

	rebuilt := NewBuilder(parsed...)
	if got, want := rebuilt.Encode(), b.Encode(); got != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}
