// Package query builds, signs and parses URL query strings.
//
// Unlike net/url.Values, Builder preserves insertion order, which
// matters for APIs that sign the literal query string. MD5Signer
// implements the common sorted-params-plus-salt signing convention.
package query

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Pair is a single key/value parameter.
type Pair struct {
	Key   string
	Value string
}

// Builder accumulates query parameters in insertion order.
//
// The zero value is ready to use.
type Builder struct {
	pairs []Pair
}

// NewBuilder creates a Builder pre-populated with the given pairs.
func NewBuilder(pairs ...Pair) *Builder {
	return &Builder{pairs: append([]Pair(nil), pairs...)}
}

// Add appends a parameter, keeping earlier entries in place. Duplicate
// keys are allowed.
func (b *Builder) Add(key, value string) *Builder {
	b.pairs = append(b.pairs, Pair{Key: key, Value: value})
	return b
}

// Len reports the number of accumulated parameters.
func (b *Builder) Len() int {
	return len(b.pairs)
}

// Pairs returns a copy of the accumulated parameters in insertion order.
func (b *Builder) Pairs() []Pair {
	return append([]Pair(nil), b.pairs...)
}

// Sorted returns a new Builder with the parameters sorted by key,
// ties broken by value. The receiver is unchanged.
func (b *Builder) Sorted() *Builder {
	sorted := b.Pairs()
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Key != sorted[j].Key {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Value < sorted[j].Value
	})

	return &Builder{pairs: sorted}
}

// Encode renders the parameters as an application/x-www-form-urlencoded
// query string in insertion order.
func (b *Builder) Encode() string {
	var sb strings.Builder
	for i, pair := range b.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.Value))
	}
	return sb.String()
}

// Signer computes a signature parameter over an encoded query string.
type Signer interface {
	// Sign returns the signed query string, signature parameter
	// included.
	Sign(encoded string) string
}

// MD5Signer signs the sorted, encoded query string with a salted MD5
// digest and appends it as an extra parameter.
type MD5Signer struct {
	// Key is the signature parameter name. Empty means "sign".
	Key string
	// PrefixSalt is prepended to the encoded string before hashing.
	PrefixSalt string
	// SuffixSalt is appended to the encoded string before hashing.
	SuffixSalt string
}

// Sign implements Signer.
func (s MD5Signer) Sign(encoded string) string {
	key := s.Key
	if key == "" {
		key = "sign"
	}

	sum := md5.Sum([]byte(s.PrefixSalt + encoded + s.SuffixSalt))
	digest := hex.EncodeToString(sum[:])

	if encoded == "" {
		return key + "=" + digest
	}
	return encoded + "&" + key + "=" + digest
}

// SignedEncode sorts the parameters, encodes them and signs the result.
func (b *Builder) SignedEncode(signer Signer) string {
	return signer.Sign(b.Sorted().Encode())
}

// Parse splits a query string into pairs, preserving order.
//
// Parsing is lenient: bare keys produce empty values, empty segments
// are skipped, and values that fail percent-decoding are kept raw.
func Parse(query string) []Pair {
	var pairs []Pair
	for _, segment := range strings.Split(query, "&") {
		if segment == "" {
			continue
		}

		key, value, _ := strings.Cut(segment, "=")
		pairs = append(pairs, Pair{
			Key:   decodeLenient(key),
			Value: decodeLenient(value),
		})
	}
	return pairs
}

func decodeLenient(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
