package origin

import (
	"fmt"
	"strings"
)

// forwardedHop is one parsed Forwarded element (one hop's parameter set).
//
// Parameter-level malformation is recorded in badReason instead of being
// raised, so that a broken unselected hop never fails resolution. The hop
// keeps its chain position either way.
type forwardedHop struct {
	forToken string
	hasFor   bool

	proto    string
	hasProto bool

	badReason string
}

// parseForwardedChain parses one or more Forwarded header values into a
// client-first hop list.
//
// Header values and elements are processed in wire order. A failure of the
// quote-aware segmentation (an unterminated quote or escape) means the
// value is not a well-formed sequence of parameter sets and the whole
// source is unusable; that is the only error returned besides the chain
// length bound. Malformation confined to a single element is deferred via
// forwardedHop.badReason.
func parseForwardedChain(values []string, maxLength int) ([]forwardedHop, error) {
	if len(values) == 0 {
		return nil, nil
	}

	hops := make([]forwardedHop, 0, typicalChainCapacity)

	for _, value := range values {
		err := scanForwardedSegments(value, ',', func(element string) error {
			if len(hops) >= maxLength {
				return &ChainTooLongError{
					ResolutionError: ResolutionError{
						Err:    ErrChainTooLong,
						Source: SourceForwarded,
					},
					ChainLength: len(hops) + 1,
					MaxLength:   maxLength,
				}
			}

			hops = append(hops, parseForwardedElement(element))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return hops, nil
}

// parseForwardedElement parses a single Forwarded element into a hop.
//
// Parameter names are case-insensitive. Parameters other than for and
// proto are allowed and ignored. Duplicate for or proto parameters within
// one element, missing '=' separators and empty keys or values are
// recorded as hop-level malformation.
func parseForwardedElement(element string) forwardedHop {
	var hop forwardedHop

	err := scanForwardedSegments(element, ';', func(param string) error {
		eq := strings.IndexByte(param, '=')
		if eq <= 0 {
			return fmt.Errorf("invalid forwarded parameter %q", param)
		}

		key := strings.TrimSpace(param[:eq])
		value := strings.TrimSpace(param[eq+1:])
		if key == "" {
			return fmt.Errorf("empty parameter key in %q", param)
		}
		if value == "" {
			return fmt.Errorf("empty parameter value for %q", key)
		}

		switch {
		case strings.EqualFold(key, "for"):
			if hop.hasFor {
				return fmt.Errorf("duplicate for parameter in element %q", element)
			}

			parsed, parseErr := parseForwardedValue(value)
			if parseErr != nil {
				return parseErr
			}

			hop.forToken = parsed
			hop.hasFor = true
		case strings.EqualFold(key, "proto"):
			if hop.hasProto {
				return fmt.Errorf("duplicate proto parameter in element %q", element)
			}

			parsed, parseErr := parseForwardedValue(value)
			if parseErr != nil {
				return parseErr
			}

			hop.proto = parsed
			hop.hasProto = true
		}

		return nil
	})
	if err != nil {
		hop.badReason = err.Error()
	}

	return hop
}

// scanForwardedSegments splits value by delimiter while respecting quoted
// segments and escape sequences inside quoted strings.
func scanForwardedSegments(value string, delimiter byte, onSegment func(string) error) error {
	start := 0
	inQuotes := false
	escaped := false

	for i := 0; i <= len(value); i++ {
		if i == len(value) {
			if inQuotes {
				return fmt.Errorf("unterminated quoted string in %q", value)
			}
			if escaped {
				return fmt.Errorf("unterminated escape in %q", value)
			}
		} else {
			ch := value[i]

			if escaped {
				escaped = false
				continue
			}

			if ch == '\\' && inQuotes {
				escaped = true
				continue
			}

			if ch == '"' {
				inQuotes = !inQuotes
				continue
			}

			if ch != delimiter || inQuotes {
				continue
			}
		}

		segment := strings.TrimSpace(value[start:i])
		if segment != "" {
			if err := onSegment(segment); err != nil {
				return err
			}
		}

		start = i + 1
	}

	return nil
}

// parseForwardedValue parses a Forwarded parameter value.
//
// The value may be an unquoted token or a quoted string. For quoted
// strings, escaping is handled by unquoteForwardedValue.
func parseForwardedValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty parameter value")
	}

	if value[0] == '"' {
		unquoted, err := unquoteForwardedValue(value)
		if err != nil {
			return "", err
		}
		value = strings.TrimSpace(unquoted)
	}

	if value == "" {
		return "", fmt.Errorf("empty parameter value")
	}

	return value, nil
}

// unquoteForwardedValue removes surrounding quotes from a Forwarded quoted
// string and resolves backslash escapes.
func unquoteForwardedValue(value string) (string, error) {
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return "", fmt.Errorf("invalid quoted string %q", value)
	}

	inner := value[1 : len(value)-1]
	if strings.IndexByte(inner, '\\') == -1 {
		if strings.IndexByte(inner, '"') != -1 {
			return "", fmt.Errorf("unexpected quote in %q", value)
		}

		return inner, nil
	}

	var b strings.Builder
	b.Grow(len(inner))
	escaped := false

	for i := 1; i < len(value)-1; i++ {
		ch := value[i]

		if escaped {
			b.WriteByte(ch)
			escaped = false
			continue
		}

		if ch == '\\' {
			escaped = true
			continue
		}

		if ch == '"' {
			return "", fmt.Errorf("unexpected quote in %q", value)
		}

		b.WriteByte(ch)
	}

	if escaped {
		return "", fmt.Errorf("unterminated escape in %q", value)
	}

	return b.String(), nil
}
