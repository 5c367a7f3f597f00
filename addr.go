package origin

import (
	"net/netip"
	"strconv"
	"strings"
)

// parseAddrToken parses one chain token into an address with optional port.
//
// Accepted forms follow conventional textual address notation:
//   - "203.0.113.1"
//   - "203.0.113.1:8080"
//   - "2001:db8::1" (address only; an unbracketed IPv6 literal cannot
//     carry a port)
//   - "[2001:db8::1]" and "[2001:db8::1]:8080"
//
// Obfuscated and unknown identifiers from RFC 7239 ("unknown", "_hidden")
// are rejected: resolution must never produce a placeholder address. The
// reason string feeds MalformedHopError.
func parseAddrToken(token string) (addr netip.Addr, port uint16, reason string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return netip.Addr{}, 0, "empty token"
	}

	if strings.EqualFold(token, "unknown") {
		return netip.Addr{}, 0, "unknown identifier"
	}
	if token[0] == '_' {
		return netip.Addr{}, 0, "obfuscated identifier"
	}

	if token[0] == '[' {
		return parseBracketedToken(token)
	}

	switch strings.Count(token, ":") {
	case 0:
		addr, err := netip.ParseAddr(token)
		if err != nil {
			return netip.Addr{}, 0, "not an IP literal"
		}
		return addr, 0, ""
	case 1:
		host, portStr, ok := strings.Cut(token, ":")
		if !ok {
			return netip.Addr{}, 0, "not an IP literal"
		}

		addr, err := netip.ParseAddr(host)
		if err != nil || !addr.Is4() {
			return netip.Addr{}, 0, "not an IP literal"
		}

		port, reason := parsePort(portStr)
		if reason != "" {
			return netip.Addr{}, 0, reason
		}
		return addr, port, ""
	default:
		// Unbracketed IPv6: valid as address only. A port would be
		// indistinguishable from a hextet, so bracketing is required.
		addr, err := netip.ParseAddr(token)
		if err != nil {
			return netip.Addr{}, 0, "not an IP literal"
		}
		return addr, 0, ""
	}
}

func parseBracketedToken(token string) (netip.Addr, uint16, string) {
	end := strings.IndexByte(token, ']')
	if end < 0 {
		return netip.Addr{}, 0, "unterminated bracket"
	}

	addr, err := netip.ParseAddr(token[1:end])
	if err != nil {
		return netip.Addr{}, 0, "not an IP literal"
	}

	rest := token[end+1:]
	if rest == "" {
		return addr, 0, ""
	}

	if rest[0] != ':' {
		return netip.Addr{}, 0, "trailing garbage after bracket"
	}

	port, reason := parsePort(rest[1:])
	if reason != "" {
		return netip.Addr{}, 0, reason
	}
	return addr, port, ""
}

func parsePort(s string) (uint16, string) {
	if s == "" {
		return 0, "empty port"
	}

	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, "invalid port"
	}
	return uint16(port), ""
}

// parseSchemeToken validates a forwarded scheme claim and lowercases it.
//
// Accepted characters are printable ASCII letters, digits, '+', '-' and
// '.'. Unrecognized but well-formed tokens are preserved rather than
// rejected, so schemes beyond http/https pass through intact.
func parseSchemeToken(s string) (string, bool) {
	if s == "" {
		return "", false
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '+' || ch == '-' || ch == '.':
		default:
			return "", false
		}
	}

	return strings.ToLower(s), true
}

// parsePeer parses a transport-level peer address as found in
// http.Request.RemoteAddr ("203.0.113.1:4711", "[::1]:4711", or a bare
// address for exotic transports).
func parsePeer(remoteAddr string) (netip.AddrPort, bool) {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap, true
	}

	if addr, err := netip.ParseAddr(remoteAddr); err == nil {
		return netip.AddrPortFrom(addr, 0), true
	}

	return netip.AddrPort{}, false
}

func normalizeAddr(addr netip.Addr) netip.Addr {
	if addr.Is4In6() {
		return addr.Unmap()
	}
	return addr
}
