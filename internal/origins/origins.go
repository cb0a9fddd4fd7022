// Package origins parses and matches the allowed-origin list fed to the
// CORS middleware.
//
// Entries are normalized the way browsers serialize the Origin header:
// lowercase scheme and host, ASCII (punycode) host, no default port and no
// trailing slash. Matching is exact membership after the same
// normalization is applied to the request's origin.
package origins

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Wildcard allows every origin. It must be the only entry.
const Wildcard = "*"

// Null is the serialized opaque origin. It is only allowed when listed.
const Null = "null"

// Policy is an immutable allow-list of origins.
type Policy struct {
	list     []string
	set      map[string]struct{}
	allowAll bool
}

// Parse builds a Policy from raw entries, typically the comma-separated
// values of ALLOWED_ORIGINS.
func Parse(entries []string) (*Policy, error) {
	p := &Policy{set: make(map[string]struct{})}

	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if raw == Wildcard {
			p.allowAll = true
			continue
		}
		o := Null
		if !strings.EqualFold(raw, Null) {
			var err error
			if o, err = Normalize(raw); err != nil {
				return nil, err
			}
		}
		if _, dup := p.set[o]; dup {
			continue
		}
		p.set[o] = struct{}{}
		p.list = append(p.list, o)
	}

	if p.allowAll && len(p.list) > 0 {
		return nil, fmt.Errorf("origin %q must be the only entry", Wildcard)
	}
	if !p.allowAll && len(p.list) == 0 {
		return nil, fmt.Errorf("no allowed origins configured")
	}
	return p, nil
}

// Allows reports whether a request carrying the given Origin header value
// may be granted CORS access.
func (p *Policy) Allows(origin string) bool {
	if p.allowAll {
		return true
	}
	if origin == "" {
		return false
	}
	if _, ok := p.set[origin]; ok {
		return true
	}
	// "null" is sent for opaque origins (sandboxed iframes, file://).
	if origin == Null {
		return false
	}
	o, err := Normalize(origin)
	if err != nil {
		return false
	}
	_, ok := p.set[o]
	return ok
}

// AllowsAll reports whether the policy is the wildcard policy.
func (p *Policy) AllowsAll() bool { return p.allowAll }

// List returns the normalized origins in configuration order.
func (p *Policy) List() []string {
	if p.allowAll {
		return []string{Wildcard}
	}
	out := make([]string, len(p.list))
	copy(out, p.list)
	return out
}

// Normalize returns the serialized form of a web origin
// (scheme "://" host [":" port]) or an error naming the offending value.
func Normalize(raw string) (string, error) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "/")

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", raw, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("invalid origin %q: scheme must be http or https", raw)
	}
	if u.User != nil {
		return "", fmt.Errorf("invalid origin %q: userinfo is not allowed", raw)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return "", fmt.Errorf("invalid origin %q: path, query and fragment are not allowed", raw)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("invalid origin %q: missing host", raw)
	}
	port := u.Port()

	switch addr, err := netip.ParseAddr(host); {
	case err != nil:
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("invalid origin %q: %w", raw, err)
		}
		host = strings.ToLower(ascii)
	case addr.Is4():
		host = addr.String()
	default:
		if addr.Zone() != "" {
			return "", fmt.Errorf("invalid origin %q: zone identifiers are not allowed", raw)
		}
		host = "[" + serializeIPv6(addr) + "]"
	}

	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		return scheme + "://" + host + ":" + port, nil
	}
	return scheme + "://" + host, nil
}

// serializeIPv6 writes an IPv6 address the way browsers do in the Origin
// header: compressed lowercase hex, with IPv4-mapped addresses kept in hex
// rather than dotted form.
func serializeIPv6(addr netip.Addr) string {
	if !addr.Is4In6() {
		return addr.String()
	}
	b := addr.As16()
	return fmt.Sprintf("::ffff:%x:%x", uint16(b[12])<<8|uint16(b[13]), uint16(b[14])<<8|uint16(b[15]))
}
