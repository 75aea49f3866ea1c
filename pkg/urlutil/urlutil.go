package urlutil

import (
	"errors"
	"fmt"
	"net/url"
)

var ErrUnsupportedScheme = errors.New("unsupported scheme")
var ErrMissingHost = errors.New("missing host")

// ParseFetchable parses rawURL and checks that it can be requested over
// HTTP(S). The URL itself is not rewritten.
func ParseFetchable(rawURL string) (url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return url.URL{}, err
	}
	scheme := lowerASCII(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return url.URL{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return url.URL{}, ErrMissingHost
	}
	return *parsed, nil
}

// HostKey returns a deterministic per-host key for a URL.
//
// The key is the lowercased host with the scheme's default port
// (:80 for http, :443 for https) omitted, so equivalent spellings of
// the same origin share a key.
func HostKey(u url.URL) string {
	scheme := lowerASCII(u.Scheme)
	host := lowerASCII(u.Hostname())
	port := u.Port()

	if port == "" ||
		(scheme == "http" && port == "80") ||
		(scheme == "https" && port == "443") {
		return host
	}
	return host + ":" + port
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
