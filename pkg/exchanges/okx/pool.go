package okx

import (
	"net/url"
	"os"
	"strings"
	"sync"
)

// fallbackHost is tried in addition to the primary host. Some networks block
// the 8443 listener (TLS handshake EOF), so 443 is preferred ahead of it.
const fallbackHost = "ws.okx.com"

// endpointPool is an ordered list of connection candidates with a rotation
// cursor. The supervisor advances the cursor by one after each failed attempt
// when more than one candidate exists.
type endpointPool struct {
	mu   sync.Mutex
	urls []string
	idx  int
}

// newEndpointPool builds the candidate pool for a primary URL: host and port
// substitutions of the primary, deduplicated, followed by any URLs from the
// OKX_WEBSOCKET_FALLBACKS environment variable (comma-separated; entries
// that fail to parse or lack a host are ignored).
func newEndpointPool(primary string) *endpointPool {
	p := &endpointPool{}

	if parsed, err := url.Parse(primary); err == nil && parsed.Host != "" {
		hosts := []string{parsed.Hostname()}
		if parsed.Hostname() != fallbackHost {
			hosts = append(hosts, fallbackHost)
		}

		for _, host := range hosts {
			for _, port := range portCandidates(parsed.Scheme, parsed.Port()) {
				candidate := *parsed
				if port == "" {
					candidate.Host = host
				} else {
					candidate.Host = host + ":" + port
				}
				p.add(candidate.String())
			}
		}
	} else {
		p.add(primary)
	}

	for _, entry := range strings.Split(os.Getenv(envWebsocketFallbacks), ",") {
		p.add(entry)
	}

	if len(p.urls) == 0 {
		p.urls = append(p.urls, primary)
	}
	return p
}

// portCandidates returns the ports to try for a scheme/port combination, in
// preference order. An empty string means the scheme default.
func portCandidates(scheme, port string) []string {
	if scheme == "wss" {
		switch port {
		case "8443":
			return []string{"", "443", "8443"}
		case "", "443":
			return []string{"", "443"}
		}
	}
	if port != "" {
		return []string{port, ""}
	}
	return []string{""}
}

// add validates and appends one candidate, skipping blanks, malformed URLs,
// host-less URLs and duplicates.
func (p *endpointPool) add(candidate string) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return
	}
	normalized := parsed.String()
	for _, existing := range p.urls {
		if existing == normalized {
			return
		}
	}
	p.urls = append(p.urls, normalized)
}

// current returns the candidate at the cursor.
func (p *endpointPool) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.urls[p.idx]
}

// advance moves the cursor one position, wrapping around. Pools with a single
// candidate never rotate.
func (p *endpointPool) advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.urls) > 1 {
		p.idx = (p.idx + 1) % len(p.urls)
	}
}

// size returns the number of candidates.
func (p *endpointPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.urls)
}

// candidates returns a copy of the ordered candidate list.
func (p *endpointPool) candidates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.urls))
	copy(out, p.urls)
	return out
}
