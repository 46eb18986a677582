package server

import (
	"net"
	"net/url"
	"strings"
)

// originPolicy decides which browser origins may reach the API. Requests
// without an Origin header come from non-browser clients and are admitted.
type originPolicy struct {
	extra map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{extra: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o = normalizeOrigin(o); o != "" {
			p.extra[o] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return true
	}
	if _, ok := p.extra[normalizeOrigin(origin)]; ok {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return isLoopback(u.Hostname())
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
}
