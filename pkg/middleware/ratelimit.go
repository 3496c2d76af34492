package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/metrics"
)

// Allower decides whether a client may make another request.
type Allower interface {
	Allow(key string) (bool, time.Duration)
}

// RateLimit throttles requests under prefix per client address, as resolved
// by clients. Other paths, health checks included, pass through. m may be nil.
func RateLimit(limiter Allower, prefix string, clients *ClientResolver, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			ok, wait := limiter.Allow(clients.Addr(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			if m != nil {
				m.RateLimitedTotal.Inc()
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
		})
	}
}

// ClientResolver finds the client address of a request. X-Forwarded-For is
// only read when the peer is a trusted proxy; otherwise any client could pick
// its own rate-limit key.
type ClientResolver struct {
	trusted []netip.Prefix
}

// NewClientResolver trusts the given proxies, each an IP or a CIDR. With no
// proxies the peer address is always the client.
func NewClientResolver(proxies []string) (*ClientResolver, error) {
	c := &ClientResolver{}
	for _, p := range proxies {
		prefix, err := parseProxy(p)
		if err != nil {
			return nil, err
		}
		c.trusted = append(c.trusted, prefix)
	}
	return c, nil
}

func parseProxy(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("parsing trusted proxy %q: %w", s, err)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("parsing trusted proxy %q: %w", s, err)
	}
	return netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()), nil
}

// Addr returns the peer host. When the peer is trusted it walks
// X-Forwarded-For from the right and returns the first hop that is not a
// trusted proxy. A nil resolver trusts nobody.
func (c *ClientResolver) Addr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if c == nil || !c.isTrusted(host) {
		return host
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !c.isTrusted(hop) {
			return hop
		}
		host = hop
	}
	return host
}

func (c *ClientResolver) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
