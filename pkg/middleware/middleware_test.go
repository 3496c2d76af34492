package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/metrics"
)

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", seen)
	assert.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var hasDeadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)

	h = Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, hasDeadline)
}

func TestMetricsRecordsPatternAndStatus(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/things", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Metrics(m)(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/things?x=1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/things", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestMetricsCountsDeadlineExceeded(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/anagrams/sentence", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("GET /api/v1/anagrams/word", func(w http.ResponseWriter, r *http.Request) {})
	h := Timeout(10 * time.Millisecond)(Metrics(m)(mux))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/anagrams/sentence?q=tea", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/anagrams/word?w=tea", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeadlineExceeded.WithLabelValues("/api/v1/anagrams/sentence")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DeadlineExceeded.WithLabelValues("/api/v1/anagrams/word")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/anagrams/sentence", "503")))
}

func TestMetricsKeepsResponseController(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	var flushErr error
	h := Metrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flushErr = http.NewResponseController(w).Flush()
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, flushErr)
	assert.True(t, rec.Flushed)
}

func TestMetricsNilPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

type fixedLimiter struct {
	allow bool
	keys  []string
}

func (f *fixedLimiter) Allow(key string) (bool, time.Duration) {
	f.keys = append(f.keys, key)
	return f.allow, 1500 * time.Millisecond
}

func TestRateLimitRejects(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	lim := &fixedLimiter{}
	h := RateLimit(lim, "/api/", nil, m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/anagrams/sentence?q=abc", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, []string{"192.0.2.7"}, lim.keys)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, lim.keys, 1)
}

func TestRateLimitAllows(t *testing.T) {
	h := RateLimit(&fixedLimiter{allow: true}, "/api/", nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/anagrams/word?w=tea", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// onePerKey allows the first request of every key.
type onePerKey struct{ seen map[string]bool }

func (o *onePerKey) Allow(key string) (bool, time.Duration) {
	if o.seen[key] {
		return false, time.Minute
	}
	o.seen[key] = true
	return true, 0
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := RateLimit(&onePerKey{seen: map[string]bool{}}, "/api/", nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for i := range 20 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/anagrams/word?w=tea", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestClientResolverAddr(t *testing.T) {
	clients, err := NewClientResolver([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		fwd    string
		want   string
	}{
		{"untrusted peer ignores header", "198.51.100.1:1234", "203.0.113.9", "198.51.100.1"},
		{"trusted peer without header", "10.1.2.3:80", "", "10.1.2.3"},
		{"trusted peer uses last untrusted hop", "10.1.2.3:80", "1.1.1.1, 203.0.113.9, 10.9.9.9", "203.0.113.9"},
		{"single trusted ip", "192.0.2.1:80", "203.0.113.9", "203.0.113.9"},
		{"all hops trusted", "10.1.2.3:80", "10.0.0.5", "10.0.0.5"},
		{"remote without port", "pipe", "203.0.113.9", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.fwd != "" {
				req.Header.Set("X-Forwarded-For", tt.fwd)
			}
			assert.Equal(t, tt.want, clients.Addr(req))
		})
	}

	var none *ClientResolver
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "10.1.2.3", none.Addr(req))
}

func TestNewClientResolverRejectsGarbage(t *testing.T) {
	_, err := NewClientResolver([]string{"not-an-ip"})
	assert.ErrorContains(t, err, "not-an-ip")
	_, err = NewClientResolver([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
