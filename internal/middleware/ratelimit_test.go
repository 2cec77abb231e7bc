package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limited(rps float64, burst int, trustXFF bool) http.Handler {
	return RateLimiter(RateLimitConfig{RequestsPerSecond: rps, Burst: burst, TrustForwardedFor: trustXFF})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
}

// hit sends one chart request from addr, optionally through a proxy hop.
func hit(h http.Handler, addr, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chart-data", nil)
	req.RemoteAddr = addr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Burst(t *testing.T) {
	tests := []struct {
		name  string
		burst int
		sent  int
		want  []int
	}{
		{name: "within burst", burst: 4, sent: 3, want: []int{200, 200, 200}},
		{name: "one over", burst: 2, sent: 3, want: []int{200, 200, 429}},
		{name: "burst of one", burst: 1, sent: 2, want: []int{200, 429}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := limited(0.01, tt.burst, false)
			got := make([]int, 0, tt.sent)
			for range tt.sent {
				rec := hit(h, "198.51.100.7:4000", "")
				got = append(got, rec.Code)
				if rec.Code == http.StatusOK {
					assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimiter_RejectionBody(t *testing.T) {
	h := limited(0.5, 1, false)
	require.Equal(t, http.StatusOK, hit(h, "10.1.1.1:1", "").Code)

	rec := hit(h, "10.1.1.1:2", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.InDelta(t, float64(http.StatusTooManyRequests), body["code"], 0.001)
	assert.Equal(t, "rate_limited", body["error"])
	assert.Equal(t, "rate limit exceeded", body["detail"])
}

func TestRateLimiter_KeysByClient(t *testing.T) {
	t.Run("remote address, port ignored", func(t *testing.T) {
		h := limited(0.01, 1, false)
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:5678", "").Code)
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1234", "").Code)
	})
	t.Run("spoofed header ignored without trust", func(t *testing.T) {
		h := limited(0.01, 1, false)
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", "203.0.113.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1", "203.0.113.2").Code)
	})
	t.Run("forwarded clients separated behind a trusted proxy", func(t *testing.T) {
		h := limited(0.01, 1, true)
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", "203.0.113.1").Code)
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", "203.0.113.2").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1", "203.0.113.1, 10.0.0.1").Code)
	})
}

func TestClientIP_ExtractsHost(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trust      bool
		want       string
	}{
		{
			name:       "IPv4 with port",
			remoteAddr: "192.168.1.1:12345",
			want:       "192.168.1.1",
		},
		{
			name:       "IPv6 with port",
			remoteAddr: "[::1]:12345",
			want:       "::1",
		},
		{
			name:       "X-Forwarded-For ignored when untrusted",
			remoteAddr: "10.0.0.1:1234",
			xff:        "203.0.113.50",
			want:       "10.0.0.1",
		},
		{
			name:       "X-Forwarded-For single",
			remoteAddr: "10.0.0.1:1234",
			xff:        "203.0.113.50",
			trust:      true,
			want:       "203.0.113.50",
		},
		{
			name:       "X-Forwarded-For chain",
			remoteAddr: "10.0.0.1:1234",
			xff:        "203.0.113.50, 70.41.3.18, 150.172.238.178",
			trust:      true,
			want:       "203.0.113.50",
		},
		{
			name:       "no port",
			remoteAddr: "10.0.0.9",
			want:       "10.0.0.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trust))
		})
	}
}
