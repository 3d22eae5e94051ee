package middleware

import (
	"bytes"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shrikavin.dev/internal/ratelimit"
)

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(log.New(&buf, "", 0))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic serving GET /: boom")
}

func TestLogger_UsesGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(log.New(&buf, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
	assert.Contains(t, buf.String(), "GET /pot 418 15B")
}

func TestParseProxies(t *testing.T) {
	p, err := ParseProxies([]string{"10.0.0.0/8", " 192.168.1.7 ", "", "::1"})
	require.NoError(t, err)
	assert.True(t, p.Trusted(net.ParseIP("10.1.2.3")))
	assert.True(t, p.Trusted(net.ParseIP("192.168.1.7")))
	assert.False(t, p.Trusted(net.ParseIP("192.168.1.8")))
	assert.True(t, p.Trusted(net.ParseIP("::1")))

	_, err = ParseProxies([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = ParseProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestProxies_Resolve(t *testing.T) {
	trusted, err := ParseProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		proxies *Proxies
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", trusted, nil, "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded via trusted proxy", trusted, map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.2"}, "10.0.0.1:5555", "1.2.3.4"},
		{"spoofed leftmost hop ignored", trusted, map[string]string{"X-Forwarded-For": "6.6.6.6, 1.2.3.4"}, "10.0.0.1:5555", "1.2.3.4"},
		{"real ip via trusted proxy", trusted, map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.1:5555", "5.6.7.8"},
		{"untrusted peer forwarded for", trusted, map[string]string{"X-Forwarded-For": "1.2.3.4"}, "8.8.8.8:5555", "8.8.8.8"},
		{"untrusted peer real ip", trusted, map[string]string{"X-Real-IP": "5.6.7.8"}, "8.8.8.8:5555", "8.8.8.8"},
		{"no proxies configured", nil, map[string]string{"X-Forwarded-For": "1.2.3.4"}, "10.0.0.1:5555", "10.0.0.1"},
		{"no port", trusted, nil, "pipe", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.proxies.Resolve(r))
		})
	}
}

func TestRealIP_StoresClientIP(t *testing.T) {
	trusted, err := ParseProxies([]string{"10.0.0.1"})
	require.NoError(t, err)

	var got string
	h := RealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:80"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "1.2.3.4", got)

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	bare.RemoteAddr = "9.9.9.9:80"
	assert.Equal(t, "9.9.9.9", ClientIP(bare))
}

func TestRateLimit(t *testing.T) {
	l := ratelimit.NewLimiter(ratelimit.Config{Limit: 2, Window: time.Hour})
	defer l.Stop()

	h := RateLimit(l, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		r.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("1.1.1.1").Code)
	assert.Equal(t, http.StatusNoContent, send("1.1.1.1").Code)

	rec := send("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNoContent, send("2.2.2.2").Code)
}

func TestRateLimit_SpoofedHeadersShareBucket(t *testing.T) {
	l := ratelimit.NewLimiter(ratelimit.Config{Limit: 1, Window: time.Hour})
	defer l.Stop()

	proxies, err := ParseProxies(nil)
	require.NoError(t, err)
	h := RealIP(proxies)(RateLimit(l, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	codes := make([]int, 0, 5)
	for _, fwd := range []string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		r.RemoteAddr = "203.0.113.9:4000"
		r.Header.Set("X-Forwarded-For", fwd)
		r.Header.Set("X-Real-IP", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{
		http.StatusNoContent,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestRateLimit_CustomDeny(t *testing.T) {
	l := ratelimit.NewLimiter(ratelimit.Config{Limit: 1, Window: time.Hour})
	defer l.Stop()

	deny := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("<form></form>"))
	})
	h := RateLimit(l, deny)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if i == 1 {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			assert.Equal(t, "<form></form>", rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}
}
