// Package middleware holds the HTTP middleware shared by all routes.
package middleware

import (
	"context"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"shrikavin.dev/internal/ratelimit"
)

// Recovery turns a panic in a handler into a 500 response
func Recovery(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintln(w, `{"error":"internal server error"}`)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Logger logs one line per request
func Logger(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Printf("%s %s %d %dB %s ip=%s", r.Method, r.URL.RequestURI(), status,
				ww.BytesWritten(), time.Since(start).Round(time.Microsecond), ClientIP(r))
		})
	}
}

// Proxies is the set of peers whose forwarding headers are believed
type Proxies struct {
	nets []*net.IPNet
}

// ParseProxies parses CIDRs or bare addresses. An empty list trusts no
// one.
func ParseProxies(entries []string) (*Proxies, error) {
	p := &Proxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			entry = fmt.Sprintf("%s/%d", ip, bits)
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		p.nets = append(p.nets, n)
	}
	return p, nil
}

// Trusted reports whether ip belongs to a trusted proxy
func (p *Proxies) Trusted(ip net.IP) bool {
	if p == nil || ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolve returns the client address of r. Forwarding headers are only
// read when the direct peer is trusted; X-Forwarded-For is walked from
// the right so a client cannot prepend its own hops.
func (p *Proxies) Resolve(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !p.Trusted(net.ParseIP(peer)) {
		return peer
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		client := ""
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			client = ip.String()
			if !p.Trusted(ip) {
				return client
			}
		}
		if client != "" {
			return client
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer
}

type clientIPKey struct{}

// RealIP resolves the client address once and stores it on the request
func RealIP(p *Proxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPKey{}, p.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the address stored by RealIP, or the direct peer when
// RealIP did not run
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r.RemoteAddr)
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// RateLimit rejects requests over the limiter's budget with 429. deny
// writes the rejection body; a nil deny answers with a JSON error.
func RateLimit(l *ratelimit.Limiter, deny http.Handler) func(http.Handler) http.Handler {
	if deny == nil {
		deny = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintln(w, `{"error":"too many messages, please try again later"}`)
		})
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := l.Allow(ClientIP(r))
			if info.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			}
			if !allowed {
				retry := int(math.Ceil(info.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				deny.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
