package httpx

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit is a named token bucket profile.
type Limit struct {
	Name     string
	Requests int           // refill per Window
	Window   time.Duration // refill period
	Burst    int           // bucket size
}

// Every returns the refill rate of l.
func (l Limit) Every() rate.Limit {
	if l.Window <= 0 || l.Requests <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(l.Requests) / l.Window.Seconds())
}

// Profiles used by the router. Each one can be tuned through
// RATELIMIT_<NAME>_REQUESTS, RATELIMIT_<NAME>_WINDOW and RATELIMIT_<NAME>_BURST.
var (
	// StrictLimit guards POST /login.
	StrictLimit = Limit{Name: "strict", Requests: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards pages that call the catalog API.
	ModerateLimit = Limit{Name: "moderate", Requests: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards health checks and the login form.
	LenientLimit = Limit{Name: "lenient", Requests: 100, Window: time.Minute, Burst: 100}

	// PublicLimit guards metrics scraping and swagger assets.
	PublicLimit = Limit{Name: "public", Requests: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = LimitFromEnv(StrictLimit)
	ModerateLimit = LimitFromEnv(ModerateLimit)
	LenientLimit = LimitFromEnv(LenientLimit)
	PublicLimit = LimitFromEnv(PublicLimit)
}

// LimitFromEnv overrides fields of l from RATELIMIT_<NAME>_* variables.
// WINDOW accepts a Go duration or a number of seconds. Invalid or
// non-positive values are ignored.
func LimitFromEnv(l Limit) Limit {
	prefix := "RATELIMIT_" + strings.ToUpper(l.Name) + "_"

	if n, ok := positiveInt(os.Getenv(prefix + "REQUESTS")); ok {
		l.Requests = n
	}
	if n, ok := positiveInt(os.Getenv(prefix + "BURST")); ok {
		l.Burst = n
	}

	if v := os.Getenv(prefix + "WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			l.Window = d
		} else if n, ok := positiveInt(v); ok {
			l.Window = time.Duration(n) * time.Second
		}
	}

	return l
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n > 0
}

// KeyFunc picks the bucket a request is charged to. An empty key skips
// limiting.
type KeyFunc func(*http.Request) string

// TrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP
// headers are believed. Requests from any other peer are keyed by their
// socket address, so a client cannot pick its own rate limit bucket.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies reads a comma separated list of IPs and CIDRs.
func ParseTrustedProxies(s string) (TrustedProxies, error) {
	var tp TrustedProxies
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", part, err)
			}
			tp = append(tp, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", part, err)
		}
		tp = append(tp, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return tp, nil
}

func (tp TrustedProxies) contains(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range tp {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IPKey returns the caller address. Forwarding headers are only read when
// the direct peer is one of tp.
func (tp TrustedProxies) IPKey(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}

	if !tp.contains(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return peer
}

// IPKey returns the socket address of the caller and ignores forwarding
// headers. Use TrustedProxies.IPKey behind a reverse proxy.
func IPKey(r *http.Request) string {
	return TrustedProxies(nil).IPKey(r)
}

// ClientKey returns the browser client id set by ClientCookie.
func ClientKey(r *http.Request) string {
	if id, ok := ClientIDFromContext(r.Context()); ok {
		return id.String()
	}
	return ""
}

// FormFieldKey returns the value of a form field, from the query or a
// url-encoded body.
func FormFieldKey(field string) KeyFunc {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return strings.TrimSpace(r.FormValue(field))
	}
}

// JoinKeys concatenates the non-empty keys of fns with ":".
func JoinKeys(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, ":")
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per key. Buckets idle for longer than
// the idle timeout are dropped during a sweep, at most once per timeout.
type Limiter struct {
	limit Limit
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewLimiter returns a Limiter for l.
func NewLimiter(l Limit) *Limiter {
	idle := 2 * l.Window
	if idle < time.Minute {
		idle = time.Minute
	}
	return &Limiter{
		limit:     l,
		idle:      idle,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow charges one request to key. When the bucket is empty it reports
// how long until the next token.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit.Every(), l.limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, l.limit.Window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len reports the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now

	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, k)
		}
	}
}

// RateLimitOption customises RateLimit.
type RateLimitOption func(*rateLimitOptions)

type rateLimitOptions struct {
	onLimited func(*http.Request, Limit)
	proxies   TrustedProxies
}

func collect(opts []RateLimitOption) rateLimitOptions {
	var o rateLimitOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OnLimited registers fn to be called for every rejected request.
func OnLimited(fn func(r *http.Request, l Limit)) RateLimitOption {
	return func(o *rateLimitOptions) { o.onLimited = fn }
}

// WithTrustedProxies makes ByIP, ByClient and ByIPAndField read
// forwarding headers set by tp.
func WithTrustedProxies(tp TrustedProxies) RateLimitOption {
	return func(o *rateLimitOptions) { o.proxies = tp }
}

// RateLimit rejects requests with 429 once the bucket for key(r) is empty.
func RateLimit(l Limit, key KeyFunc, opts ...RateLimitOption) Middleware {
	o := collect(opts)
	limiter := NewLimiter(l)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit key empty, request not limited",
					"limit", l.Name)
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := limiter.Allow(k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int((wait+time.Second-1)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Requests))
			w.Header().Set("X-RateLimit-Window", l.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"limit", l.Name,
				"key", k,
				"retry_after", retryAfter,
			)
			if o.onLimited != nil {
				o.onLimited(r, l)
			}

			WriteError(w, http.StatusTooManyRequests,
				"rate_limit_exceeded", "Too many requests. Please try again later.")
		})
	}
}

// ByIP limits per caller address.
func ByIP(l Limit, opts ...RateLimitOption) Middleware {
	return RateLimit(l, collect(opts).proxies.IPKey, opts...)
}

// ByClient limits per browser client id and address, so browsers sharing
// a NAT do not starve each other.
func ByClient(l Limit, opts ...RateLimitOption) Middleware {
	return RateLimit(l, JoinKeys(ClientKey, collect(opts).proxies.IPKey), opts...)
}

// ByIPAndField limits per address and form field, e.g. the username on
// the login form.
func ByIPAndField(l Limit, field string, opts ...RateLimitOption) Middleware {
	return RateLimit(l, JoinKeys(collect(opts).proxies.IPKey, FormFieldKey(field)), opts...)
}
