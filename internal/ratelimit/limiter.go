// Package ratelimit throttles on-demand digest emails and locks out clients
// that keep presenting a wrong coordinator key.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds the limits. Zero values disable the matching check.
type Config struct {
	// DigestCooldown is the minimum gap between digests of one league.
	DigestCooldown time.Duration
	// DigestMaxPerHour caps digests per league in a rolling hour.
	DigestMaxPerHour int
	// DigestMaxIPPerHour caps digests requested by one client in an hour.
	DigestMaxIPPerHour int

	// KeyMaxFailures wrong coordinator keys lock a client out for KeyLockout.
	KeyMaxFailures int
	KeyLockout     time.Duration

	// TrustProxy reads the client address from forwarding headers.
	TrustProxy bool

	// Now defaults to time.Now.
	Now func() time.Time
}

func DefaultConfig() *Config {
	return &Config{
		DigestCooldown:     5 * time.Minute,
		DigestMaxPerHour:   4,
		DigestMaxIPPerHour: 20,
		KeyMaxFailures:     5,
		KeyLockout:         15 * time.Minute,
	}
}

// LimitResult is the outcome of a check. Reason names the limit that was hit.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string
}

var allowed = LimitResult{Allowed: true}

// RetryAfterSeconds rounds RetryAfter up for the Retry-After header.
func (r LimitResult) RetryAfterSeconds() string {
	seconds := int((r.RetryAfter + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

const (
	hourWindow    = time.Hour
	sweepInterval = 5 * time.Minute
)

// window counts events since start. lockedUntil is only used for key
// failures.
type window struct {
	start       time.Time
	last        time.Time
	count       int
	lockedUntil time.Time
}

func (w *window) add(at time.Time, span time.Duration) {
	if w.count == 0 || at.Sub(w.start) >= span {
		*w = window{start: at}
	}
	w.count++
	w.last = at
}

// full reports whether the window already holds max events at at, and how
// long until it rolls over.
func (w *window) full(at time.Time, span time.Duration, max int) (bool, time.Duration) {
	if w == nil || max <= 0 || at.Sub(w.start) >= span || w.count < max {
		return false, 0
	}
	return true, span - at.Sub(w.start)
}

// Limiter is safe for concurrent use. A nil *Limiter allows everything.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	byLeague  map[int64]*window
	byIP      map[string]*window
	keyFails  map[string]*window
	lastSweep time.Time
}

// New builds a limiter; a nil cfg uses DefaultConfig.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		cfg:      *cfg,
		now:      now,
		byLeague: make(map[int64]*window),
		byIP:     make(map[string]*window),
		keyFails: make(map[string]*window),
	}
}

// ClientIP extracts the client IP honoring the TrustProxy setting.
func (l *Limiter) ClientIP(r *http.Request) string {
	return GetClientIP(r, l != nil && l.cfg.TrustProxy)
}

// TryDigestSend checks the digest limits for leagueID and ip and, when they
// allow it, counts the send in the same critical section so concurrent
// requests cannot both pass.
func (l *Limiter) TryDigestSend(leagueID int64, ip string) LimitResult {
	if l == nil {
		return allowed
	}
	at := l.now()
	ipKey := hashIP(ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	result := l.checkDigest(leagueID, ipKey, at)
	if result.Allowed {
		l.recordDigest(leagueID, ipKey, at)
	}
	return result
}

// CheckDigestSend reports whether a digest for leagueID may be sent now
// without counting it.
func (l *Limiter) CheckDigestSend(leagueID int64, ip string) LimitResult {
	if l == nil {
		return allowed
	}
	at := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkDigest(leagueID, hashIP(ip), at)
}

// RecordDigestSend counts a digest against the league and the IP whether or
// not the limits allowed it.
func (l *Limiter) RecordDigestSend(leagueID int64, ip string) {
	if l == nil {
		return
	}
	at := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordDigest(leagueID, hashIP(ip), at)
}

// checkDigest and recordDigest expect l.mu to be held.
func (l *Limiter) checkDigest(leagueID int64, ipKey string, at time.Time) LimitResult {
	if w := l.byLeague[leagueID]; w != nil {
		if since := at.Sub(w.last); since < l.cfg.DigestCooldown {
			return LimitResult{RetryAfter: l.cfg.DigestCooldown - since, Reason: "cooldown"}
		}
		if full, wait := w.full(at, hourWindow, l.cfg.DigestMaxPerHour); full {
			return LimitResult{RetryAfter: wait, Reason: "hourly_limit"}
		}
	}
	if full, wait := l.byIP[ipKey].full(at, hourWindow, l.cfg.DigestMaxIPPerHour); full {
		return LimitResult{RetryAfter: wait, Reason: "ip_hourly_limit"}
	}
	return allowed
}

func (l *Limiter) recordDigest(leagueID int64, ipKey string, at time.Time) {
	l.sweep(at)
	windowFor(l.byLeague, leagueID).add(at, hourWindow)
	windowFor(l.byIP, ipKey).add(at, hourWindow)
}

// CheckKeyAttempt reports whether ip may present a coordinator key.
func (l *Limiter) CheckKeyAttempt(ip string) LimitResult {
	if l == nil {
		return allowed
	}
	at := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.keyFails[hashIP(ip)]
	if w == nil || !at.Before(w.lockedUntil) {
		return allowed
	}
	return LimitResult{RetryAfter: w.lockedUntil.Sub(at), Reason: "lockout"}
}

// RecordKeyFailure counts a wrong coordinator key from ip. It returns true
// when this failure started a lockout.
func (l *Limiter) RecordKeyFailure(ip string) bool {
	if l == nil || l.cfg.KeyMaxFailures <= 0 {
		return false
	}
	at := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(at)

	w := windowFor(l.keyFails, hashIP(ip))
	if !w.lockedUntil.IsZero() {
		if at.Before(w.lockedUntil) {
			return false
		}
		*w = window{}
	}
	// Failures count until a correct key resets them or a lockout ends.
	w.add(at, l.cfg.KeyLockout+hourWindow)
	if w.count < l.cfg.KeyMaxFailures {
		return false
	}
	w.lockedUntil = at.Add(l.cfg.KeyLockout)
	return true
}

// ResetKeyFailures clears the failure counter after a correct key.
func (l *Limiter) ResetKeyFailures(ip string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.keyFails, hashIP(ip))
	l.mu.Unlock()
}

func windowFor[K comparable](windows map[K]*window, key K) *window {
	w := windows[key]
	if w == nil {
		w = &window{}
		windows[key] = w
	}
	return w
}

// sweep drops idle windows at most once per sweepInterval. l.mu must be held.
func (l *Limiter) sweep(at time.Time) {
	if at.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = at
	for id, w := range l.byLeague {
		if at.Sub(w.last) > hourWindow {
			delete(l.byLeague, id)
		}
	}
	for key, w := range l.byIP {
		if at.Sub(w.last) > hourWindow {
			delete(l.byIP, key)
		}
	}
	for key, w := range l.keyFails {
		if at.Sub(w.last) > hourWindow && !at.Before(w.lockedUntil) {
			delete(l.keyFails, key)
		}
	}
}

// hashIP keeps raw client addresses out of long-lived maps.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}

// GetClientIP returns the address a request came from. Forwarding headers are
// read only when trustProxy is set; the rightmost public hop of
// X-Forwarded-For wins because earlier hops are client supplied.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			for i := len(hops) - 1; i >= 0; i-- {
				if hop := strings.TrimSpace(hops[i]); hop != "" && !isInternalAddr(hop) {
					return hop
				}
			}
			return strings.TrimSpace(hops[len(hops)-1])
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}
	return remoteHost(r.RemoteAddr)
}

func remoteHost(remoteAddr string) string {
	if addrPort, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return addrPort.Addr().Unmap().String()
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// isInternalAddr matches private, loopback and link-local addresses,
// including IPv4-mapped IPv6 forms.
func isInternalAddr(value string) bool {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast()
}

// LogRateLimitExceeded logs a rejected request.
func LogRateLimitExceeded(ctx context.Context, limitType, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Rate limit exceeded")
}
