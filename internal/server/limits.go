package server

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/levelgen/internal/config"
)

var (
	errAddressBusy = errors.New("too many sessions from this address")
	errServiceFull = errors.New("too many open sessions")
)

// sessionLimits caps concurrent /generate sessions per client address and
// across the service. A zero limit is unlimited.
type sessionLimits struct {
	maxPerIP int
	maxTotal int

	mu    sync.Mutex
	perIP map[string]int
	total int
}

func newSessionLimits(cfg config.ConnectionsConfig) *sessionLimits {
	return &sessionLimits{
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
		perIP:    make(map[string]int),
	}
}

// acquire reserves a session slot for ip. The returned release gives the
// slot back; calls after the first do nothing.
func (l *sessionLimits) acquire(ip string) (release func(), err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxTotal > 0 && l.total >= l.maxTotal {
		return nil, errServiceFull
	}
	if l.maxPerIP > 0 && l.perIP[ip] >= l.maxPerIP {
		return nil, errAddressBusy
	}
	l.perIP[ip]++
	l.total++

	var once sync.Once
	return func() { once.Do(func() { l.release(ip) }) }, nil
}

func (l *sessionLimits) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.perIP[ip]--; l.perIP[ip] <= 0 {
		delete(l.perIP, ip)
	}
	l.total--
}

// open returns the number of open sessions overall and from ip.
func (l *sessionLimits) open(ip string) (total, fromIP int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, l.perIP[ip]
}

// clientAddr is the address a session is counted against. X-Forwarded-For
// and X-Real-IP are only read when trustProxy is set.
func clientAddr(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
