package httpx

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyTrust lists the reverse proxies allowed to report the client address via X-Forwarded-For.
type ProxyTrust []netip.Prefix

func (p ProxyTrust) trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the client that sent r.
// X-Forwarded-For is only read when the direct peer is a trusted proxy; the
// hops are then walked right to left and the first untrusted one wins.
func (p ProxyTrust) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !p.trusts(peerAddr) {
		return peer
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// Unparseable hops mean the chain cannot be trusted past this point.
			return peer
		}
		if !p.trusts(hop) {
			return hop.Unmap().String()
		}
	}
	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
