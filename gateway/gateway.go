// Package gateway expands IPFS/IPNS playlist locations into an ordered list
// of equivalent gateway URLs so a fetch can fall back when one gateway is
// down or rate-limiting.
package gateway

import (
	"net/url"
	"strings"
)

// DefaultGateway is the gateway used to normalize ipfs:// and ipns://
// pseudo-scheme URLs.
const DefaultGateway = "ipfs.io"

// hosts lists the known public gateways in preference order: most tolerant
// and fastest first.
var hosts = []string{
	DefaultGateway,
	"cloudflare-ipfs.com",
	"dweb.link",
}

// Hosts returns the known gateway hosts in preference order.
func Hosts() []string {
	out := make([]string, len(hosts))
	copy(out, hosts)
	return out
}

// Expand returns the ordered candidate URLs for raw. For URLs inside the
// /ipfs/ or /ipns/ namespace the result is the original URL followed by the
// same path on each alternate gateway; the original host is never repeated.
// Anything unrecognized (including unparseable input) degenerates to a
// single-element list holding the original URL. Expand never fails.
func Expand(raw string) []string {
	raw = normalizePseudoScheme(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !inNamespace(u.Path) {
		return []string{raw}
	}

	candidates := []string{raw}
	for _, host := range hosts {
		if strings.EqualFold(host, u.Hostname()) {
			continue
		}
		alt := *u
		alt.Host = host
		candidates = append(candidates, alt.String())
	}
	return candidates
}

// normalizePseudoScheme converts ipfs:// and ipns:// URLs to their path form
// on the default gateway.
func normalizePseudoScheme(raw string) string {
	switch {
	case strings.HasPrefix(raw, "ipfs://"):
		return "https://" + DefaultGateway + "/ipfs/" + strings.TrimPrefix(raw, "ipfs://")
	case strings.HasPrefix(raw, "ipns://"):
		return "https://" + DefaultGateway + "/ipns/" + strings.TrimPrefix(raw, "ipns://")
	}
	return raw
}

func inNamespace(path string) bool {
	return strings.HasPrefix(path, "/ipfs/") || strings.HasPrefix(path, "/ipns/")
}
