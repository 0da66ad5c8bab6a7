package crawl

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain returns the registrable domain (eTLD+1) of host, so that
// "www.example.co.uk" and "news.example.co.uk" both map to "example.co.uk".
// IP addresses and single-label hosts are returned unchanged.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// DomainLabel derives the short name used in output file names:
// the label directly left of the public suffix ("tinthethao.com.vn" → "tinthethao").
func DomainLabel(domain string) string {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	if domain == "" {
		return "site"
	}
	if net.ParseIP(domain) != nil {
		return strings.NewReplacer(".", "-", ":", "-").Replace(domain)
	}

	label := domain
	if suffix, _ := publicsuffix.PublicSuffix(domain); suffix != domain {
		label = strings.TrimSuffix(domain, "."+suffix)
	}
	if i := strings.LastIndex(label, "."); i >= 0 {
		label = label[i+1:]
	}
	if label == "" {
		return "site"
	}
	return label
}

// hostMatches reports whether host equals domain or is a subdomain of it.
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
