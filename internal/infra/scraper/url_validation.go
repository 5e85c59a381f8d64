package scraper

import (
	"fmt"
	"net"
	"net/url"

	"market-pulse/internal/usecase/fetch"
)

// ValidateFeedURL checks that raw is an absolute http(s) URL with a host.
//
// When denyPrivateIPs is true the host is resolved and the URL is rejected
// if any address is loopback, private or link-local:
//   - 127.0.0.0/8, ::1
//   - 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, fc00::/7
//   - 169.254.0.0/16, fe80::/10
func ValidateFeedURL(raw string, denyPrivateIPs bool) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", fetch.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed (only http/https)", fetch.ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", fetch.ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	ips, err := lookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", fetch.ErrInvalidURL, hostname, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: hostname %q resolves to private IP %s", fetch.ErrPrivateIP, hostname, ip)
		}
	}
	return nil
}

// lookupIP short-circuits literal addresses so they are checked without DNS.
func lookupIP(host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}
	return net.LookupIP(host)
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
