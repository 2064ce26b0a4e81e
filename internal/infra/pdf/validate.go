package pdf

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateImageURL rejects URLs the enhanced renderer must not fetch.
// The payload is caller-supplied, so loopback and private targets are
// blocked to keep the fetch from reaching internal services.
func ValidateImageURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("image url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme: %s", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("image url has no host")
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("refusing to fetch local address: %s", host)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("refusing to fetch non-public address: %s", host)
		}
	}
	return nil
}
