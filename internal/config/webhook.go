package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateWebhookURL checks that raw is an https URL on host whose path
// starts with pathPrefix. Webhook URLs embed their token, so the URL itself
// is never included in the error.
func validateWebhookURL(raw, host, pathPrefix string) error {
	if raw == "" {
		return fmt.Errorf("webhook URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("webhook URL is malformed")
	}
	if u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use HTTPS")
	}
	if u.Host != host {
		return fmt.Errorf("webhook host must be %s, got %s", host, u.Host)
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return fmt.Errorf("webhook path must start with %s", pathPrefix)
	}
	return nil
}
