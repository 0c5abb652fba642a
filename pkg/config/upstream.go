package config

import (
	"fmt"
	"strings"
	"time"
)

// UpstreamConfig points at the remote catalog service.
type UpstreamConfig struct {
	BaseURL string `koanf:"baseUrl"`
	// PageLimit is the fixed page size sent with list requests.
	PageLimit int           `koanf:"pageLimit"`
	Timeout   time.Duration `koanf:"timeout"`
}

func (c *UpstreamConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("catalog base URL is not configured")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("catalog base URL must start with http:// or https://: %s", c.BaseURL)
	}
	if c.PageLimit <= 0 {
		return fmt.Errorf("invalid catalog page limit: %d", c.PageLimit)
	}
	return nil
}
