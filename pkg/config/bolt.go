package config

import "fmt"

// BoltConfig configures the embedded key-value backend.
type BoltConfig struct {
	Path string `koanf:"path"`
}

func (c *BoltConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("bolt database path is not configured")
	}
	return nil
}
