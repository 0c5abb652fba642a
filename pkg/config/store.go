package config

import "fmt"

const (
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

// StoreConfig selects the local persistence backend. The choice is made once
// at startup; everything above the store only ever sees the Store interface.
type StoreConfig struct {
	Backend string `koanf:"backend"`
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case BackendPostgres, BackendBolt:
		return nil
	case "":
		return fmt.Errorf("store backend is not configured")
	default:
		return fmt.Errorf("unknown store backend: %q (expected %q or %q)", c.Backend, BackendPostgres, BackendBolt)
	}
}
