package config

// MetricsConfig toggles the prometheus middleware and the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

func (c *MetricsConfig) Validate() error {
	return nil
}
