package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// IngestToken is the shared-secret bearer token the external scheduler
	// presents when triggering ingestion runs or reading analytics. An empty
	// token disables every protected route.
	IngestToken string `env:"INGEST_TOKEN"`

	// ReadTimeout and WriteTimeout bound request handling. Write timeout must
	// comfortably exceed a full ingestion run, since the run handler responds
	// synchronously with the summary.
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"30s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30m"`
}
