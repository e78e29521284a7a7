package ranger

import (
	"os"

	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/postgres"
)

// NewPostgresConfig constructs a *postgres.CxnConfig from the DATABASE env vars.
// DATABASE_URL replaces all the others.
func NewPostgresConfig() *postgres.CxnConfig {
	if url := os.Getenv(dbURLEnvVar); url != "" {
		return &postgres.CxnConfig{URL: url}
	}

	return &postgres.CxnConfig{
		Host:     gate.EnvVarOrString(dbHostEnvVar, defaultDBHost),
		Name:     os.Getenv(dbNameEnvVar),
		Password: os.Getenv(dbPassEnvVar),
		Port:     gate.EnvVarOrString(dbPortEnvVar, defaultDBPort),
		SSLMode:  gate.EnvVarOrString(dbSSLModeEnvVar, defaultDBSSLMode),
		User:     os.Getenv(dbUserEnvVar),
	}
}
