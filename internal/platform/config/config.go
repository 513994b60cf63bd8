package config

import (
	"os"

	dErrors "haulpass/pkg/domain-errors"
)

// Config captures everything the server needs from its environment.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// APIEndpoint is the base URL of the identity ledger node.
	APIEndpoint string

	// IdentityPackageID selects the identity package on the ledger.
	IdentityPackageID string

	// VaultPassword encrypts the key vault files at rest.
	VaultPassword string

	// DataDir holds identity, wallet, and vault files.
	DataDir string

	// RedisURL enables the shared document cache when set.
	RedisURL string

	// AuditBrokers enables the Kafka audit sink when set (comma-separated).
	AuditBrokers string
	AuditTopic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Missing required variables fail startup rather than failing the first
// request.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:              envOr("ADDR", ":3002"),
		APIEndpoint:       os.Getenv("API_ENDPOINT"),
		IdentityPackageID: os.Getenv("IDENTITY_PACKAGE_ID"),
		VaultPassword:     os.Getenv("VAULT_PASSWORD"),
		DataDir:           envOr("DATA_DIR", "."),
		RedisURL:          os.Getenv("REDIS_URL"),
		AuditBrokers:      os.Getenv("AUDIT_BROKERS"),
		AuditTopic:        envOr("AUDIT_TOPIC", "haulpass.audit"),
	}

	if cfg.APIEndpoint == "" {
		return Config{}, dErrors.New(dErrors.CodeConfig, "API_ENDPOINT is required")
	}
	if cfg.IdentityPackageID == "" {
		return Config{}, dErrors.New(dErrors.CodeConfig, "IDENTITY_PACKAGE_ID is required")
	}
	if cfg.VaultPassword == "" {
		return Config{}, dErrors.New(dErrors.CodeConfig, "VAULT_PASSWORD is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
