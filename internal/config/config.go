// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// KMSCredentials holds the credential set used to authorize wrap/unwrap calls against the KMS.
type KMSCredentials struct {
	// Email is the service-account email (gcp).
	Email string
	// PrivateKey is the PEM-encoded service-account private key (gcp).
	PrivateKey string
	// LocalKey is a base64-encoded 32-byte key used by the local provider (development and tests).
	LocalKey string
}

// Config holds all application configuration.
type Config struct {
	// StoreURI is the connection URI of the document store.
	StoreURI string
	// StoreTimeout bounds every individual store operation.
	StoreTimeout time.Duration
	// DBName is the database that holds the encrypted collections.
	DBName string
	// KeyVaultNamespace is the "<database>.<collection>" holding wrapped data keys.
	KeyVaultNamespace string

	// KMSProvider is the KMS provider tag (local, gcp, aws, azure).
	KMSProvider string
	// KMSKeyURI optionally refines the keeper URI derived from the master key locator with
	// driver query parameters. It must address the same key (e.g., awskms:///alias/app?region=us-east-1&awssdk=v2).
	KMSKeyURI string
	// KMSCredentials is the credential set for the KMS provider.
	KMSCredentials KMSCredentials
	// MasterKeyLocator holds provider-specific master key locator fields.
	MasterKeyLocator map[string]string

	// ExistingDEKBase64 is an externally supplied base64 data key identifier to reuse.
	ExistingDEKBase64 string
	// DataKeyAltName is the alternate name used to find or create the deployment data key.
	DataKeyAltName string

	// RegistryPath is the path of the provisioning registry file.
	RegistryPath string
	// ProvisionConcurrency is the number of collections applied in parallel.
	ProvisionConcurrency int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsTextfile is the file metrics are written to when the command exits.
	MetricsTextfile string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Store configuration
		StoreURI:          env.GetString("STORE_URI", "mongodb://localhost:27017"),
		StoreTimeout:      env.GetDuration("STORE_TIMEOUT_SECONDS", 10, time.Second),
		DBName:            env.GetString("DB_NAME", "fieldvault"),
		KeyVaultNamespace: env.GetString("KEY_VAULT_NAMESPACE", "encryption.__keyVault"),

		// KMS configuration
		KMSProvider: env.GetString("KMS_PROVIDER", "local"),
		KMSKeyURI:   env.GetString("KMS_KEY_URI", ""),
		KMSCredentials: KMSCredentials{
			Email:      env.GetString("KMS_CREDENTIALS_EMAIL", ""),
			PrivateKey: env.GetString("KMS_CREDENTIALS_PRIVATE_KEY", ""),
			LocalKey:   env.GetString("KMS_LOCAL_KEY", ""),
		},
		MasterKeyLocator: parseLocator(env.GetString("MASTER_KEY_LOCATOR", "")),

		// Data key selection
		ExistingDEKBase64: env.GetString("EXISTING_DEK_B64", ""),
		DataKeyAltName:    env.GetString("DATA_KEY_ALT_NAME", "fieldvault-default"),

		// Provisioning
		RegistryPath:         env.GetString("REGISTRY_PATH", "registry.yaml"),
		ProvisionConcurrency: env.GetInt("PROVISION_CONCURRENCY", 1),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "fieldvault"),
		MetricsTextfile:  env.GetString("METRICS_TEXTFILE", ""),
	}
}

// KeyVaultDatabase returns the database part of KeyVaultNamespace.
func (c *Config) KeyVaultDatabase() string {
	db, _ := splitNamespace(c.KeyVaultNamespace)
	return db
}

// KeyVaultCollection returns the collection part of KeyVaultNamespace.
func (c *Config) KeyVaultCollection() string {
	_, coll := splitNamespace(c.KeyVaultNamespace)
	return coll
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	err := validation.Errors{
		"STORE_URI":             validation.Validate(c.StoreURI, validation.Required, customValidation.NoWhitespace),
		"STORE_TIMEOUT_SECONDS": validation.Validate(c.StoreTimeout, validation.Required, validation.Min(time.Second)),
		"DB_NAME":               validation.Validate(c.DBName, validation.Required, customValidation.NoWhitespace),
		"KEY_VAULT_NAMESPACE":   validation.Validate(c.KeyVaultNamespace, validation.Required, customValidation.Namespace),
		"KMS_LOCAL_KEY":         validation.Validate(c.KMSCredentials.LocalKey, customValidation.Base64Length(32)),
		"EXISTING_DEK_B64":      validation.Validate(c.ExistingDEKBase64, customValidation.Base64Length(16)),
		"DATA_KEY_ALT_NAME":     validation.Validate(c.DataKeyAltName, customValidation.NoWhitespace),
		"PROVISION_CONCURRENCY": validation.Validate(c.ProvisionConcurrency, validation.Required, validation.Min(1)),
	}.Filter()
	return customValidation.WrapValidationError(err)
}

// parseLocator parses "projectId=p,location=global,keyRing=r,keyName=k" into a map.
// Entries without "=" and entries with an empty key are ignored.
func parseLocator(raw string) map[string]string {
	locator := make(map[string]string)
	for part := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		locator[k] = strings.TrimSpace(v)
	}
	return locator
}

func splitNamespace(ns string) (string, string) {
	db, coll, ok := strings.Cut(ns, ".")
	if !ok {
		return "", ""
	}
	return db, coll
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
