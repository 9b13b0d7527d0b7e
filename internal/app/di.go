// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/allisson/fieldvault/internal/config"
	"github.com/allisson/fieldvault/internal/database"
	"github.com/allisson/fieldvault/internal/metrics"
	schemaUsecase "github.com/allisson/fieldvault/internal/schema/usecase"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultService "github.com/allisson/fieldvault/internal/vault/service"
	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

const appName = "fieldvault"

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	storeClient     *mongo.Client
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	kmsMetrics      metrics.KMSMetrics

	// Key vault
	masterKey       vaultDomain.MasterKeyReference
	kmsConnector    vaultService.KMSConnector
	keyVaultRepo    vaultUsecase.KeyVaultRepository
	keyVaultUseCase vaultUsecase.KeyVaultUseCase

	// Schema provisioning
	collectionRepo     schemaUsecase.CollectionRepository
	provisionerUseCase schemaUsecase.ProvisionerUseCase
	keyResolver        schemaUsecase.KeyResolver
	driverUseCase      schemaUsecase.DriverUseCase

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	storeClientInit        sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	kmsMetricsInit         sync.Once
	masterKeyInit          sync.Once
	kmsConnectorInit       sync.Once
	keyVaultRepoInit       sync.Once
	keyVaultUseCaseInit    sync.Once
	collectionRepoInit     sync.Once
	provisionerUseCaseInit sync.Once
	keyResolverInit        sync.Once
	driverUseCaseInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// StoreClient returns the document store client.
// It connects and pings the primary on first access.
func (c *Container) StoreClient() (*mongo.Client, error) {
	var err error
	c.storeClientInit.Do(func() {
		c.storeClient, err = c.initStoreClient()
		if err != nil {
			c.setInitError("storeClient", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("storeClient"); storedErr != nil {
		return nil, storedErr
	}
	return c.storeClient, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.setInitError("metricsProvider", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("metricsProvider"); storedErr != nil {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.setInitError("businessMetrics", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("businessMetrics"); storedErr != nil {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// KMSMetrics returns the KMS request metrics recorder.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) KMSMetrics() (metrics.KMSMetrics, error) {
	var err error
	c.kmsMetricsInit.Do(func() {
		c.kmsMetrics, err = c.initKMSMetrics()
		if err != nil {
			c.setInitError("kmsMetrics", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("kmsMetrics"); storedErr != nil {
		return nil, storedErr
	}
	return c.kmsMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
// Metrics are flushed to the configured textfile before the provider shuts down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if c.config.MetricsTextfile != "" {
			if err := c.metricsProvider.WriteTextfile(c.config.MetricsTextfile); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.kmsConnector != nil {
		if err := c.kmsConnector.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms connector close: %w", err))
		}
	}

	if c.storeClient != nil {
		if err := c.storeClient.Disconnect(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("store disconnect: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

func (c *Container) setInitError(component string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initErrors[component] = err
}

func (c *Container) initError(component string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[component]
}

// initLogger creates and configures a structured logger based on the log level.
// Logs go to stderr so command output on stdout stays machine-readable.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler).With(slog.String("app", appName))
}

// initStoreClient connects to the document store.
func (c *Container) initStoreClient() (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.StoreTimeout)
	defer cancel()

	client, err := database.Connect(ctx, database.Config{
		URI:     c.config.StoreURI,
		AppName: appName,
		Timeout: c.config.StoreTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	return client, nil
}

// initMetricsProvider creates the metrics provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initKMSMetrics creates the KMS request metrics recorder.
func (c *Container) initKMSMetrics() (metrics.KMSMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NoOpKMSMetrics{}, nil
	}
	return metrics.NewKMSMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}
