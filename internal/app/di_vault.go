package app

import (
	"fmt"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultRepository "github.com/allisson/fieldvault/internal/vault/repository"
	vaultService "github.com/allisson/fieldvault/internal/vault/service"
	vaultUsecase "github.com/allisson/fieldvault/internal/vault/usecase"
)

// MasterKey returns the master key reference built from KMS_PROVIDER and MASTER_KEY_LOCATOR.
func (c *Container) MasterKey() (vaultDomain.MasterKeyReference, error) {
	var err error
	c.masterKeyInit.Do(func() {
		c.masterKey, err = vaultDomain.NewMasterKeyReference(c.config.KMSProvider, c.config.MasterKeyLocator)
		if err != nil {
			c.setInitError("masterKey", err)
		}
	})
	if err != nil {
		return vaultDomain.MasterKeyReference{}, err
	}
	if storedErr := c.initError("masterKey"); storedErr != nil {
		return vaultDomain.MasterKeyReference{}, storedErr
	}
	return c.masterKey, nil
}

// KMSConnector returns the KMS connector, instrumented with request metrics.
func (c *Container) KMSConnector() (vaultService.KMSConnector, error) {
	var err error
	c.kmsConnectorInit.Do(func() {
		c.kmsConnector, err = c.initKMSConnector()
		if err != nil {
			c.setInitError("kmsConnector", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("kmsConnector"); storedErr != nil {
		return nil, storedErr
	}
	return c.kmsConnector, nil
}

// KeyVaultRepository returns the key vault repository bound to KEY_VAULT_NAMESPACE.
func (c *Container) KeyVaultRepository() (vaultUsecase.KeyVaultRepository, error) {
	var err error
	c.keyVaultRepoInit.Do(func() {
		c.keyVaultRepo, err = c.initKeyVaultRepository()
		if err != nil {
			c.setInitError("keyVaultRepo", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("keyVaultRepo"); storedErr != nil {
		return nil, storedErr
	}
	return c.keyVaultRepo, nil
}

// KeyVaultUseCase returns the key vault use case, decorated with business metrics.
func (c *Container) KeyVaultUseCase() (vaultUsecase.KeyVaultUseCase, error) {
	var err error
	c.keyVaultUseCaseInit.Do(func() {
		c.keyVaultUseCase, err = c.initKeyVaultUseCase()
		if err != nil {
			c.setInitError("keyVaultUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("keyVaultUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.keyVaultUseCase, nil
}

// initKMSConnector creates the gocloud-backed KMS connector.
func (c *Container) initKMSConnector() (vaultService.KMSConnector, error) {
	kmsMetrics, err := c.KMSMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms metrics for kms connector: %w", err)
	}

	connector := vaultService.NewKMSConnector(vaultService.ConnectorConfig{
		KeyURI: c.config.KMSKeyURI,
		Credentials: vaultService.Credentials{
			Email:      c.config.KMSCredentials.Email,
			PrivateKey: c.config.KMSCredentials.PrivateKey,
			LocalKey:   c.config.KMSCredentials.LocalKey,
		},
	})
	return vaultService.NewKMSConnectorWithMetrics(connector, kmsMetrics), nil
}

// initKeyVaultRepository creates the key vault repository.
func (c *Container) initKeyVaultRepository() (vaultUsecase.KeyVaultRepository, error) {
	client, err := c.StoreClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get store client for key vault repository: %w", err)
	}

	coll := client.Database(c.config.KeyVaultDatabase()).Collection(c.config.KeyVaultCollection())
	return vaultRepository.NewMongoKeyVaultRepository(coll), nil
}

// initKeyVaultUseCase creates the key vault use case with all its dependencies.
func (c *Container) initKeyVaultUseCase() (vaultUsecase.KeyVaultUseCase, error) {
	repo, err := c.KeyVaultRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key vault repository for key vault use case: %w", err)
	}

	connector, err := c.KMSConnector()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms connector for key vault use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key vault use case: %w", err)
	}

	useCase := vaultUsecase.NewKeyVaultUseCase(repo, connector, c.Logger())
	return vaultUsecase.NewKeyVaultUseCaseWithMetrics(useCase, businessMetrics), nil
}
