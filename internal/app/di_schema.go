package app

import (
	"fmt"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	schemaRepository "github.com/allisson/fieldvault/internal/schema/repository"
	schemaService "github.com/allisson/fieldvault/internal/schema/service"
	schemaUsecase "github.com/allisson/fieldvault/internal/schema/usecase"
)

// Registry loads the provisioning registry from REGISTRY_PATH. It is read on every call
// so a command always sees the file as it is now.
func (c *Container) Registry() (*schemaDomain.Registry, error) {
	registry, err := schemaService.LoadRegistry(c.config.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry %s: %w", c.config.RegistryPath, err)
	}
	return registry, nil
}

// CollectionRepository returns the collection repository bound to DB_NAME.
func (c *Container) CollectionRepository() (schemaUsecase.CollectionRepository, error) {
	var err error
	c.collectionRepoInit.Do(func() {
		c.collectionRepo, err = c.initCollectionRepository()
		if err != nil {
			c.setInitError("collectionRepo", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("collectionRepo"); storedErr != nil {
		return nil, storedErr
	}
	return c.collectionRepo, nil
}

// ProvisionerUseCase returns the provisioner use case, decorated with business metrics.
func (c *Container) ProvisionerUseCase() (schemaUsecase.ProvisionerUseCase, error) {
	var err error
	c.provisionerUseCaseInit.Do(func() {
		c.provisionerUseCase, err = c.initProvisionerUseCase()
		if err != nil {
			c.setInitError("provisionerUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("provisionerUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.provisionerUseCase, nil
}

// KeyResolver returns the resolver that picks the data key of a provisioning run.
func (c *Container) KeyResolver() (schemaUsecase.KeyResolver, error) {
	var err error
	c.keyResolverInit.Do(func() {
		c.keyResolver, err = c.initKeyResolver()
		if err != nil {
			c.setInitError("keyResolver", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("keyResolver"); storedErr != nil {
		return nil, storedErr
	}
	return c.keyResolver, nil
}

// DriverUseCase returns the provisioning driver, decorated with business metrics.
func (c *Container) DriverUseCase() (schemaUsecase.DriverUseCase, error) {
	var err error
	c.driverUseCaseInit.Do(func() {
		c.driverUseCase, err = c.initDriverUseCase()
		if err != nil {
			c.setInitError("driverUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("driverUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.driverUseCase, nil
}

// initCollectionRepository creates the collection repository.
func (c *Container) initCollectionRepository() (schemaUsecase.CollectionRepository, error) {
	client, err := c.StoreClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get store client for collection repository: %w", err)
	}
	return schemaRepository.NewMongoCollectionRepository(client.Database(c.config.DBName)), nil
}

// initProvisionerUseCase creates the provisioner use case with all its dependencies.
func (c *Container) initProvisionerUseCase() (schemaUsecase.ProvisionerUseCase, error) {
	repo, err := c.CollectionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get collection repository for provisioner use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for provisioner use case: %w", err)
	}

	useCase := schemaUsecase.NewProvisionerUseCase(repo, c.Logger())
	return schemaUsecase.NewProvisionerUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initKeyResolver creates the key resolver from EXISTING_DEK_B64, DATA_KEY_ALT_NAME and the master key.
func (c *Container) initKeyResolver() (schemaUsecase.KeyResolver, error) {
	keyVault, err := c.KeyVaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key vault use case for key resolver: %w", err)
	}

	source := schemaUsecase.KeySource{
		ExistingKeyID: c.config.ExistingDEKBase64,
		AltName:       c.config.DataKeyAltName,
	}
	if source.ExistingKeyID == "" {
		source.MasterKey, err = c.MasterKey()
		if err != nil {
			return nil, fmt.Errorf("failed to get master key for key resolver: %w", err)
		}
	}

	return schemaUsecase.NewKeyResolver(keyVault, source, c.Logger()), nil
}

// initDriverUseCase creates the provisioning driver with all its dependencies.
func (c *Container) initDriverUseCase() (schemaUsecase.DriverUseCase, error) {
	provisioner, err := c.ProvisionerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get provisioner use case for driver use case: %w", err)
	}

	keys, err := c.KeyResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key resolver for driver use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for driver use case: %w", err)
	}

	useCase := schemaUsecase.NewDriverUseCase(provisioner, keys, c.config.ProvisionConcurrency, c.Logger())
	return schemaUsecase.NewDriverUseCaseWithMetrics(useCase, businessMetrics), nil
}
