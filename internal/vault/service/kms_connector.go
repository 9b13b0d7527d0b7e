package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"gocloud.dev/secrets"
	"gocloud.dev/secrets/gcpkms"
	"gocloud.dev/secrets/localsecrets"
	"golang.org/x/oauth2/google"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"

	// Register the remaining KMS provider drivers for URI-based keepers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
)

const cloudKMSScope = "https://www.googleapis.com/auth/cloudkms"

// Credentials is the KMS credential set handed to the connector.
type Credentials struct {
	// Email and PrivateKey identify a GCP service account. When both are empty the
	// provider's default credential chain is used.
	Email      string
	PrivateKey string
	// LocalKey is the base64-encoded 32-byte key of the local provider.
	LocalKey string
}

// ConnectorConfig configures a KMS connector.
type ConnectorConfig struct {
	// KeyURI, when set, replaces the URI derived from the reference. It must address the
	// same key (scheme, host and path) and may only add driver query parameters
	// (e.g., "awskms:///alias/app?region=us-east-1&awssdk=v2").
	KeyURI      string
	Credentials Credentials
}

// keeper is the subset of *secrets.Keeper the connector uses.
type keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// gocloudConnector implements KMSConnector with gocloud.dev/secrets keepers.
// Keepers are opened lazily, once per master key, and reused.
type gocloudConnector struct {
	cfg ConnectorConfig

	mu       sync.Mutex
	keepers  map[string]keeper
	cleanups []func()
}

// NewKMSConnector creates a connector for the given credential set.
func NewKMSConnector(cfg ConnectorConfig) KMSConnector {
	return &gocloudConnector{
		cfg:     cfg,
		keepers: make(map[string]keeper),
	}
}

// WrapKey encrypts plaintext with the master key's keeper.
func (c *gocloudConnector) WrapKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	plaintext []byte,
) ([]byte, error) {
	k, err := c.keeperFor(ctx, ref)
	if err != nil {
		return nil, err
	}
	wrapped, err := k.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: wrap with %s master key: %v", vaultDomain.ErrKmsUnavailable, ref.Provider, err)
	}
	return wrapped, nil
}

// UnwrapKey decrypts wrapped key material with the master key's keeper.
func (c *gocloudConnector) UnwrapKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	wrapped []byte,
) ([]byte, error) {
	k, err := c.keeperFor(ctx, ref)
	if err != nil {
		return nil, err
	}
	plaintext, err := k.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap with %s master key: %v", vaultDomain.ErrKmsUnavailable, ref.Provider, err)
	}
	return plaintext, nil
}

// Close closes every opened keeper and releases dialed clients.
func (c *gocloudConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for uri, k := range c.keepers {
		if err := k.Close(); err != nil && firstErr == nil {
			firstErr = apperrors.Wrapf(err, "failed to close keeper %s", redactURI(uri))
		}
	}
	for _, cleanup := range c.cleanups {
		cleanup()
	}
	c.keepers = make(map[string]keeper)
	c.cleanups = nil
	return firstErr
}

// keeperFor returns the cached keeper for ref, opening it on first use.
func (c *gocloudConnector) keeperFor(ctx context.Context, ref vaultDomain.MasterKeyReference) (keeper, error) {
	cacheKey, err := c.keeperURI(ref)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.keepers[cacheKey]; ok {
		return k, nil
	}

	k, err := c.openKeeper(ctx, ref, cacheKey)
	if err != nil {
		return nil, err
	}
	c.keepers[cacheKey] = k
	return k, nil
}

func (c *gocloudConnector) openKeeper(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	uri string,
) (keeper, error) {
	switch {
	case ref.Provider == vaultDomain.ProviderLocal:
		return c.openLocalKeeper()
	case c.cfg.KeyURI == "" && ref.Provider == vaultDomain.ProviderGCP && c.hasServiceAccount():
		return c.openGCPKeeper(ctx, ref)
	}

	k, err := secrets.OpenKeeper(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open KMS keeper: %v", vaultDomain.ErrKmsUnavailable, err)
	}
	return k, nil
}

func (c *gocloudConnector) openLocalKeeper() (keeper, error) {
	raw, err := base64.StdEncoding.DecodeString(c.cfg.Credentials.LocalKey)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("%w: local provider requires a base64-encoded 32-byte key", vaultDomain.ErrInvalidMasterKey)
	}
	var key [32]byte
	copy(key[:], raw)
	vaultDomain.Zero(raw)
	return localsecrets.NewKeeper(key), nil
}

func (c *gocloudConnector) openGCPKeeper(ctx context.Context, ref vaultDomain.MasterKeyReference) (keeper, error) {
	creds, err := google.CredentialsFromJSON(ctx, c.serviceAccountJSON(), cloudKMSScope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid service account credentials: %v", vaultDomain.ErrInvalidMasterKey, err)
	}

	client, done, err := gcpkms.Dial(ctx, creds.TokenSource)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to dial cloud kms: %v", vaultDomain.ErrKmsUnavailable, err)
	}
	c.cleanups = append(c.cleanups, done)

	return gcpkms.OpenKeeper(client, gcpResourceID(ref), nil), nil
}

func (c *gocloudConnector) hasServiceAccount() bool {
	return c.cfg.Credentials.Email != "" && c.cfg.Credentials.PrivateKey != ""
}

func (c *gocloudConnector) serviceAccountJSON() []byte {
	// Only the fields the JWT token source needs.
	return fmt.Appendf(nil,
		`{"type":"service_account","client_email":%q,"private_key":%q,"token_uri":"https://oauth2.googleapis.com/token"}`,
		c.cfg.Credentials.Email, c.cfg.Credentials.PrivateKey,
	)
}

// keeperURI maps a master key reference to the gocloud keeper URI that serves it.
// The stored masterKey document must name the key that wrapped the material, so an
// override pointing anywhere else is refused.
func (c *gocloudConnector) keeperURI(ref vaultDomain.MasterKeyReference) (string, error) {
	derived, err := KeeperURI(ref)
	if err != nil {
		return "", err
	}
	if c.cfg.KeyURI == "" {
		return derived, nil
	}
	if err := checkOverride(derived, c.cfg.KeyURI); err != nil {
		return "", err
	}
	return c.cfg.KeyURI, nil
}

// checkOverride reports whether override addresses the same key as derived. Query
// parameters present in derived must keep their value; extra ones are allowed.
func checkOverride(derived, override string) error {
	want, err := url.Parse(derived)
	if err != nil {
		return fmt.Errorf("%w: invalid keeper uri: %v", vaultDomain.ErrInvalidMasterKey, err)
	}
	got, err := url.Parse(override)
	if err != nil {
		return fmt.Errorf("%w: invalid KMS key uri override: %v", vaultDomain.ErrInvalidMasterKey, err)
	}

	if !strings.EqualFold(got.Scheme, want.Scheme) || got.Host != want.Host ||
		strings.TrimSuffix(got.Path, "/") != strings.TrimSuffix(want.Path, "/") {
		return fmt.Errorf(
			"%w: KMS key uri %s does not address master key %s",
			vaultDomain.ErrInvalidMasterKey, redactURI(override), redactURI(derived),
		)
	}

	gotQuery := got.Query()
	for name, values := range want.Query() {
		if gotQuery.Get(name) != values[0] {
			return fmt.Errorf(
				"%w: KMS key uri parameter %q disagrees with the master key locator",
				vaultDomain.ErrInvalidMasterKey, name,
			)
		}
	}
	return nil
}

// KeeperURI derives the gocloud.dev/secrets URI for a master key reference.
// The local provider has no external URI and maps to "local://".
func KeeperURI(ref vaultDomain.MasterKeyReference) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	switch ref.Provider {
	case vaultDomain.ProviderLocal:
		return "local://", nil
	case vaultDomain.ProviderGCP:
		return "gcpkms://" + gcpResourceID(ref), nil
	case vaultDomain.ProviderAWS:
		q := url.Values{}
		q.Set("region", ref.Get(vaultDomain.LocatorRegion))
		return "awskms:///" + ref.Get(vaultDomain.LocatorKey) + "?" + q.Encode(), nil
	case vaultDomain.ProviderAzure:
		uri := fmt.Sprintf("azurekeyvault://%s/keys/%s",
			ref.Get(vaultDomain.LocatorKeyVaultEndpoint),
			ref.Get(vaultDomain.LocatorKeyName),
		)
		if v := ref.Get(vaultDomain.LocatorKeyVersion); v != "" {
			uri += "/" + v
		}
		return uri, nil
	default:
		return "", fmt.Errorf("%w: unsupported provider %q", vaultDomain.ErrInvalidMasterKey, ref.Provider)
	}
}

func gcpResourceID(ref vaultDomain.MasterKeyReference) string {
	return gcpkms.KeyResourceID(
		ref.Get(vaultDomain.LocatorProjectID),
		ref.Get(vaultDomain.LocatorLocation),
		ref.Get(vaultDomain.LocatorKeyRing),
		ref.Get(vaultDomain.LocatorKeyName),
	)
}

// redactURI strips query parameters, which may carry tokens, from a keeper URI.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<invalid uri>"
	}
	u.RawQuery = ""
	return u.String()
}
