package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/gobeaver/beaver-kit/config"
)

// Config holds the Azure Blob Storage connection settings. A connection
// string takes precedence over the account name and key; with neither the
// container is read anonymously.
type Config struct {
	AccountName      string `env:"FILESNIFF_AZURE_ACCOUNT_NAME"`
	AccountKey       string `env:"FILESNIFF_AZURE_ACCOUNT_KEY"`
	ConnectionString string `env:"FILESNIFF_AZURE_CONNECTION_STRING"`
	ContainerName    string `env:"FILESNIFF_AZURE_CONTAINER_NAME"`
	Prefix           string `env:"FILESNIFF_AZURE_PREFIX"`
	Endpoint         string `env:"FILESNIFF_AZURE_ENDPOINT"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServiceURL returns the blob endpoint of the configured account
func (c *Config) ServiceURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.AccountName)
}

// NewFromConfig creates an adapter for the container cfg names
func NewFromConfig(cfg *Config) (*Adapter, error) {
	if cfg == nil || cfg.ContainerName == "" {
		return nil, fmt.Errorf("invalid config: azure container name is required")
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	var opts []AdapterOption
	if cfg.Prefix != "" {
		opts = append(opts, WithPrefix(cfg.Prefix))
	}

	return New(client, cfg.ContainerName, opts...), nil
}

func newClient(cfg *Config) (*azblob.Client, error) {
	switch {
	case cfg.ConnectionString != "":
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.AccountName != "" && cfg.AccountKey != "":
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, err
		}
		return azblob.NewClientWithSharedKeyCredential(cfg.ServiceURL(), cred, nil)
	case cfg.AccountName != "" || cfg.Endpoint != "":
		return azblob.NewClientWithNoCredential(cfg.ServiceURL(), nil)
	default:
		return nil, fmt.Errorf("azure account name, endpoint or connection string is required")
	}
}
