package sftp

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/gobeaver/beaver-kit/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Config holds SFTP connection configuration
type Config struct {
	Host           string `env:"FILESNIFF_SFTP_HOST"`
	Port           int    `env:"FILESNIFF_SFTP_PORT,default:22"`
	Username       string `env:"FILESNIFF_SFTP_USERNAME"`
	Password       string `env:"FILESNIFF_SFTP_PASSWORD"`
	PrivateKeyFile string `env:"FILESNIFF_SFTP_PRIVATE_KEY_FILE"`
	KnownHostsFile string `env:"FILESNIFF_SFTP_KNOWN_HOSTS_FILE"`
	BasePath       string `env:"FILESNIFF_SFTP_BASE_PATH"`

	// PEM encoded private key, used instead of PrivateKeyFile when set
	PrivateKey []byte
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Address returns host:port, defaulting to port 22
func (c *Config) Address() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// clientConfig builds the SSH client configuration. Without a known_hosts
// file host keys are not verified.
func (c *Config) clientConfig() (*ssh.ClientConfig, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("invalid config: SFTP host is required")
	}

	sshConfig := &ssh.ClientConfig{
		User:            c.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	if c.KnownHostsFile != "" {
		callback, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		sshConfig.HostKeyCallback = callback
	}

	key := c.PrivateKey
	if len(key) == 0 && c.PrivateKeyFile != "" {
		data, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		key = data
	}
	if len(key) > 0 {
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		sshConfig.Auth = append(sshConfig.Auth, ssh.PublicKeys(signer))
	}

	if c.Password != "" {
		sshConfig.Auth = append(sshConfig.Auth, ssh.Password(c.Password))
	}

	if len(sshConfig.Auth) == 0 {
		return nil, fmt.Errorf("no authentication method provided")
	}

	return sshConfig, nil
}

// NewFromConfig dials the server cfg describes
func NewFromConfig(cfg *Config) (*Adapter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("invalid config: config is nil")
	}
	return Dial(*cfg)
}
