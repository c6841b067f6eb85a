package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backend names.
const (
	BackendLocal = "local"
	BackendGraph = "graph"
	BackendMinIO = "minio"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP    `envPrefix:"HTTP_"`
	Storage  Storage `envPrefix:"STORAGE_"`
	Graph    Graph   `envPrefix:"GRAPH_"`
	MinIO    MinIO   `envPrefix:"MINIO_"`
	Session  Session `envPrefix:"SESSION_"`
	Exam     Exam    `envPrefix:"EXAM_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port               string `env:"PORT" envDefault:"8080"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// Storage contains record store parameters shared by all backends.
type Storage struct {
	// Backend is one of local, graph or minio. Empty selects graph when
	// Graph credentials are present and local otherwise.
	Backend      string        `env:"BACKEND"`
	DataDir      string        `env:"DATA_DIR" envDefault:"data"`
	DocumentPath string        `env:"DOCUMENT_PATH" envDefault:"ExamApp/exam_data.xlsx"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Graph contains the document API and identity provider parameters.
type Graph struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	TenantID     string `env:"TENANT_ID"`
	DriveUser    string `env:"DRIVE_USER"`
	TokenURL     string `env:"TOKEN_URL"`
	BaseURL      string `env:"BASE_URL" envDefault:"https://graph.microsoft.com/v1.0"`
	Scope        string `env:"SCOPE" envDefault:"https://graph.microsoft.com/.default"`
}

// Endpoint returns the OAuth2 token endpoint of the tenant.
func (g Graph) Endpoint() string {
	if g.TokenURL != "" {
		return g.TokenURL
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", g.TenantID)
}

// MinIO contains object storage parameters.
type MinIO struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"examcert-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"examcert-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"examcert-data"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Session contains session token parameters.
type Session struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"12h"`
}

// Exam contains exam parameters.
type Exam struct {
	PassScore int `env:"PASS_SCORE" envDefault:"60"`
}

// StorageBackend returns the effective backend name.
func (c *Config) StorageBackend() string {
	if c.Storage.Backend != "" {
		return c.Storage.Backend
	}
	if c.Graph.ClientID != "" {
		return BackendGraph
	}
	return BackendLocal
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	return NewConfigWith()
}

// NewConfigWith loads configuration from environment variables and applies
// overrides before validation.
func NewConfigWith(overrides ...func(*Config)) (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.StorageBackend() {
	case BackendLocal:
		if c.Storage.DataDir == "" {
			return errors.New("STORAGE_DATA_DIR is required for the local backend")
		}
	case BackendGraph:
		var missing []string
		if c.Graph.ClientID == "" {
			missing = append(missing, "GRAPH_CLIENT_ID")
		}
		if c.Graph.ClientSecret == "" {
			missing = append(missing, "GRAPH_CLIENT_SECRET")
		}
		if c.Graph.TenantID == "" && c.Graph.TokenURL == "" {
			missing = append(missing, "GRAPH_TENANT_ID")
		}
		if c.Graph.DriveUser == "" {
			missing = append(missing, "GRAPH_DRIVE_USER")
		}
		if len(missing) > 0 {
			return fmt.Errorf("graph backend requires %v", missing)
		}
	case BackendMinIO:
		if c.MinIO.Bucket == "" {
			return errors.New("MINIO_BUCKET_NAME is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q (supported: local, graph, minio)", c.Storage.Backend)
	}

	if c.Storage.Timeout <= 0 {
		return errors.New("STORAGE_TIMEOUT must be positive")
	}
	if c.Exam.PassScore < 0 || c.Exam.PassScore > 100 {
		return fmt.Errorf("EXAM_PASS_SCORE must be within 0..100, got %d", c.Exam.PassScore)
	}
	return nil
}
