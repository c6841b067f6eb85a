package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultValues(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, false, cfg.HTTP.EnableHTTPS)
	assert.Equal(t, "cert.pem", cfg.HTTP.CertFileName)
	assert.Equal(t, "key.pem", cfg.HTTP.PrivateKeyFileName)
	assert.Equal(t, "", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "ExamApp/exam_data.xlsx", cfg.Storage.DocumentPath)
	assert.Equal(t, 15*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.Graph.BaseURL)
	assert.Equal(t, "https://graph.microsoft.com/.default", cfg.Graph.Scope)
	assert.Equal(t, "localhost:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "examcert-data", cfg.MinIO.Bucket)
	assert.Equal(t, "devsecret", cfg.Session.Secret)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 60, cfg.Exam.PassScore)
	assert.Equal(t, BackendLocal, cfg.StorageBackend())
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "log level override",
			envVars: map[string]string{
				"LOG_LEVEL": "-4",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, -4, cfg.LogLevel)
			},
		},
		{
			name: "http config override",
			envVars: map[string]string{
				"HTTP_PORT":                  "9090",
				"HTTP_ENABLE_HTTPS":          "true",
				"HTTP_CERT_FILE_NAME":        "custom.pem",
				"HTTP_PRIVATE_KEY_FILE_NAME": "custom-key.pem",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "9090", cfg.HTTP.Port)
				assert.Equal(t, true, cfg.HTTP.EnableHTTPS)
				assert.Equal(t, "custom.pem", cfg.HTTP.CertFileName)
				assert.Equal(t, "custom-key.pem", cfg.HTTP.PrivateKeyFileName)
			},
		},
		{
			name: "graph credentials select graph backend",
			envVars: map[string]string{
				"GRAPH_CLIENT_ID":     "client",
				"GRAPH_CLIENT_SECRET": "secret",
				"GRAPH_TENANT_ID":     "tenant",
				"GRAPH_DRIVE_USER":    "owner@example.com",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, BackendGraph, cfg.StorageBackend())
				assert.Equal(t, "https://login.microsoftonline.com/tenant/oauth2/v2.0/token", cfg.Graph.Endpoint())
			},
		},
		{
			name: "explicit backend wins over credentials",
			envVars: map[string]string{
				"STORAGE_BACKEND":  "local",
				"STORAGE_DATA_DIR": "/var/lib/examcert",
				"GRAPH_CLIENT_ID":  "client",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, BackendLocal, cfg.StorageBackend())
				assert.Equal(t, "/var/lib/examcert", cfg.Storage.DataDir)
			},
		},
		{
			name: "minio config override",
			envVars: map[string]string{
				"STORAGE_BACKEND":   "minio",
				"MINIO_ENDPOINT":    "minio.example.com:9000",
				"MINIO_ACCESS_KEY":  "access123",
				"MINIO_SECRET_KEY":  "secret123",
				"MINIO_BUCKET_NAME": "custom-bucket",
				"MINIO_USE_SSL":     "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, BackendMinIO, cfg.StorageBackend())
				assert.Equal(t, "minio.example.com:9000", cfg.MinIO.Endpoint)
				assert.Equal(t, "access123", cfg.MinIO.AccessKey)
				assert.Equal(t, "secret123", cfg.MinIO.SecretKey)
				assert.Equal(t, "custom-bucket", cfg.MinIO.Bucket)
				assert.Equal(t, true, cfg.MinIO.UseSSL)
			},
		},
		{
			name: "token url override",
			envVars: map[string]string{
				"GRAPH_TOKEN_URL": "http://127.0.0.1:1/token",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "http://127.0.0.1:1/token", cfg.Graph.Endpoint())
			},
		},
		{
			name: "session and exam override",
			envVars: map[string]string{
				"SESSION_SECRET":  "s3cr3t",
				"SESSION_TTL":     "30m",
				"EXAM_PASS_SCORE": "80",
				"STORAGE_TIMEOUT": "2s",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "s3cr3t", cfg.Session.Secret)
				assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
				assert.Equal(t, 80, cfg.Exam.PassScore)
				assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			require.NoError(t, err)

			tt.expected(cfg)
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantMsg string
	}{
		{
			name:    "unknown backend",
			envVars: map[string]string{"STORAGE_BACKEND": "sqlite"},
			wantMsg: "unknown storage backend",
		},
		{
			name: "graph without secret",
			envVars: map[string]string{
				"STORAGE_BACKEND": "graph",
				"GRAPH_CLIENT_ID": "client",
			},
			wantMsg: "GRAPH_CLIENT_SECRET",
		},
		{
			name:    "pass score out of range",
			envVars: map[string]string{"EXAM_PASS_SCORE": "120"},
			wantMsg: "EXAM_PASS_SCORE",
		},
		{
			name:    "non positive timeout",
			envVars: map[string]string{"STORAGE_TIMEOUT": "0s"},
			wantMsg: "STORAGE_TIMEOUT",
		},
		{
			name:    "unparsable duration",
			envVars: map[string]string{"STORAGE_TIMEOUT": "soon"},
			wantMsg: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewConfigWith_OverridesApplyBeforeValidation(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")

	cfg, err := NewConfigWith(func(c *Config) {
		c.Storage.Backend = BackendLocal
		c.Storage.DataDir = "/tmp/records"
	})
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, cfg.StorageBackend())
	assert.Equal(t, "/tmp/records", cfg.Storage.DataDir)

	_, err = NewConfigWith(func(c *Config) { c.Exam.PassScore = -1 })
	require.Error(t, err)
}
