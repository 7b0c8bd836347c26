package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	ML       MLConfig       `json:"ml" yaml:"ml"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

type ServerConfig struct {
	Port  string `json:"port" yaml:"port"`
	Debug bool   `json:"debug" yaml:"debug"`

	// RequestTimeoutSeconds bounds a whole request including every model call.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`

	// RateLimit is the allowed requests per second per client IP; 0 disables it.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
}

// RequestTimeout returns the per-request deadline.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite", "postgres" or "firestore"

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`

	// DSN is the Postgres connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// ProjectID and CredentialsFile configure Firestore.
	ProjectID       string `json:"project_id" yaml:"project_id"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

type MLConfig struct {
	Type        string  `json:"type" yaml:"type"` // "vertex", "gemini" or "fixture"
	Model       string  `json:"model" yaml:"model"`
	Temperature float32 `json:"temperature" yaml:"temperature"`

	Vertex  VertexConfig  `json:"vertex" yaml:"vertex"`
	Gemini  GeminiConfig  `json:"gemini" yaml:"gemini"`
	Fixture FixtureConfig `json:"fixture" yaml:"fixture"`
}

type VertexConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Location        string `json:"location" yaml:"location"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

type GeminiConfig struct {
	APIKey string `json:"api_key" yaml:"api_key"`
}

type FixtureConfig struct {
	// Path is a JSON file mapping prompt names to canned model answers.
	Path string `json:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

var (
	mlTypes   = []string{"vertex", "gemini", "fixture"}
	dbDrivers = []string{"sqlite", "postgres", "firestore"}
)

// LoadConfig loads configuration from a JSON or YAML file, then applies .env and
// environment overrides. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var config Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := decode(configPath, data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	config.applyEnvOverrides()
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func decode(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Server.Port, "PORT")
	setString(&c.ML.Type, "CALH2O_ML_TYPE")
	setString(&c.ML.Model, "CALH2O_MODEL")
	setString(&c.ML.Vertex.ProjectID, "GOOGLE_PROJECT_ID")
	setString(&c.ML.Vertex.Location, "GOOGLE_LOCATION")
	setString(&c.ML.Vertex.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	setString(&c.ML.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.ML.Fixture.Path, "CALH2O_FIXTURES")
	setString(&c.Database.Driver, "CALH2O_DB_DRIVER")
	setString(&c.Database.Path, "CALH2O_DB_PATH")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("CALH2O_REQUEST_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.RequestTimeoutSeconds = secs
		}
	}

	// Firestore shares the Google project and credentials unless set explicitly.
	if c.Database.ProjectID == "" {
		c.Database.ProjectID = c.ML.Vertex.ProjectID
	}
	if c.Database.CredentialsFile == "" {
		c.Database.CredentialsFile = c.ML.Vertex.CredentialsFile
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = 540
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "calh2o.db"
	}
	if c.ML.Type == "" {
		c.ML.Type = "vertex"
	}
	if c.ML.Model == "" {
		c.ML.Model = "gemini-2.0-flash"
	}
	if c.ML.Vertex.Location == "" {
		c.ML.Vertex.Location = "us-central1"
	}
	if c.Server.Debug {
		c.Log.Level = "debug"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports configuration that cannot start a server.
func (c *Config) Validate() error {
	if !slices.Contains(mlTypes, c.ML.Type) {
		return fmt.Errorf("unsupported ml type %q, expected one of %v", c.ML.Type, mlTypes)
	}
	if !slices.Contains(dbDrivers, c.Database.Driver) {
		return fmt.Errorf("unsupported database driver %q, expected one of %v", c.Database.Driver, dbDrivers)
	}
	switch c.ML.Type {
	case "vertex":
		if c.ML.Vertex.ProjectID == "" {
			return fmt.Errorf("ml.vertex.project_id is not set")
		}
	case "gemini":
		if c.ML.Gemini.APIKey == "" {
			return fmt.Errorf("ml.gemini.api_key is not set")
		}
	case "fixture":
		if c.ML.Fixture.Path == "" {
			return fmt.Errorf("ml.fixture.path is not set")
		}
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is not set")
		}
	case "firestore":
		if c.Database.ProjectID == "" {
			return fmt.Errorf("database.project_id is not set")
		}
	}
	return nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("CALH2O_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}
