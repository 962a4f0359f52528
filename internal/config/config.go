package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "REPORTS"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Sheets    SheetsConfig    `yaml:"sheets" envconfig:"SHEETS"`
	Downloads DownloadsConfig `yaml:"downloads" envconfig:"DOWNLOADS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	MaxLocators     int           `yaml:"max_locators" envconfig:"MAX_LOCATORS" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SheetsConfig controls access to the remote spreadsheets.
type SheetsConfig struct {
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE" validate:"required"`
	Retries         int           `yaml:"retries" envconfig:"RETRIES" validate:"min=1"`
	InitialDelay    time.Duration `yaml:"initial_delay" envconfig:"INITIAL_DELAY" validate:"gte=0"`
	RatePerMinute   int           `yaml:"rate_per_minute" envconfig:"RATE_PER_MINUTE" validate:"gte=0"`
	StrictFetch     bool          `yaml:"strict_fetch" envconfig:"STRICT_FETCH"`
}

// DownloadsConfig controls how long generated documents stay downloadable.
type DownloadsConfig struct {
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL" validate:"gt=0"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"CLEANUP_INTERVAL" validate:"gt=0"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" validate:"min=1"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" validate:"min=1"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" validate:"gt=0"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" validate:"gtfield=PingPeriod"`
}

// Load builds the configuration from defaults, the YAML file at path (or
// the first config.yaml found in the usual locations when path is empty)
// and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks every section against its constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    10 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"http://localhost:8080"},
			MaxLocators:     50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Sheets: SheetsConfig{
			CredentialsFile: "credentials.json",
			Retries:         5,
			InitialDelay:    2 * time.Second,
			RatePerMinute:   60,
		},
		Downloads: DownloadsConfig{
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
