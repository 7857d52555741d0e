// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fawad-mazhar/shopfloor/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	NATS      NATSConfig      `yaml:"nats"`
	LevelDB   LevelDBConfig   `yaml:"leveldb"`
	Worker    WorkerConfig    `yaml:"worker"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	URL string `yaml:"-"`
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL           string `yaml:"-"`
	EventsSubject string `yaml:"eventsSubject"`
	MovesSubject  string `yaml:"movesSubject"`
	QueueGroup    string `yaml:"queueGroup"`
}

// LevelDBConfig holds LevelDB configuration
type LevelDBConfig struct {
	Path     string `yaml:"path"`
	TTLHours int    `yaml:"ttlHours"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	MaxWorkers      int `yaml:"maxWorkers"`
	WorkTimeout     int `yaml:"workTimeout"`
	ShutdownTimeout int `yaml:"shutdownTimeout"`
}

// SchedulerConfig holds the demo job set served by POST /sessions/demo.
// A MachineCount of 0 derives the count from the jobs.
type SchedulerConfig struct {
	MachineCount int                    `yaml:"machineCount"`
	Jobs         []models.JobDefinition `yaml:"jobs"`
}

// Default configuration values
const (
	DefaultServerPort         = "8080"
	DefaultServerReadTimeout  = 30
	DefaultServerWriteTimeout = 30
	DefaultMaxWorkers         = 10
	DefaultWorkTimeout        = 30
	DefaultShutdownTimeout    = 30
	DefaultLevelDBPath        = "./data/leveldb"
	DefaultCacheTTLHours      = 24
	DefaultEventsSubject      = "shopfloor.events"
	DefaultMovesSubject       = "shopfloor.moves"
	DefaultQueueGroup         = "shopfloor"
)

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// orDefault keeps a YAML value when set, else falls back
func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

func orDefaultInt(value, defaultValue int) int {
	if value > 0 {
		return value
	}
	return defaultValue
}

// Load creates a new configuration from the YAML file with environment variable overrides
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds the configuration from YAML bytes and the environment
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Check mandatory environment variables
	postgresURL := os.Getenv("SHOPFLOOR_POSTGRES_URL")
	if postgresURL == "" {
		return nil, fmt.Errorf("SHOPFLOOR_POSTGRES_URL environment variable is required")
	}

	natsURL := os.Getenv("SHOPFLOOR_NATS_URL")
	if natsURL == "" {
		return nil, fmt.Errorf("SHOPFLOOR_NATS_URL environment variable is required")
	}

	// Override/set configuration with environment variables and defaults
	config.Server = ServerConfig{
		Port:         getEnv("SHOPFLOOR_SERVER_PORT", orDefault(config.Server.Port, DefaultServerPort)),
		ReadTimeout:  getEnvInt("SHOPFLOOR_SERVER_READ_TIMEOUT", orDefaultInt(config.Server.ReadTimeout, DefaultServerReadTimeout)),
		WriteTimeout: getEnvInt("SHOPFLOOR_SERVER_WRITE_TIMEOUT", orDefaultInt(config.Server.WriteTimeout, DefaultServerWriteTimeout)),
	}

	config.Postgres = PostgresConfig{
		URL: postgresURL,
	}

	config.NATS = NATSConfig{
		URL:           natsURL,
		EventsSubject: getEnv("SHOPFLOOR_NATS_EVENTS_SUBJECT", orDefault(config.NATS.EventsSubject, DefaultEventsSubject)),
		MovesSubject:  getEnv("SHOPFLOOR_NATS_MOVES_SUBJECT", orDefault(config.NATS.MovesSubject, DefaultMovesSubject)),
		QueueGroup:    getEnv("SHOPFLOOR_NATS_QUEUE_GROUP", orDefault(config.NATS.QueueGroup, DefaultQueueGroup)),
	}

	config.LevelDB = LevelDBConfig{
		Path:     getEnv("SHOPFLOOR_LEVELDB_PATH", orDefault(config.LevelDB.Path, DefaultLevelDBPath)),
		TTLHours: getEnvInt("SHOPFLOOR_LEVELDB_TTL_HOURS", orDefaultInt(config.LevelDB.TTLHours, DefaultCacheTTLHours)),
	}

	config.Worker = WorkerConfig{
		MaxWorkers:      getEnvInt("SHOPFLOOR_WORKER_MAX_WORKERS", orDefaultInt(config.Worker.MaxWorkers, DefaultMaxWorkers)),
		WorkTimeout:     getEnvInt("SHOPFLOOR_WORKER_WORK_TIMEOUT", orDefaultInt(config.Worker.WorkTimeout, DefaultWorkTimeout)),
		ShutdownTimeout: getEnvInt("SHOPFLOOR_WORKER_SHUTDOWN_TIMEOUT", orDefaultInt(config.Worker.ShutdownTimeout, DefaultShutdownTimeout)),
	}

	// Initialize empty job slice if none were loaded from file
	if config.Scheduler.Jobs == nil {
		config.Scheduler.Jobs = make([]models.JobDefinition, 0)
	}

	return &config, nil
}
