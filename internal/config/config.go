package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Agent     AgentConfig
	Simulator SimulatorConfig
	JWT       JWTConfig
	Database  DatabaseConfig
}

// AgentConfig holds the tracking agent configuration.
type AgentConfig struct {
	ServerURL         string
	APIToken          string
	RealtimeURL       string
	CompanionURL      string
	ControlPort       int
	TickInterval      time.Duration
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

// SimulatorConfig holds the backend simulator configuration.
type SimulatorConfig struct {
	Port       int
	EmployeeID string
}

// JWTConfig holds JWT configuration for the simulator.
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type DatabaseConfig struct {
	// URL is optional; when empty the simulator keeps sessions in memory.
	URL string
}

func Load() (*Config, error) {
	// A .env file is optional; explicit environment variables win either way.
	_ = godotenv.Load()

	config := &Config{}

	controlPort, err := strconv.Atoi(getEnv("AGENT_CONTROL_PORT", "7070"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_CONTROL_PORT: %w", err)
	}

	tickInterval, err := time.ParseDuration(getEnv("AGENT_TICK_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_TICK_INTERVAL: %w", err)
	}

	pollInterval, err := time.ParseDuration(getEnv("AGENT_POLL_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_POLL_INTERVAL: %w", err)
	}

	heartbeatInterval, err := time.ParseDuration(getEnv("AGENT_HEARTBEAT_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_HEARTBEAT_INTERVAL: %w", err)
	}

	config.Agent = AgentConfig{
		ServerURL:         getEnv("SERVER_URL", "http://localhost:5001/api/v1"),
		APIToken:          getEnv("API_TOKEN", ""),
		RealtimeURL:       getEnv("REALTIME_URL", ""),
		CompanionURL:      getEnv("COMPANION_URL", ""),
		ControlPort:       controlPort,
		TickInterval:      tickInterval,
		PollInterval:      pollInterval,
		HeartbeatInterval: heartbeatInterval,
	}

	simulatorPort, err := strconv.Atoi(getEnv("SIMULATOR_PORT", "5001"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIMULATOR_PORT: %w", err)
	}

	config.Simulator = SimulatorConfig{
		Port:       simulatorPort,
		EmployeeID: getEnv("SIMULATOR_EMPLOYEE_ID", "emp-0001"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	config.Database = DatabaseConfig{
		URL: getEnv("DATABASE_URL", ""),
	}

	return config, nil
}

// ValidateAgent validates the fields the tracking agent requires.
func (c *Config) ValidateAgent() error {
	if c.Agent.ServerURL == "" {
		return fmt.Errorf("SERVER_URL is required")
	}
	if c.Agent.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required")
	}
	if c.Agent.TickInterval <= 0 {
		return fmt.Errorf("AGENT_TICK_INTERVAL must be positive")
	}
	if c.Agent.HeartbeatInterval <= 0 {
		return fmt.Errorf("AGENT_HEARTBEAT_INTERVAL must be positive")
	}
	return nil
}

// ValidateSimulator validates the fields the simulator requires.
func (c *Config) ValidateSimulator() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Simulator.EmployeeID == "" {
		return fmt.Errorf("SIMULATOR_EMPLOYEE_ID is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
