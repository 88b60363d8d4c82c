package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5001/api/v1", config.Agent.ServerURL)
	assert.Equal(t, 7070, config.Agent.ControlPort)
	assert.Equal(t, time.Second, config.Agent.TickInterval)
	assert.Equal(t, time.Minute, config.Agent.PollInterval)
	assert.Equal(t, 30*time.Second, config.Agent.HeartbeatInterval)
	assert.Equal(t, 5001, config.Simulator.Port)
	assert.Equal(t, "emp-0001", config.Simulator.EmployeeID)
	assert.Equal(t, "12h", config.JWT.AccessExpiration)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_URL", "https://api.example.com/api/v1")
	t.Setenv("API_TOKEN", "token-123")
	t.Setenv("AGENT_TICK_INTERVAL", "500ms")
	t.Setenv("AGENT_POLL_INTERVAL", "30s")
	t.Setenv("SIMULATOR_PORT", "6001")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api/v1", config.Agent.ServerURL)
	assert.Equal(t, "token-123", config.Agent.APIToken)
	assert.Equal(t, 500*time.Millisecond, config.Agent.TickInterval)
	assert.Equal(t, 30*time.Second, config.Agent.PollInterval)
	assert.Equal(t, 6001, config.Simulator.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("AGENT_CONTROL_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("AGENT_POLL_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateAgent(t *testing.T) {
	t.Setenv("API_TOKEN", "token-123")
	config, err := Load()
	require.NoError(t, err)
	assert.NoError(t, config.ValidateAgent())

	config.Agent.APIToken = ""
	assert.Error(t, config.ValidateAgent())

	config.Agent.APIToken = "t"
	config.Agent.ServerURL = ""
	assert.Error(t, config.ValidateAgent())
}

func TestValidateSimulator(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	config, err := Load()
	require.NoError(t, err)
	assert.NoError(t, config.ValidateSimulator())

	config.JWT.Secret = ""
	assert.Error(t, config.ValidateSimulator())
}
