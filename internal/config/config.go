// Package config loads runtime configuration for the battle server from the
// environment, following the same godotenv-then-os.Getenv pattern the rest of
// the module uses for its ambient services.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/nfrund/battlehub/internal/script"
)

// Provider is the read-only view of configuration that modules depend on.
// Keeping it as an interface lets tests substitute a fixed-value stub instead
// of reading the environment.
type Provider interface {
	// ListenAddr is the TCP address the participant transport binds.
	ListenAddr() string
	// SpectatorAddr is the address the websocket spectator transport binds.
	SpectatorAddr() string
	// DebugAddr is the address the debug/admin HTTP group binds.
	DebugAddr() string

	// TurnIdleTimeout bounds how long the controller waits for orders before
	// the silent party forfeits.
	TurnIdleTimeout() time.Duration
	// RoomIdleTimeout bounds how long a battle room survives with no
	// broadcast or private event before it is torn down with a draw.
	RoomIdleTimeout() time.Duration

	// ScriptSecurityLimits are the script resource limits loaded from the
	// environment. The battle module's script engine does not read them; it
	// uses script.GetDefaultSecurityLimits.
	ScriptSecurityLimits() script.SecurityLimits
	// MaxConcurrentScripts bounds the scripted-effect execution pool.
	MaxConcurrentScripts() int

	// ModuleConfig returns module-specific configuration, mirroring the
	// escape hatch modules used against the host process elsewhere.
	ModuleConfig(moduleName string) (interface{}, bool)
}

// Config is the default Provider, populated from the environment.
type Config struct {
	listenAddr    string
	spectatorAddr string
	debugAddr     string

	turnIdleTimeout time.Duration
	roomIdleTimeout time.Duration

	scriptLimits          script.SecurityLimits
	maxConcurrentScripts  int
}

var _ Provider = (*Config)(nil)

const (
	defaultListenAddr           = ":8446"
	defaultSpectatorAddr        = ":8447"
	defaultDebugAddr            = ":8448"
	defaultTurnIdleTimeout      = 150 * time.Second
	defaultRoomIdleTimeout      = 10 * time.Minute
	defaultScriptTimeout        = 50 * time.Millisecond
	defaultScriptMemoryBytes    = 4 * 1024 * 1024
	defaultMaxConcurrentScripts = 32
)

// New loads configuration from environment variables, falling back to
// battle-server defaults tuned for a single-process deployment.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		listenAddr:           envOr("BATTLEHUB_LISTEN_ADDR", defaultListenAddr),
		spectatorAddr:        envOr("BATTLEHUB_SPECTATOR_ADDR", defaultSpectatorAddr),
		debugAddr:            envOr("BATTLEHUB_DEBUG_ADDR", defaultDebugAddr),
		turnIdleTimeout:      envDurationOr("BATTLEHUB_TURN_IDLE_TIMEOUT", defaultTurnIdleTimeout),
		roomIdleTimeout:      envDurationOr("BATTLEHUB_ROOM_IDLE_TIMEOUT", defaultRoomIdleTimeout),
		maxConcurrentScripts: envIntOr("BATTLEHUB_MAX_CONCURRENT_SCRIPTS", defaultMaxConcurrentScripts),
		scriptLimits: script.SecurityLimits{
			MaxExecutionTime: envDurationOr("BATTLEHUB_SCRIPT_TIMEOUT", defaultScriptTimeout),
			MaxMemoryBytes:   envInt64Or("BATTLEHUB_SCRIPT_MEMORY_BYTES", defaultScriptMemoryBytes),
			AllowedPackages:  []string{"fmt", "strings", "math", "text", "rand"},
		},
	}

	return cfg
}

func (c *Config) ListenAddr() string                           { return c.listenAddr }
func (c *Config) SpectatorAddr() string                        { return c.spectatorAddr }
func (c *Config) DebugAddr() string                            { return c.debugAddr }
func (c *Config) TurnIdleTimeout() time.Duration               { return c.turnIdleTimeout }
func (c *Config) RoomIdleTimeout() time.Duration               { return c.roomIdleTimeout }
func (c *Config) ScriptSecurityLimits() script.SecurityLimits  { return c.scriptLimits }
func (c *Config) MaxConcurrentScripts() int                    { return c.maxConcurrentScripts }
func (c *Config) ModuleConfig(moduleName string) (interface{}, bool) {
	return nil, false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func envInt64Or(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("invalid int64 for %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
