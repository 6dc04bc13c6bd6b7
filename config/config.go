package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/liftdispatch/core/dispatch"
	"github.com/kilianp07/liftdispatch/core/metrics"
	"github.com/kilianp07/liftdispatch/infra/monitoring"
	"github.com/kilianp07/liftdispatch/infra/mqtt"
	"github.com/kilianp07/liftdispatch/simulator"
)

// EnvPrefix prefixes environment overrides, e.g. LIFT_DISPATCH__TICK_MS.
const EnvPrefix = "LIFT_"

type Config struct {
	Building   BuildingConfig    `json:"building"`
	Dispatch   dispatch.Config   `json:"dispatch"`
	Metrics    metrics.Config    `json:"metrics"`
	Logging    LoggingConfig     `json:"logging"`
	Journal    JournalConfig     `json:"journal"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Sentry     monitoring.Config `json:"sentry"`
	Simulation simulator.Config  `json:"simulation"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Dispatch.SetDefaults()
	c.Logging.SetDefaults()
	c.Journal.SetDefaults()
	c.Simulation.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section. The mqtt section is optional: without a
// broker the service has no host to talk to and only the simulator runs.
func (c Config) Validate() error {
	if err := c.Building.Validate(); err != nil {
		return err
	}
	if err := c.Dispatch.Validate(); err != nil {
		return err
	}
	if c.Dispatch.LobbyFloor >= c.Building.Floors {
		return fmt.Errorf("dispatch: lobby_floor %d outside building of %d floors", c.Dispatch.LobbyFloor, c.Building.Floors)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if c.MQTT.Broker != "" {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	return nil
}
