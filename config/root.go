package config

import "time"

type AppInfo struct {
	Name    string `config:"name" validate:"required"`
	Version string `config:"version" validate:"required"`
}

type MetricsConfig struct {
	Enabled bool `config:"enabled"`
	// Path is relative to the actuator base path.
	Path string `config:"path" validate:"required,startswith=/"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `config:"metrics"`
}

type ActuatorConfig struct {
	BasePath string `config:"basePath" validate:"required,startswith=/"`
}

type ServerConfig struct {
	Addr         string        `config:"addr" validate:"required"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

type LoggingConfig struct {
	Level  string `config:"level" validate:"oneof=debug info warn error"`
	Format string `config:"format" validate:"oneof=text json"`
}

type ReloadConfig struct {
	// Enabled turns on source watching and re-applies service definitions.
	Enabled      bool          `config:"enabled"`
	PollInterval time.Duration `config:"pollInterval"`
}

type Root struct {
	App           AppInfo             `config:"app"`
	Server        ServerConfig        `config:"server"`
	Observability ObservabilityConfig `config:"observability"`
	Actuator      ActuatorConfig      `config:"actuator"`
	Logging       LoggingConfig       `config:"logging"`
	Reload        ReloadConfig        `config:"reload"`
	// Services maps logical service names to catalog type ids.
	Services map[string]string `config:"services" validate:"dive,keys,required,endkeys,required"`
}

// Defaults is the lowest-precedence source for Root.
func Defaults() ConfigSource {
	return &MapSource{
		SourceName: "defaults",
		Values: map[string]any{
			"app": map[string]any{
				"name":    "locator",
				"version": "dev",
			},
			"server": map[string]any{
				"addr":         ":8080",
				"readTimeout":  "5s",
				"writeTimeout": "10s",
				"idleTimeout":  "60s",
			},
			"observability": map[string]any{
				"metrics": map[string]any{"enabled": true, "path": "/metrics"},
			},
			"actuator": map[string]any{"basePath": "/actuator"},
			"logging":  map[string]any{"level": "info", "format": "text"},
			"reload":   map[string]any{"enabled": false, "pollInterval": "2s"},
		},
	}
}

// ServiceName is the container definition under which the bound *Root is
// registered.
const ServiceName = "config"
