// Package config loads service configuration from a YAML file, a .env
// file and the process environment using viper and godotenv.
//
// Service configs embed ServiceConfig and add their own sections:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	var cfg AppConfig
//	err := config.Load("rxlab", &cfg, config.WithEnvPrefix("RXLAB"))
//
// Environment variables override file values. RXLAB_SERVER_PORT sets
// server.port when the prefix is RXLAB.
package config
