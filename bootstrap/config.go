package bootstrap

import (
	"github.com/kbukum/rxlab/config"
)

// Config is the constraint on application configuration types. Structs that
// embed config.ServiceConfig get GetServiceConfig for free.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Sandbox sandbox.Config `yaml:"sandbox" mapstructure:"sandbox"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
