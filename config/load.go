package config

import (
	"deposbank/core"

	configutil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, cfg *core.Config) error {
	configutil.AutomaticLoadEnv("DEPOSBANK")
	if err := configutil.LoadYaml(configFile, cfg); err != nil {
		return err
	}

	return nil
}
