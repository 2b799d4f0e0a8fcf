package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Holds the exclusion keywords an operator wants in force at startup.
type YAMLConfig struct {
	ExclusionKeywords []BootstrapKeyword `yaml:"exclusion_keywords"`
}

// BootstrapKeyword is an exclusion keyword applied when the server starts.
type BootstrapKeyword struct {
	Keyword     string `yaml:"keyword"`
	Description string `yaml:"description,omitempty"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFile loads the YAML configuration from path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// BootstrapKeywords returns the configured keywords. Safe on a nil config.
func (c *YAMLConfig) BootstrapKeywords() []BootstrapKeyword {
	if c == nil {
		return nil
	}
	return c.ExclusionKeywords
}
