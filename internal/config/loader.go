package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/podscope"
	projectConfigDir = ".podscope"
	configFileName   = "config.yaml"
)

// LoadConfig loads the podscope configuration by layering default,
// user, and project settings.
func LoadConfig() (PodscopeConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional; warn and continue.
		fmt.Fprintf(os.Stderr, "Warning: could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return PodscopeConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return PodscopeConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a PodscopeConfig from a YAML file.
func loadConfigFromFile(filePath string) (PodscopeConfig, error) {
	var config PodscopeConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return PodscopeConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return PodscopeConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Only fields
// the overlay actually sets override the base.
func mergeConfigs(base, overlay PodscopeConfig) PodscopeConfig {
	merged := base

	if overlay.GlobalSettings.LogLevel != "" {
		merged.GlobalSettings.LogLevel = overlay.GlobalSettings.LogLevel
	}

	if overlay.AI.Model != "" {
		merged.AI.Model = overlay.AI.Model
	}
	if overlay.AI.Endpoint != "" {
		merged.AI.Endpoint = overlay.AI.Endpoint
	}
	if overlay.AI.MaxTokens != 0 {
		merged.AI.MaxTokens = overlay.AI.MaxTokens
	}
	if overlay.AI.APIKeyEnv != "" {
		merged.AI.APIKeyEnv = overlay.AI.APIKeyEnv
	}

	if overlay.Logs.TailLines != 0 {
		merged.Logs.TailLines = overlay.Logs.TailLines
	}
	if overlay.Logs.Follow != nil {
		merged.Logs.Follow = overlay.Logs.Follow
	}

	if overlay.Kube.ConfigDir != "" {
		merged.Kube.ConfigDir = overlay.Kube.ConfigDir
	}

	return merged
}
