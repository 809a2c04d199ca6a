package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/rcat/internal/utils"
)

const (
	environmentPrefix = "RCAT"

	configKeyExclude   = "exclude"
	configKeyTheme     = "theme"
	configKeyColor     = "color"
	configKeyGitignore = "gitignore"
	configKeyDepth     = "depth"
	configKeyExt       = "ext"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// Environment looks up variables. It defaults to os.LookupEnv.
	Environment func(key string) (string, bool)
}

// ApplicationConfiguration holds defaults read from configuration files and RCAT_ environment variables.
// Nil pointers and empty values mean "not configured".
type ApplicationConfiguration struct {
	Exclude   []string `mapstructure:"exclude"`
	Theme     string   `mapstructure:"theme"`
	Color     *bool    `mapstructure:"color"`
	Gitignore *bool    `mapstructure:"gitignore"`
	Depth     *int     `mapstructure:"depth"`
	Ext       []string `mapstructure:"ext"`
}

// LoadApplicationConfiguration merges the global file, the local (or explicit) file and the environment,
// in that order of increasing precedence.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	lookup := options.Environment
	if lookup == nil {
		lookup = os.LookupEnv
	}
	environmentConfig, environmentErr := loadConfigurationFromEnvironment(lookup)
	if environmentErr != nil {
		return ApplicationConfiguration{}, environmentErr
	}
	merged = merged.Merge(environmentConfig)

	merged.Exclude = utils.DeduplicatePatterns(merged.Exclude)
	if merged.Depth != nil && *merged.Depth < 0 {
		return ApplicationConfiguration{}, fmt.Errorf("configured depth must not be negative, got %d", *merged.Depth)
	}
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.LocalConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

// loadConfigurationFromPath reads one file. A missing file is only an error when it was requested explicitly.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		reader.SetConfigType("yaml")
	}
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// loadConfigurationFromEnvironment reads RCAT_EXCLUDE, RCAT_THEME, RCAT_COLOR, RCAT_GITIGNORE, RCAT_DEPTH and RCAT_EXT.
// List values are comma separated.
func loadConfigurationFromEnvironment(lookup func(string) (string, bool)) (ApplicationConfiguration, error) {
	reader := viper.New()
	for _, key := range []string{configKeyExclude, configKeyTheme, configKeyColor, configKeyGitignore, configKeyDepth, configKeyExt} {
		environmentKey := environmentPrefix + "_" + strings.ToUpper(key)
		if value, present := lookup(environmentKey); present && strings.TrimSpace(value) != "" {
			reader.Set(key, value)
		}
	}

	var config ApplicationConfiguration
	if reader.IsSet(configKeyExclude) {
		config.Exclude = splitList(reader.GetString(configKeyExclude))
	}
	if reader.IsSet(configKeyExt) {
		config.Ext = splitList(reader.GetString(configKeyExt))
	}
	config.Theme = strings.TrimSpace(reader.GetString(configKeyTheme))
	if reader.IsSet(configKeyColor) {
		colorEnabled, parseErr := parseBool(reader.GetString(configKeyColor))
		if parseErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("%s_%s: %w", environmentPrefix, strings.ToUpper(configKeyColor), parseErr)
		}
		config.Color = &colorEnabled
	}
	if reader.IsSet(configKeyGitignore) {
		useGitignore, parseErr := parseBool(reader.GetString(configKeyGitignore))
		if parseErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("%s_%s: %w", environmentPrefix, strings.ToUpper(configKeyGitignore), parseErr)
		}
		config.Gitignore = &useGitignore
	}
	if reader.IsSet(configKeyDepth) {
		depth, parseErr := strconv.Atoi(strings.TrimSpace(reader.GetString(configKeyDepth)))
		if parseErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("%s_%s: %w", environmentPrefix, strings.ToUpper(configKeyDepth), parseErr)
		}
		config.Depth = &depth
	}
	return config, nil
}

func splitList(value string) []string {
	return utils.DeduplicatePatterns(strings.Split(value, ","))
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.Theme != "" {
		result.Theme = override.Theme
	}
	if override.Color != nil {
		result.Color = cloneBool(override.Color)
	}
	if override.Gitignore != nil {
		result.Gitignore = cloneBool(override.Gitignore)
	}
	if override.Depth != nil {
		result.Depth = cloneInt(override.Depth)
	}
	if len(override.Ext) > 0 {
		result.Ext = append([]string{}, override.Ext...)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
