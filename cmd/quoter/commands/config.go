package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultProfile is used when no profile is selected.
const DefaultProfile = "default"

// Token store backends selectable per profile.
const (
	TokenStoreConfig = "config"
	TokenStoreMemory = "memory"
	TokenStoreSQLite = "sqlite"
	TokenStoreNATS   = "nats"
)

// Config represents the CLI configuration.
type Config struct {
	Profiles       map[string]*ProfileConfig `json:"profiles,omitempty"        mapstructure:"profiles"        yaml:"profiles,omitempty"`
	CurrentProfile string                    `json:"current_profile,omitempty" mapstructure:"current_profile" yaml:"current_profile,omitempty"`

	// Global settings
	Output  string `json:"output"   mapstructure:"output"   yaml:"output"`
	NoColor bool   `json:"no_color" mapstructure:"no_color" yaml:"no_color"`
}

// ProfileConfig holds the credentials and client settings of one Quoter account.
type ProfileConfig struct {
	BaseURL      string `json:"base_url,omitempty"      mapstructure:"base_url"      yaml:"base_url,omitempty"`
	ClientID     string `json:"client_id,omitempty"     mapstructure:"client_id"     yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" mapstructure:"client_secret" yaml:"client_secret,omitempty"`

	// Token fields are maintained by the config token store.
	AccessToken    string `json:"access_token,omitempty"     mapstructure:"access_token"     yaml:"access_token,omitempty"`
	RefreshToken   string `json:"refresh_token,omitempty"    mapstructure:"refresh_token"    yaml:"refresh_token,omitempty"`
	TokenExpiresAt int64  `json:"token_expires_at,omitempty" mapstructure:"token_expires_at" yaml:"token_expires_at,omitempty"`

	TokenStore      string  `json:"token_store,omitempty"      mapstructure:"token_store"      yaml:"token_store,omitempty"`
	SQLitePath      string  `json:"sqlite_path,omitempty"      mapstructure:"sqlite_path"      yaml:"sqlite_path,omitempty"`
	NATSURL         string  `json:"nats_url,omitempty"         mapstructure:"nats_url"         yaml:"nats_url,omitempty"`
	NATSBucket      string  `json:"nats_bucket,omitempty"      mapstructure:"nats_bucket"      yaml:"nats_bucket,omitempty"`
	RateLimit       float64 `json:"rate_limit,omitempty"       mapstructure:"rate_limit"       yaml:"rate_limit,omitempty"`
	IdempotencyKeys bool    `json:"idempotency_keys,omitempty" mapstructure:"idempotency_keys" yaml:"idempotency_keys,omitempty"`
	MaxPages        int     `json:"max_pages,omitempty"        mapstructure:"max_pages"        yaml:"max_pages,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Quoter CLI configuration including profiles and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigUseCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskSecrets(loadConfig())

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(cmd.OutOrStdout())

				return encoder.Encode(config)
			default:
				return displayConfigTable(cmd.OutOrStdout(), config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a global or profile configuration value",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, currentProfileName(config), args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a global or profile configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, currentProfileName(config), args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use PROFILE",
		Short: "Switch the current profile",
		Long:  "Make PROFILE the profile used when --profile is not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.CurrentProfile = args[0]

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %s\n", args[0])

			return nil
		},
	}
}

// setConfigValue applies KEY=VALUE to the global settings or the given profile.
func setConfigValue(config *Config, profileName, key, value string) error {
	switch key {
	case "output":
		switch value {
		case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
		default:
			return fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, value)
		}

		config.Output = value

		return nil
	case "no_color":
		noColor, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}

		config.NoColor = noColor

		return nil
	case "client_id", "client_secret", "access_token", "refresh_token", "token_expires_at":
		return fmt.Errorf("%w: %s", constants.ErrSecretFieldsUnset, key)
	}

	profile := ensureProfile(config, profileName)

	switch key {
	case "base_url":
		profile.BaseURL = value
	case "token_store":
		switch value {
		case TokenStoreConfig, TokenStoreMemory, TokenStoreSQLite, TokenStoreNATS:
		default:
			return fmt.Errorf("%w: %s", constants.ErrUnknownTokenStore, value)
		}

		profile.TokenStore = value
	case "sqlite_path":
		profile.SQLitePath = value
	case "nats_url":
		profile.NATSURL = value
	case "nats_bucket":
		profile.NATSBucket = value
	case "rate_limit":
		rateLimit, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}

		profile.RateLimit = rateLimit
	case "idempotency_keys":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}

		profile.IdempotencyKeys = enabled
	case "max_pages":
		maxPages, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}

		profile.MaxPages = maxPages
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// unsetConfigValue resets KEY to its default.
func unsetConfigValue(config *Config, profileName, key string) error {
	switch key {
	case "output":
		config.Output = ""

		return nil
	case "no_color":
		config.NoColor = false

		return nil
	case "client_id", "client_secret", "access_token", "refresh_token", "token_expires_at":
		return fmt.Errorf("%w: %s", constants.ErrSecretFieldsUnset, key)
	}

	profile := config.Profiles[profileName]
	if profile == nil {
		return nil
	}

	switch key {
	case "base_url":
		profile.BaseURL = ""
	case "token_store":
		profile.TokenStore = ""
	case "sqlite_path":
		profile.SQLitePath = ""
	case "nats_url":
		profile.NATSURL = ""
	case "nats_bucket":
		profile.NATSBucket = ""
	case "rate_limit":
		profile.RateLimit = 0
	case "idempotency_keys":
		profile.IdempotencyKeys = false
	case "max_pages":
		profile.MaxPages = 0
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func ensureProfile(config *Config, name string) *ProfileConfig {
	if config.Profiles == nil {
		config.Profiles = make(map[string]*ProfileConfig)
	}

	profile, exists := config.Profiles[name]
	if !exists {
		profile = &ProfileConfig{}
		config.Profiles[name] = profile
	}

	return profile
}

// currentProfileName resolves --profile, then current_profile, then the default.
func currentProfileName(config *Config) string {
	if name := viper.GetString("profile"); name != "" {
		return name
	}

	if config.CurrentProfile != "" {
		return config.CurrentProfile
	}

	return DefaultProfile
}

func loadConfig() *Config {
	config := &Config{}

	// Unknown keys are ignored; a malformed file yields the defaults.
	_ = viper.Unmarshal(config)

	if config.Profiles == nil {
		config.Profiles = make(map[string]*ProfileConfig)
	}

	return config
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Keep viper in sync so later reads in this process see the change.
	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config file: %w", err)
	}

	return nil
}

func maskSecrets(config *Config) *Config {
	masked := *config
	masked.Profiles = make(map[string]*ProfileConfig, len(config.Profiles))

	for name, profile := range config.Profiles {
		copied := *profile

		if copied.ClientSecret != "" {
			copied.ClientSecret = constants.MaskedSecret
		}

		if copied.AccessToken != "" {
			copied.AccessToken = constants.MaskedSecret
		}

		if copied.RefreshToken != "" {
			copied.RefreshToken = constants.MaskedSecret
		}

		masked.Profiles[name] = &copied
	}

	return &masked
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append("Output", valueOrDefault(config.Output, constants.FormatTable))
	_ = table.Append("No Color", strconv.FormatBool(config.NoColor))
	_ = table.Append("Current Profile", valueOrDefault(config.CurrentProfile, DefaultProfile))

	names := make([]string, 0, len(config.Profiles))
	for name := range config.Profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		addProfileRows(table, name, config.Profiles[name])
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func addProfileRows(table *tablewriter.Table, name string, profile *ProfileConfig) {
	prefix := name + "."

	_ = table.Append(prefix+"base_url", valueOrDefault(profile.BaseURL, "(default)"))
	_ = table.Append(prefix+"client_id", profile.ClientID)
	_ = table.Append(prefix+"client_secret", profile.ClientSecret)
	_ = table.Append(prefix+"token_store", valueOrDefault(profile.TokenStore, TokenStoreConfig))

	if profile.TokenExpiresAt != 0 {
		expiresAt := time.UnixMilli(profile.TokenExpiresAt)
		_ = table.Append(prefix+"token_expires_at", expiresAt.Format(time.RFC3339))
	}

	if profile.SQLitePath != "" {
		_ = table.Append(prefix+"sqlite_path", profile.SQLitePath)
	}

	if profile.NATSURL != "" {
		_ = table.Append(prefix+"nats_url", profile.NATSURL)
		_ = table.Append(prefix+"nats_bucket", valueOrDefault(profile.NATSBucket, constants.DefaultNATSBucket))
	}

	if profile.RateLimit > 0 {
		_ = table.Append(prefix+"rate_limit", strconv.FormatFloat(profile.RateLimit, 'f', -1, 64))
	}

	if profile.IdempotencyKeys {
		_ = table.Append(prefix+"idempotency_keys", "true")
	}

	if profile.MaxPages > 0 {
		_ = table.Append(prefix+"max_pages", strconv.Itoa(profile.MaxPages))
	}
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
