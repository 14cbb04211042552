// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/zenodotus/pkg/vault"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	vault.Config `yaml:",inline" mapstructure:",squash"`

	LogLevel string `json:"loglevel,omitempty" yaml:"loglevel,omitempty" mapstructure:"loglevel"`
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// setVaultParams fills flags left unset with configured values
func (c *CLIConfig) setVaultParams(flags *flagsT) {
	if flags.root.vault == "" {
		flags.root.vault = c.Root
	}
	if flags.root.indexFile == "" {
		flags.root.indexFile = c.IndexFile
	}
	if flags.init.digest == "" {
		flags.init.digest = c.Digest
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = "info"
	}
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the CLI configuration",
	Long: `Commands to manage the zenodotus CLI configuration.

Configuration is the common set of flags that are needed by most commands and do not change across runs.
It is read from a config file (zenodotus.yaml in the current directory or in $HOME/.zenodotus, or the file
set by $ZENODOTUS_CONFIG), then from ZENODOTUS_* environment variables. Flags take precedence.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Example: `% zenodotus config show --vault /data/vault
vault: /data/vault
loglevel: info`,
	Run: func(cmd *cobra.Command, args []string) {
		effective := CLIConfig{
			Config:   zenodotusFlags.vaultConfig(),
			LogLevel: zenodotusFlags.root.logLevel,
		}
		b, err := yaml.Marshal(effective)
		if err != nil {
			wrapFatalln("failed to marshal config", err)
			return
		}
		infoLogger.Print(string(b))
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
