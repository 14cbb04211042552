// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/oneconcern/zenodotus/pkg/dlogger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "ZENODOTUS"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zenodotus",
	Short: "Zenodotus is a content-addressed file vault",
	Long: `Zenodotus keeps files in a vault, under the name of their cryptographic digest.

Files are moved into the vault when they are added. The vault indexes every file under a unique
logical name, and refuses to store the same content twice.

Indexed files may be annotated with tags, using any unambiguous prefix of their digest.
`,
	SilenceUsage: true,
}

var (
	config *CLIConfig
	logger = zap.NewNop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().SetNormalizeFunc(normalizeFlags)
	addVaultFlag(rootCmd)
	addIndexFileFlag(rootCmd)
	addLogLevel(rootCmd)
}

// normalizeFlags accepts underscores in flag names
func normalizeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("vault", "")
	viper.SetDefault("file", "")
	viper.SetDefault("digest", "")
	viper.SetDefault("loglevel", "")

	if os.Getenv(envPrefix+"_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv(envPrefix + "_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.zenodotus")
		viper.SetConfigName("zenodotus")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	configErr := viper.ReadInConfig()

	var err error
	config, err = newConfig()
	if err != nil {
		wrapFatalln("invalid configuration", err)
		return
	}
	config.setVaultParams(&zenodotusFlags)

	logger, err = dlogger.GetLogger(zenodotusFlags.root.logLevel)
	if err != nil {
		wrapFatalln("failed to set log level", err)
		return
	}
	if configErr == nil {
		logger.Debug("using config file", zap.String("config", viper.ConfigFileUsed()))
	}
}
