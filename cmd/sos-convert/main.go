// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sos-convert CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sos-convert/internal/ledger"
	"github.com/pdiddy/sos-convert/internal/logger"
	"github.com/pdiddy/sos-convert/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the configuration loaded before any subcommand runs.
	cfg types.ConvertConfig

	// log is the structured logger writing to stderr.
	log = logger.Discard()
)

// rootCmd is the base command for the sos-convert CLI.
var rootCmd = &cobra.Command{
	Use:   "sos-convert",
	Short: "Convert between SoS scripts, Jupyter notebooks and R Markdown",
	Long: `sos-convert turns SoS workflow scripts (.sos) into multi-language
Jupyter notebooks (.ipynb) and back, imports R Markdown (.Rmd) files as
notebooks, and converts single-kernel notebooks into SoS notebooks.

Conversions are recorded in a local ledger so unchanged files are skipped
and converted cells can be searched.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		level, err := logger.ParseLevel(c.LogLevel)
		if err != nil {
			return err
		}
		cfg = c
		log = logger.NewWithLevel(os.Stderr, level)
		log.ConfigLoaded(viper.ConfigFileUsed(), cfg)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "",
		"config file (default: ./sos-convert.yaml or $XDG_CONFIG_HOME/sos-convert/sos-convert.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("ledger-dir", "", "directory holding the conversion ledger")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("ledger.dir", rootCmd.PersistentFlags().Lookup("ledger-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sos-convert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "sos-convert"))
	}

	setDefaults(viper.GetViper(), types.DefaultConvertConfig())

	viper.SetEnvPrefix("SOS_CONVERT")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the global viper settings.
func loadConfig() (types.ConvertConfig, error) {
	return decodeConfig(viper.GetViper())
}

// decodeConfig decodes v into a validated ConvertConfig.
func decodeConfig(v *viper.Viper) (types.ConvertConfig, error) {
	var c types.ConvertConfig
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// openLedger opens the ledger configured for this run.
func openLedger() (*ledger.Store, error) {
	return ledger.Open(cfg.Ledger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
