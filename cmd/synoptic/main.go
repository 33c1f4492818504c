// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the synoptic CLI.
// Subcommands cover the literature review pipeline: query expansion,
// search, regex and AI filtering, cross-validation and statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/logging"
	"github.com/pdiddy/synoptic/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys from .secrets/, .env and the environment.
	loadedSecrets map[string]string

	// logger is built from the logging config before any subcommand runs.
	logger = zap.NewNop()
)

// secretDefault returns fallback if set, or the loaded secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

// rootCmd is the base command for the synoptic CLI.
var rootCmd = &cobra.Command{
	Use:   "synoptic",
	Short: "Search, filter and cross-validate academic literature",
	Long: `synoptic automates the screening stage of a literature review.

It expands a boolean query into every concrete search, collects papers
from Semantic Scholar or arXiv, filters them by proximity scoring or an
LLM judge, and cross-validates the two filtering strategies when they ran
on the same dataset.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(loggingConfig())
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Resolve(".secrets/", ".env", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./synoptic.yaml or ~/.config/synoptic/synoptic.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("synoptic")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "synoptic"))
		}
	}

	viper.SetEnvPrefix("SYNOPTIC")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
