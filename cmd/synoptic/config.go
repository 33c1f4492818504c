// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/synoptic/internal/secrets"
	"github.com/pdiddy/synoptic/pkg/types"
)

const defaultUserAgent = "synoptic/1.0"

// envKeyReplacer maps config keys to environment names, so search.min_year
// is read from SYNOPTIC_SEARCH_MIN_YEAR.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", defaultUserAgent)
	viper.SetDefault("search.max_retries", 5)
	viper.SetDefault("search.batch_size", 100)
	viper.SetDefault("search.max_batches", 10)
	viper.SetDefault("search.min_citations", 0)
	viper.SetDefault("search.min_year", 0)
	viper.SetDefault("search.max_year", 0)
	viper.SetDefault("search.request_delay", 3*time.Second)
	viper.SetDefault("search.output_dir", "results")

	viper.SetDefault("filter.work_dir", ".")
	viper.SetDefault("filter.workers", 0)
	viper.SetDefault("filter.min_text_length", 10)
	viper.SetDefault("filter.cross_validate", true)

	viper.SetDefault("ai.base_url", "http://localhost:11434/v1")
	viper.SetDefault("ai.model", "qwen2.5:1.5b")
	viper.SetDefault("ai.max_tokens", 5)

	viper.SetDefault("stats.log_dir", "log")
	viper.SetDefault("stats.top", 5)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output", "stderr")
}

// bindFlags binds the named flags of cmd to config keys. Binding happens
// when cmd runs, so commands sharing a key do not shadow each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func searchConfig() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("search.timeout"),
			UserAgent:  viper.GetString("search.user_agent"),
			MaxRetries: viper.GetInt("search.max_retries"),
		},
		BatchSize:             viper.GetInt("search.batch_size"),
		MaxBatches:            viper.GetInt("search.max_batches"),
		MinCitations:          viper.GetInt("search.min_citations"),
		MinYear:               viper.GetInt("search.min_year"),
		MaxYear:               viper.GetInt("search.max_year"),
		RequestDelay:          viper.GetDuration("search.request_delay"),
		OutputDir:             viper.GetString("search.output_dir"),
		SemanticScholarAPIKey: secretDefault(secrets.SemanticScholarAPIKey, viper.GetString("search.semantic_scholar_api_key")),
	}
}

func filterConfig() types.FilterConfig {
	return types.FilterConfig{
		WorkDir:       viper.GetString("filter.work_dir"),
		Workers:       viper.GetInt("filter.workers"),
		MinTextLength: viper.GetInt("filter.min_text_length"),
		CrossValidate: viper.GetBool("filter.cross_validate"),
	}
}

func aiConfig() types.AIConfig {
	return types.AIConfig{
		BaseURL:   viper.GetString("ai.base_url"),
		Model:     viper.GetString("ai.model"),
		APIKey:    secretDefault(secrets.AIAPIKey, viper.GetString("ai.api_key")),
		MaxTokens: viper.GetInt("ai.max_tokens"),
	}
}

func statsConfig() types.StatsConfig {
	return types.StatsConfig{
		LogDir: viper.GetString("stats.log_dir"),
		Top:    viper.GetInt("stats.top"),
	}
}

func loggingConfig() types.LoggingConfig {
	return types.LoggingConfig{
		Level:  viper.GetString("logging.level"),
		Format: viper.GetString("logging.format"),
		Output: viper.GetString("logging.output"),
	}
}
