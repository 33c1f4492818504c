// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// from a dotenv file. In the directory, the filename is the key name and
// the trimmed file contents are the value. In the dotenv file and the
// process environment a key is spelled in upper snake case, so
// semantic-scholar-api-key becomes SEMANTIC_SCHOLAR_API_KEY.
//
// Supported keys: semantic-scholar-api-key, ai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pdiddy/synoptic/internal/logging"
)

// Known key names.
const (
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	AIAPIKey              = "ai-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}
	log := logging.OrNop(logger)

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// EnvName returns the environment variable spelling of key.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Resolve returns the value of every known key. Sources are consulted in
// order of increasing precedence: the secrets directory, the dotenv file
// and the process environment. Missing sources are skipped.
func Resolve(dir, envFile string, logger *zap.Logger) (map[string]string, error) {
	out, err := Load(dir, logger)
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		env, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for _, key := range []string{SemanticScholarAPIKey, AIAPIKey} {
				if v := strings.TrimSpace(env[EnvName(key)]); v != "" {
					out[key] = v
				}
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	for _, key := range []string{SemanticScholarAPIKey, AIAPIKey} {
		if v := strings.TrimSpace(os.Getenv(EnvName(key))); v != "" {
			out[key] = v
		}
	}
	return out, nil
}
