package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"prospector/internal/client"
	"prospector/internal/repositories"
)

type cliConfig struct {
	APIURL    string `mapstructure:"api_url"`
	MarkersDB string `mapstructure:"markers_db"`
	Dataset   string `mapstructure:"dataset"`
}

var (
	configDir string
	cfg       cliConfig
)

func loadConfig(cmd *cobra.Command, _ []string) error {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		configDir = filepath.Join(home, ".prospector")
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("PROSPECTOR")
	v.AutomaticEnv()
	v.SetDefault("api_url", "http://localhost:8081/api/v1")
	v.SetDefault("markers_db", filepath.Join(configDir, "markers.db"))
	v.SetDefault("dataset", filepath.Join(configDir, "dataset.json"))
	if err := v.BindPFlag("api_url", cmd.Root().PersistentFlags().Lookup("api-url")); err != nil {
		return fmt.Errorf("binding api-url flag: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file : %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return fmt.Errorf("writing config file : %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

func apiClient() *client.Client {
	return client.New(cfg.APIURL)
}

func openMarkers() (*repositories.SQLiteKVStore, error) {
	return repositories.NewSQLiteKVStore(cfg.MarkersDB)
}
