package util

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/spf13/viper"
)

func SetConfigDefaults() {
	viper.SetDefault("CACHE_DIR", "cache")
	viper.SetDefault("OSM_API_URL", pkg.DEFAULT_OSM_API_URL)
	viper.SetDefault("TRANSPORT_MODE", "car")
	viper.SetDefault("FETCH_RATE_LIMIT", 1.0)
	viper.SetDefault("FETCH_TIMEOUT", "120s")
	viper.SetDefault("CACHE_MAX_AGE", "0s")
	viper.SetDefault("WEIGHTS_FILE", "")
	viper.SetDefault("RELATION_MEMBERS", false)
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "1000s")
	viper.SetDefault("API_RATE_LIMIT", 50.0)
	viper.SetDefault("API_RATE_BURST", 100)
	viper.SetDefault("NEAREST_BATCH_WORKERS", 4)
	viper.SetDefault("NEARBY_LIMIT", 50)
	viper.SetDefault("SEARCH_RADIUS", 0.5)
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", "30s")
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", "30s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "120s")
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "10s")
}

// ReadConfig. load ./data/config.(yaml|json|toml) on top of the defaults, env vars override both.
// a missing config file is not an error.
func ReadConfig() error {
	SetConfigDefaults()
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
