package envconfig

import (
	"time"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/database"
)

// LoadDatabaseConfig loads database configuration from environment variables
func LoadDatabaseConfig() database.Config {
	config := database.DefaultConfig()

	// Override with environment variables if they exist
	if path := GetEnv("DB_PATH", ""); path != "" {
		config.Path = path
	}

	if busyTimeoutStr := GetEnv("DB_BUSY_TIMEOUT", ""); busyTimeoutStr != "" {
		if busyTimeout, err := time.ParseDuration(busyTimeoutStr); err == nil && busyTimeout > 0 {
			config.BusyTimeout = busyTimeout
		}
	}

	return config
}
