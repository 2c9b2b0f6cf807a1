package cmd

import (
	"os"

	"lottery/config"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger from LOG_LEVEL and ENVIRONMENT
func SetupLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
