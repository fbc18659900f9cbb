package config

import (
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger and gin's mode.
func SetupLogging(cfg ServerConfig) {
	log.SetOutput(os.Stdout)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
