package config

import (
	log "github.com/sirupsen/logrus"
)

func SetupLogger(level string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, falling back to info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
