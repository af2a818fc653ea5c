package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "redmine-planner.com/redmine-planner/internal/configs"
)

var rootCmd = &cobra.Command{
	Use:           "redmine-planner",
	Short:         "Daily task planner that logs time to Redmine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(notice(err)))
		os.Exit(1)
	}
}

// bootstrap loads .env and the configuration, then sets up logging.
func bootstrap() config.Config {
	envErr := godotenv.Load()

	cfg := config.Load()
	config.SetupLogger(cfg.LogLevel)

	if envErr != nil {
		log.Debug(".env file not found, using environment variables")
	}
	return cfg
}
