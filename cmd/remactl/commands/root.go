// Package commands implements the remactl operations CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"remarket/server/config"
)

var (
	envFile string
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "remactl",
	Short: "Operations CLI for the property intelligence server",
	Long: `remactl drives the property intelligence engine from the command line:
serve the API, import listing feeds, re-score the stored pool against the
current model and run one-off predictions.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file before reading config")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the environment into the typed config, honoring the
// optional env file. A missing default .env is fine.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		godotenv.Load()
	}
	return config.LoadConfig()
}

// newLogger builds the shared JSON logger. CLI logs go to stderr so results
// and progress output stay readable.
func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	if quiet {
		logger.SetLevel(logrus.WarnLevel)
		return logger
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
