// Command pvss runs publicly verifiable secret sharing and threshold RSA
// signing sessions over an in-memory broadcast channel.
package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shaih/go-pvss/config"
	"github.com/shaih/go-pvss/metrics"
)

var (
	// Path to the configuration file.
	configFile string

	rootCmd = &cobra.Command{
		Use:          "pvss",
		Short:        "Publicly verifiable secret sharing and threshold RSA",
		SilenceUsage: true,
	}
)

// initLogging configures the standard logrus logger
func initLogging(cfg *config.LogConfig) error {
	if cfg == nil {
		return nil
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.File != "" {
		var w io.Writer
		w, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		log.SetOutput(w)
	}
	return nil
}

// setup loads the configuration and initializes the common environment.
// The returned function releases what setup started.
func setup() (*config.Config, func(), error) {
	cfg, err := config.InitConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("init config: %w", err)
	}
	if err := initLogging(cfg.Log); err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		promServer := metrics.NewPullService(cfg.Metrics.PullEndpoint)
		promServer.StartInstrumentation()
		cleanup = func() {
			if err := promServer.Close(); err != nil {
				log.Warnf("closing metrics service: %v", err)
			}
		}
	}
	return cfg, cleanup, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config.yml file")

	for _, f := range []func(*cobra.Command){
		registerShare,
		registerSign,
	} {
		f(rootCmd)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
