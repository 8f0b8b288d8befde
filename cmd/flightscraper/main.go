package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Jopce/flightscraper/internal/mockserver"
	"github.com/Jopce/flightscraper/internal/scraper"
	"github.com/Jopce/flightscraper/internal/searchapi/searchclient"
	"github.com/Jopce/flightscraper/pkg/util"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found; using system environment")
	}
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup always happens.
func run(args []string) int {
	fs := flag.NewFlagSet("flightscraper", flag.ContinueOnError)
	configPath := fs.String("config", util.GetEnv(scraper.EnvConfigPath, "config.yaml"), "path to the YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, searches, err := scraper.LoadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Error("failed to load configuration")
		return 1
	}

	logger := util.NewLogger(cfg.Logging.Level)

	apiURL := cfg.FlightAPI.URL
	if cfg.MockServer.Enabled {
		srv, err := mockserver.Start(cfg.MockServer.Port, cfg.MockServer.FixturesDir, logger)
		if err != nil {
			logger.WithError(err).Error("failed to start mock server")
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.WithError(err).Warn("mock server shutdown")
			}
		}()

		if apiURL, err = mockserver.SearchURL(srv); err != nil {
			logger.WithError(err).Error("failed to resolve mock server address")
			return 1
		}
		logger.WithFields(logrus.Fields{
			"configured_url": cfg.FlightAPI.URL,
			"mock_url":       apiURL,
		}).Info("Mock server enabled, overriding flight api url")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := searchclient.New(apiURL, cfg.Timeout(), logger)
	if _, err := scraper.New(cfg, client, logger).Run(ctx, searches); err != nil {
		logger.WithError(err).Error("run failed")
		return 1
	}
	return 0
}
