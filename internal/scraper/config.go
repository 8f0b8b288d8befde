package scraper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Jopce/flightscraper/internal/model"
	"github.com/Jopce/flightscraper/pkg/util"
)

// Environment overrides, applied after the config file.
const (
	EnvConfigPath = "FLIGHTSCRAPER_CONFIG"
	EnvAPIURL     = "FLIGHTSCRAPER_API_URL"
	EnvOutputDir  = "FLIGHTSCRAPER_OUTPUT_DIR"
	EnvLogLevel   = "FLIGHTSCRAPER_LOG_LEVEL"
)

type Config struct {
	FlightAPI struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"flight_api"`
	Output struct {
		Directory         string `yaml:"directory"`
		AllTripsFile      string `yaml:"all_trips_file"`
		CheapestTripsFile string `yaml:"cheapest_trips_file"`
	} `yaml:"output"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	MockServer struct {
		Enabled     bool   `yaml:"enabled"`
		Port        string `yaml:"port"`
		FixturesDir string `yaml:"fixtures_dir"`
	} `yaml:"mock_server"`
	Searches []SearchConfig `yaml:"searches"`
}

type SearchConfig struct {
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	Depart     string `yaml:"depart"`
	Return     string `yaml:"return"`
	Connection string `yaml:"connection,omitempty"`
}

var defaultSearches = []SearchConfig{
	{From: "MAD", To: "AUH", Depart: "2024-07-09", Return: "2024-07-16"},
	{From: "MAD", To: "FUE", Depart: "2024-07-09", Return: "2024-07-16"},
	{From: "JFK", To: "AUH", Depart: "2024-07-09", Return: "2024-07-16"},
	{From: "JFK", To: "FUE", Depart: "2024-07-09", Return: "2024-07-16"},
	{From: "CPH", To: "FUE", Depart: "2024-07-09", Return: "2024-07-16"},
	{From: "MAD", To: "FUE", Depart: "2024-07-16", Return: "2024-07-23"},
	{From: "MAD", To: "AUH", Depart: "2024-06-28", Return: "2024-08-01"},
	{From: "CPH", To: "MAD", Depart: "2024-07-04", Return: "2024-07-31", Connection: "IDK"},
	{From: "CPH", To: "MAD", Depart: "2024-07-09", Return: "2024-07-16", Connection: "AMS"},
	{From: "MAD", To: "FUE", Depart: "2024-08-01", Return: "2024-08-28"},
}

// DefaultConfig is used when no config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.FlightAPI.URL == "" {
		c.FlightAPI.URL = "http://homeworktask.infare.lt/search.php"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "csv_files"
	}
	if c.Output.AllTripsFile == "" {
		c.Output.AllTripsFile = "all_trips.csv"
	}
	if c.Output.CheapestTripsFile == "" {
		c.Output.CheapestTripsFile = "cheapest_trips.csv"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.MockServer.Port == "" {
		c.MockServer.Port = "8087"
	}
	if c.MockServer.FixturesDir == "" {
		c.MockServer.FixturesDir = "fixtures"
	}
	if len(c.Searches) == 0 {
		c.Searches = append([]SearchConfig(nil), defaultSearches...)
	}
}

func (c *Config) applyEnv() {
	c.FlightAPI.URL = util.GetEnv(EnvAPIURL, c.FlightAPI.URL)
	c.Output.Directory = util.GetEnv(EnvOutputDir, c.Output.Directory)
	c.Logging.Level = util.GetEnv(EnvLogLevel, c.Logging.Level)
}

// LoadConfig reads the YAML config at path and returns it with its validated
// searches. A missing file yields the built-in defaults; environment overrides
// apply in both cases.
func LoadConfig(path string) (*Config, []model.SearchRequest, error) {
	cfg, err := util.LoadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = &Config{}
	} else if err != nil {
		return nil, nil, fmt.Errorf("error reading configuration file %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	searches, err := cfg.SearchRequests()
	if err != nil {
		return nil, nil, err
	}
	return cfg, searches, nil
}

// Timeout is the HTTP client timeout; zero keeps transport defaults.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.FlightAPI.TimeoutSeconds) * time.Second
}

func (c *Config) AllTripsPath() string {
	return filepath.Join(c.Output.Directory, c.Output.AllTripsFile)
}

func (c *Config) CheapestTripsPath() string {
	return filepath.Join(c.Output.Directory, c.Output.CheapestTripsFile)
}

// SearchRequests validates and normalises the configured searches, keeping order.
func (c *Config) SearchRequests() ([]model.SearchRequest, error) {
	reqs := make([]model.SearchRequest, 0, len(c.Searches))
	for i, s := range c.Searches {
		req := model.SearchRequest{
			From:       util.NormaliseCode(s.From),
			To:         util.NormaliseCode(s.To),
			Depart:     s.Depart,
			Return:     s.Return,
			Connection: util.NormaliseCode(s.Connection),
		}
		if req.From == "" || req.To == "" {
			return nil, fmt.Errorf("search %d: from and to are required", i+1)
		}
		if err := util.ValidateDate(req.Depart); err != nil {
			return nil, fmt.Errorf("search %d depart: %w", i+1, err)
		}
		if err := util.ValidateDate(req.Return); err != nil {
			return nil, fmt.Errorf("search %d return: %w", i+1, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
