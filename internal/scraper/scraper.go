package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Jopce/flightscraper/internal/csvreport"
	"github.com/Jopce/flightscraper/internal/model"
	"github.com/Jopce/flightscraper/internal/searchapi/searchclient"
	"github.com/Jopce/flightscraper/internal/searchapi/searchmodel"
	"github.com/Jopce/flightscraper/internal/trips"
)

var (
	ErrNoRecommendations = errors.New("no viable flights")
	ErrNoRoundTrips      = errors.New("no viable round trips")
)

type Fetcher interface {
	Fetch(ctx context.Context, req model.SearchRequest) (*searchmodel.Response, error)
}

// Summary counts what a run did.
type Summary struct {
	Searches          int
	Skipped           int
	RoundTripsWritten int
	CheapestWritten   int
}

type Scraper struct {
	fetcher      Fetcher
	outputDir    string
	allTripsPath string
	cheapestPath string
	log          logrus.FieldLogger
}

func New(cfg *Config, fetcher Fetcher, log logrus.FieldLogger) *Scraper {
	return &Scraper{
		fetcher:      fetcher,
		outputDir:    cfg.Output.Directory,
		allTripsPath: cfg.AllTripsPath(),
		cheapestPath: cfg.CheapestTripsPath(),
		log:          log.WithField("run_id", uuid.NewString()),
	}
}

// Run processes searches in order. Fetch failures and empty results skip the
// search; any other error (inconsistent upstream data, failed writes) stops
// the run and is returned.
func (s *Scraper) Run(ctx context.Context, searches []model.SearchRequest) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output directory %s: %w", s.outputDir, err)
	}
	for _, path := range []string{s.allTripsPath, s.cheapestPath} {
		if err := csvreport.Remove(path); err != nil {
			return summary, err
		}
	}

	firstWrite := true
	for _, req := range searches {
		summary.Searches++
		log := s.log.WithFields(logrus.Fields{
			"from": req.From, "to": req.To, "depart": req.Depart, "return": req.Return,
		})

		roundTrips, err := s.search(ctx, req)
		var fetchErr *searchclient.FetchError
		switch {
		case errors.As(err, &fetchErr):
			log.WithError(err).Errorf("Error fetching data for %s, continuing...", req)
			summary.Skipped++
			continue
		case errors.Is(err, ErrNoRecommendations):
			log.Infof("No viable flights found from %s, continuing...", req)
			summary.Skipped++
			continue
		case errors.Is(err, ErrNoRoundTrips):
			log.Infof("No viable round trips found from %s, continuing...", req)
			summary.Skipped++
			continue
		case err != nil:
			return summary, fmt.Errorf("search %s: %w", req, err)
		}

		if err := csvreport.Append(s.allTripsPath, roundTrips, firstWrite); err != nil {
			return summary, err
		}
		summary.RoundTripsWritten += len(roundTrips)

		cheapest := trips.Cheapest(roundTrips)
		if err := csvreport.Append(s.cheapestPath, cheapest, firstWrite); err != nil {
			return summary, err
		}
		summary.CheapestWritten += len(cheapest)

		firstWrite = false
		log.WithFields(logrus.Fields{
			"round_trips": len(roundTrips),
			"cheapest":    len(cheapest),
			"price":       cheapest[0].Price,
		}).Debug("Search written")
	}

	s.log.WithFields(logrus.Fields{
		"searches":    summary.Searches,
		"skipped":     summary.Skipped,
		"round_trips": summary.RoundTripsWritten,
		"cheapest":    summary.CheapestWritten,
	}).Infof("Data saved to %s subdirectory.", s.outputDir)

	return summary, nil
}

// search runs fetch, extract and combine for one request.
func (s *Scraper) search(ctx context.Context, req model.SearchRequest) ([]model.RoundTrip, error) {
	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	recs, prices, err := trips.Extract(resp, req.Connection, s.log.WithField("search", req.String()))
	if err != nil {
		return nil, err
	}
	if recs.Len() == 0 {
		return nil, ErrNoRecommendations
	}

	roundTrips, err := trips.Combine(recs, prices)
	if err != nil {
		return nil, err
	}
	if len(roundTrips) == 0 {
		return nil, ErrNoRoundTrips
	}
	return roundTrips, nil
}
