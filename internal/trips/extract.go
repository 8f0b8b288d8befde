package trips

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Jopce/flightscraper/internal/model"
	"github.com/Jopce/flightscraper/internal/searchapi/searchmodel"
)

// MaxLegs is the number of flights allowed in one direction (at most one connection).
const MaxLegs = 2

// Extract groups the journeys of a search response by recommendation id and
// builds the id -> total price lookup. Journeys with more than one connection
// are dropped, and when connection is set, two-leg journeys must connect there.
// An entry without a total is left out of the lookup, so combining its
// recommendation fails with ErrMissingPrice. A nil response yields empty results.
func Extract(resp *searchmodel.Response, connection string, log logrus.FieldLogger) (*model.Recommendations, map[string]float64, error) {
	recs := model.NewRecommendations()
	prices := make(map[string]float64)
	if resp == nil {
		return recs, prices, nil
	}
	data := resp.Body.Data

	for _, ta := range data.TotalAvailabilities {
		if ta.Total == "" {
			log.WithField("recommendation_id", ta.RecommendationID.String()).Warn("Price entry without total ignored")
			continue
		}
		total, err := parseNumber(ta.Total)
		if err != nil {
			return nil, nil, fmt.Errorf("total for recommendation %s: %w", ta.RecommendationID, err)
		}
		prices[ta.RecommendationID.String()] = total.InexactFloat64()
	}

	for _, j := range data.Journeys {
		if len(j.Flights) > MaxLegs {
			continue
		}
		if connection != "" && len(j.Flights) == MaxLegs &&
			j.Flights[0].AirportArrival.Code != connection {
			continue
		}

		if j.ImportTaxAdl == "" {
			log.WithField("recommendation_id", j.RecommendationID.String()).Debug("Journey without importTaxAdl, using zero tax")
		}
		tax, err := parseNumber(j.ImportTaxAdl)
		if err != nil {
			return nil, nil, fmt.Errorf("tax for recommendation %s: %w", j.RecommendationID, err)
		}
		trip := model.Trip{Tax: tax, Legs: make([]model.Leg, 0, len(j.Flights))}
		for _, f := range j.Flights {
			trip.Legs = append(trip.Legs, model.Leg{
				FlightNumber:     f.CompanyCode + f.Number.String(),
				DepartureAirport: f.AirportDeparture.Code,
				ArrivalAirport:   f.AirportArrival.Code,
				DepartureTime:    f.DateDeparture,
				ArrivalTime:      f.DateArrival,
			})
		}

		group := recs.Group(j.RecommendationID.String())
		switch j.Direction {
		case searchmodel.DirectionOutbound:
			group.Outbound = append(group.Outbound, trip)
		case searchmodel.DirectionInbound:
			group.Inbound = append(group.Inbound, trip)
		}
	}

	return recs, prices, nil
}

// parseNumber treats a missing value as zero.
func parseNumber(n json.Number) (decimal.Decimal, error) {
	s := n.String()
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
