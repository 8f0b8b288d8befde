package trips

import (
	"errors"
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/Jopce/flightscraper/internal/model"
)

// ErrMissingPrice means a recommendation has trips but no totalAvailabilities
// entry. The upstream data is inconsistent; callers should not skip past it.
var ErrMissingPrice = errors.New("recommendation has no total price")

// Combine cross-joins each recommendation's outbound and inbound trips.
// Output order is recommendation first-seen order, then outbound order,
// then inbound order.
func Combine(recs *model.Recommendations, prices map[string]float64) ([]model.RoundTrip, error) {
	roundTrips := []model.RoundTrip{}

	for _, id := range recs.IDs() {
		group, _ := recs.Get(id)
		for _, out := range group.Outbound {
			for _, in := range group.Inbound {
				price, ok := prices[id]
				if !ok {
					return nil, fmt.Errorf("recommendation %q: %w", id, ErrMissingPrice)
				}
				roundTrips = append(roundTrips, model.RoundTrip{
					RecommendationID: id,
					// each round trip owns its legs; trips are shared across pairings
					Outbound: deepcopy.Copy(out.Legs).([]model.Leg),
					Inbound:  deepcopy.Copy(in.Legs).([]model.Leg),
					Price:    price,
					Taxes:    out.Tax.Add(in.Tax).Round(2),
				})
			}
		}
	}

	return roundTrips, nil
}
