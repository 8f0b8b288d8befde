package trips

import "github.com/Jopce/flightscraper/internal/model"

// Cheapest returns every round trip at the lowest price, in first-seen order.
func Cheapest(roundTrips []model.RoundTrip) []model.RoundTrip {
	if len(roundTrips) == 0 {
		return []model.RoundTrip{}
	}

	minPrice := roundTrips[0].Price
	cheapest := []model.RoundTrip{roundTrips[0]}

	for _, rt := range roundTrips[1:] {
		// equal-append is checked before the reset; a price can't satisfy both
		if rt.Price == minPrice {
			cheapest = append(cheapest, rt)
		}
		if rt.Price < minPrice {
			minPrice = rt.Price
			cheapest = []model.RoundTrip{rt}
		}
	}

	return cheapest
}
