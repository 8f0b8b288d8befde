package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SearchRequest is one configured search against the flight API.
type SearchRequest struct {
	From       string
	To         string
	Depart     string // YYYY-MM-DD
	Return     string // YYYY-MM-DD
	Connection string // required connection airport for 2-leg journeys, empty for any
}

func (s SearchRequest) String() string {
	return fmt.Sprintf("'%s' to '%s' at %s until %s", s.From, s.To, s.Depart, s.Return)
}

// Leg is a single flight
type Leg struct {
	FlightNumber     string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    string
	ArrivalTime      string
}

// Trip is one direction of a journey, legs in travel order.
type Trip struct {
	Tax  decimal.Decimal
	Legs []Leg
}

// Recommendation groups the trips sharing a recommendation id.
type Recommendation struct {
	Outbound []Trip
	Inbound  []Trip
}

// Recommendations keeps insertion order of recommendation ids so that
// combination output is deterministic.
type Recommendations struct {
	order  []string
	groups map[string]*Recommendation
}

func NewRecommendations() *Recommendations {
	return &Recommendations{groups: make(map[string]*Recommendation)}
}

// Group returns the group for id, creating an empty one on first use.
func (r *Recommendations) Group(id string) *Recommendation {
	g, ok := r.groups[id]
	if !ok {
		g = &Recommendation{Outbound: []Trip{}, Inbound: []Trip{}}
		r.groups[id] = g
		r.order = append(r.order, id)
	}
	return g
}

func (r *Recommendations) Get(id string) (*Recommendation, bool) {
	g, ok := r.groups[id]
	return g, ok
}

// IDs returns recommendation ids in first-seen order.
func (r *Recommendations) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Recommendations) Len() int {
	return len(r.order)
}

// RoundTrip pairs an outbound and an inbound trip of the same recommendation.
type RoundTrip struct {
	RecommendationID string
	Outbound         []Leg
	Inbound          []Leg
	Price            float64
	Taxes            decimal.Decimal
}
