package searchmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Direction values used by the search API.
const (
	DirectionOutbound = "I"
	DirectionInbound  = "V"
)

// Response mirrors {body: {data: {journeys, totalAvailabilities}}}. Absent
// objects and arrays decode to their zero values.
type Response struct {
	Body Body `json:"body"`
}

type Body struct {
	Data Data `json:"data"`
}

type Data struct {
	Journeys            []Journey           `json:"journeys"`
	TotalAvailabilities []TotalAvailability `json:"totalAvailabilities"`
}

type TotalAvailability struct {
	RecommendationID ID          `json:"recommendationId"`
	Total            json.Number `json:"total"`
}

type Journey struct {
	RecommendationID ID          `json:"recommendationId"`
	Direction        string      `json:"direction"`
	ImportTaxAdl     json.Number `json:"importTaxAdl"`
	Flights          []Flight    `json:"flights"`
}

type Flight struct {
	CompanyCode      string  `json:"companyCode"`
	Number           ID      `json:"number"`
	AirportDeparture Airport `json:"airportDeparture"`
	AirportArrival   Airport `json:"airportArrival"`
	DateDeparture    string  `json:"dateDeparture"`
	DateArrival      string  `json:"dateArrival"`
}

type Airport struct {
	Code string `json:"code"`
}

// ID accepts either a JSON string or a JSON number; the API is not consistent
// about which one it sends for identifiers and flight numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
