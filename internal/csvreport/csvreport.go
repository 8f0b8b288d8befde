package csvreport

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/Jopce/flightscraper/internal/model"
)

// LegsPerDirection is the number of leg column groups per direction in a row.
// Round trips with more legs are truncated when written.
const LegsPerDirection = 2

// Row is one CSV line. Column order is fixed; unused leg columns stay empty.
type Row struct {
	Price string `csv:"Price"`
	Taxes string `csv:"Taxes"`

	Outbound1DepartureAirport string `csv:"outbound 1 airport departure"`
	Outbound1ArrivalAirport   string `csv:"outbound 1 airport arrival"`
	Outbound1DepartureTime    string `csv:"outbound 1 time departure"`
	Outbound1ArrivalTime      string `csv:"outbound 1 time arrival"`
	Outbound1FlightNumber     string `csv:"outbound 1 flight number"`

	Outbound2DepartureAirport string `csv:"outbound 2 airport departure"`
	Outbound2ArrivalAirport   string `csv:"outbound 2 airport arrival"`
	Outbound2DepartureTime    string `csv:"outbound 2 time departure"`
	Outbound2ArrivalTime      string `csv:"outbound 2 time arrival"`
	Outbound2FlightNumber     string `csv:"outbound 2 flight number"`

	Inbound1DepartureAirport string `csv:"inbound 1 airport departure"`
	Inbound1ArrivalAirport   string `csv:"inbound 1 airport arrival"`
	Inbound1DepartureTime    string `csv:"inbound 1 time departure"`
	Inbound1ArrivalTime      string `csv:"inbound 1 time arrival"`
	Inbound1FlightNumber     string `csv:"inbound 1 flight number"`

	Inbound2DepartureAirport string `csv:"inbound 2 airport departure"`
	Inbound2ArrivalAirport   string `csv:"inbound 2 airport arrival"`
	Inbound2DepartureTime    string `csv:"inbound 2 time departure"`
	Inbound2ArrivalTime      string `csv:"inbound 2 time arrival"`
	Inbound2FlightNumber     string `csv:"inbound 2 flight number"`
}

// legColumns returns the five columns of a leg position, in
// departure airport, arrival airport, departure time, arrival time, flight number order.
func (r *Row) legColumns(outbound bool, pos int) []*string {
	switch {
	case outbound && pos == 1:
		return []*string{&r.Outbound1DepartureAirport, &r.Outbound1ArrivalAirport, &r.Outbound1DepartureTime, &r.Outbound1ArrivalTime, &r.Outbound1FlightNumber}
	case outbound && pos == 2:
		return []*string{&r.Outbound2DepartureAirport, &r.Outbound2ArrivalAirport, &r.Outbound2DepartureTime, &r.Outbound2ArrivalTime, &r.Outbound2FlightNumber}
	case !outbound && pos == 1:
		return []*string{&r.Inbound1DepartureAirport, &r.Inbound1ArrivalAirport, &r.Inbound1DepartureTime, &r.Inbound1ArrivalTime, &r.Inbound1FlightNumber}
	case !outbound && pos == 2:
		return []*string{&r.Inbound2DepartureAirport, &r.Inbound2ArrivalAirport, &r.Inbound2DepartureTime, &r.Inbound2ArrivalTime, &r.Inbound2FlightNumber}
	}
	return nil
}

func (r *Row) setLegs(outbound bool, legs []model.Leg) {
	for i, leg := range legs {
		if i >= LegsPerDirection {
			break
		}
		cols := r.legColumns(outbound, i+1)
		*cols[0] = leg.DepartureAirport
		*cols[1] = leg.ArrivalAirport
		*cols[2] = leg.DepartureTime
		*cols[3] = leg.ArrivalTime
		*cols[4] = leg.FlightNumber
	}
}

// NewRow flattens a round trip into the fixed column layout.
func NewRow(rt model.RoundTrip) Row {
	row := Row{
		Price: strconv.FormatFloat(rt.Price, 'f', -1, 64),
		Taxes: rt.Taxes.StringFixed(2),
	}
	row.setLegs(true, rt.Outbound)
	row.setLegs(false, rt.Inbound)
	return row
}

// Append adds round trips to the CSV file at path, creating it if needed.
// The header is written only when writeHeader is set; the file is never
// inspected to decide that.
func Append(path string, roundTrips []model.RoundTrip, writeHeader bool) error {
	rows := make([]*Row, 0, len(roundTrips))
	for _, rt := range roundTrips {
		row := NewRow(rt)
		rows = append(rows, &row)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if writeHeader {
		err = gocsv.Marshal(rows, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, f)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// Remove deletes a report file; a missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
