package scraper

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Jopce/flightscraper/internal/mockserver"
	"github.com/Jopce/flightscraper/internal/model"
	"github.com/Jopce/flightscraper/internal/searchapi/searchclient"
	"github.com/Jopce/flightscraper/internal/trips"
)

const madFue = `{"body":{"data":{
	"journeys":[
		{"recommendationId":"R1","direction":"I","importTaxAdl":12.345,"flights":[
			{"companyCode":"IB","number":3900,"airportDeparture":{"code":"MAD"},"airportArrival":{"code":"FUE"},"dateDeparture":"2024-07-09 08:00","dateArrival":"2024-07-09 09:45"}]},
		{"recommendationId":"R1","direction":"I","importTaxAdl":12.345,"flights":[
			{"companyCode":"IB","number":3902,"airportDeparture":{"code":"MAD"},"airportArrival":{"code":"FUE"},"dateDeparture":"2024-07-09 15:00","dateArrival":"2024-07-09 16:45"}]},
		{"recommendationId":"R1","direction":"V","importTaxAdl":7.2,"flights":[
			{"companyCode":"IB","number":3901,"airportDeparture":{"code":"FUE"},"airportArrival":{"code":"MAD"},"dateDeparture":"2024-07-16 10:30","dateArrival":"2024-07-16 14:05"}]},
		{"recommendationId":"R1","direction":"V","importTaxAdl":7.2,"flights":[
			{"companyCode":"IB","number":3903,"airportDeparture":{"code":"FUE"},"airportArrival":{"code":"MAD"},"dateDeparture":"2024-07-16 18:30","dateArrival":"2024-07-16 22:05"}]},
		{"recommendationId":"R2","direction":"I","importTaxAdl":10,"flights":[
			{"companyCode":"UX","number":9118,"airportDeparture":{"code":"MAD"},"airportArrival":{"code":"FUE"},"dateDeparture":"2024-07-09 11:00","dateArrival":"2024-07-09 12:40"}]},
		{"recommendationId":"R2","direction":"V","importTaxAdl":10,"flights":[
			{"companyCode":"UX","number":9119,"airportDeparture":{"code":"FUE"},"airportArrival":{"code":"MAD"},"dateDeparture":"2024-07-16 13:30","dateArrival":"2024-07-16 17:00"}]}
	],
	"totalAvailabilities":[{"recommendationId":"R1","total":250},{"recommendationId":"R2","total":310.5}]}}}`

const cphMad = `{"body":{"data":{
	"journeys":[
		{"recommendationId":"C1","direction":"I","importTaxAdl":20,"flights":[
			{"companyCode":"KL","number":1126,"airportDeparture":{"code":"CPH"},"airportArrival":{"code":"AMS"},"dateDeparture":"2024-07-09 06:00","dateArrival":"2024-07-09 07:25"},
			{"companyCode":"KL","number":1699,"airportDeparture":{"code":"AMS"},"airportArrival":{"code":"MAD"},"dateDeparture":"2024-07-09 09:00","dateArrival":"2024-07-09 11:40"}]},
		{"recommendationId":"C1","direction":"V","importTaxAdl":20,"flights":[
			{"companyCode":"KL","number":1700,"airportDeparture":{"code":"MAD"},"airportArrival":{"code":"AMS"},"dateDeparture":"2024-07-16 12:40","dateArrival":"2024-07-16 15:15"},
			{"companyCode":"KL","number":1137,"airportDeparture":{"code":"AMS"},"airportArrival":{"code":"CPH"},"dateDeparture":"2024-07-16 17:00","dateArrival":"2024-07-16 18:20"}]}
	],
	"totalAvailabilities":[{"recommendationId":"C1","total":199}]}}}`

const noJourneys = `{"body":{"data":{"journeys":[],"totalAvailabilities":[]}}}`

const outboundOnly = `{"body":{"data":{
	"journeys":[
		{"recommendationId":"X1","direction":"I","importTaxAdl":1,"flights":[
			{"companyCode":"IB","number":1,"airportDeparture":{"code":"JFK"},"airportArrival":{"code":"FUE"},"dateDeparture":"a","dateArrival":"b"}]}
	],
	"totalAvailabilities":[{"recommendationId":"X1","total":90}]}}}`

const missingPrice = `{"body":{"data":{
	"journeys":[
		{"recommendationId":"M1","direction":"I","importTaxAdl":1,"flights":[
			{"companyCode":"IB","number":1,"airportDeparture":{"code":"MAD"},"airportArrival":{"code":"AUH"},"dateDeparture":"a","dateArrival":"b"}]},
		{"recommendationId":"M1","direction":"V","importTaxAdl":1,"flights":[
			{"companyCode":"IB","number":2,"airportDeparture":{"code":"AUH"},"airportArrival":{"code":"MAD"},"dateDeparture":"c","dateArrival":"d"}]}
	],
	"totalAvailabilities":[]}}}`

func req(from, to, depart, ret, conn string) model.SearchRequest {
	return model.SearchRequest{From: from, To: to, Depart: depart, Return: ret, Connection: conn}
}

func writeFixture(t *testing.T, dir string, r model.SearchRequest, body string) {
	t.Helper()
	name := mockserver.FixtureName(r.From, r.To, r.Depart, r.Return)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type harness struct {
	scraper *Scraper
	cfg     *Config
	hook    *test.Hook
}

func newHarness(t *testing.T, fixtures map[model.SearchRequest]string) *harness {
	t.Helper()
	fixturesDir := t.TempDir()
	for r, body := range fixtures {
		writeFixture(t, fixturesDir, r, body)
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	srv := httptest.NewServer(mockserver.NewHandler(fixturesDir, logger))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.FlightAPI.URL = srv.URL + mockserver.SearchPath
	cfg.Output.Directory = filepath.Join(t.TempDir(), "csv_files")

	client := searchclient.New(cfg.FlightAPI.URL, cfg.Timeout(), logger)
	return &harness{scraper: New(cfg, client, logger), cfg: cfg, hook: hook}
}

func (h *harness) messages() []string {
	var out []string
	for _, e := range h.hook.AllEntries() {
		out = append(out, e.Message)
	}
	return out
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return records
}

func containsMessage(msgs []string, want string) bool {
	for _, m := range msgs {
		if m == want {
			return true
		}
	}
	return false
}

func TestRunWritesReportsAndSkips(t *testing.T) {
	madFueReq := req("MAD", "FUE", "2024-07-09", "2024-07-16", "")
	cphMadReq := req("CPH", "MAD", "2024-07-09", "2024-07-16", "AMS")
	cphMadIDK := req("CPH", "MAD", "2024-07-04", "2024-07-31", "IDK")
	jfkAuhReq := req("JFK", "AUH", "2024-07-09", "2024-07-16", "")
	jfkFueReq := req("JFK", "FUE", "2024-07-09", "2024-07-16", "")
	notServed := req("MAD", "AUH", "2024-07-09", "2024-07-16", "")

	h := newHarness(t, map[model.SearchRequest]string{
		madFueReq: madFue,
		// every journey connects in AMS, so the IDK filter removes them all
		cphMadIDK: cphMad,
		cphMadReq: cphMad,
		jfkAuhReq: noJourneys,
		jfkFueReq: outboundOnly,
	})

	summary, err := h.scraper.Run(context.Background(), []model.SearchRequest{
		notServed, madFueReq, jfkAuhReq, jfkFueReq, cphMadIDK, cphMadReq,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Summary{Searches: 6, Skipped: 4, RoundTripsWritten: 5 + 1, CheapestWritten: 4 + 1}
	if summary != want {
		t.Fatalf("summary mismatch\nwant: %+v\ngot:  %+v", want, summary)
	}

	all := readCSV(t, h.cfg.AllTripsPath())
	if len(all) != 1+6 {
		t.Fatalf("expected header + 6 rows in all trips, got %d", len(all))
	}
	if all[0][0] != "Price" || all[0][1] != "Taxes" {
		t.Fatalf("unexpected header: %v", all[0])
	}
	for _, rec := range all[1:] {
		if rec[0] == "Price" {
			t.Fatal("header repeated in all trips file")
		}
	}
	if all[1][0] != "250" || all[1][1] != "19.55" || all[1][6] != "IB3900" || all[1][16] != "IB3901" {
		t.Fatalf("first row mismatch: %v", all[1])
	}
	if all[5][0] != "310.5" || all[5][1] != "20.00" {
		t.Fatalf("R2 row mismatch: %v", all[5])
	}
	if all[6][3] != "AMS" || all[6][7] != "AMS" || all[6][11] != "KL1699" {
		t.Fatalf("connecting row mismatch: %v", all[6])
	}

	cheapest := readCSV(t, h.cfg.CheapestTripsPath())
	if len(cheapest) != 1+5 {
		t.Fatalf("expected header + 5 rows in cheapest trips, got %d", len(cheapest))
	}
	for i, price := range []string{"250", "250", "250", "250", "199"} {
		if cheapest[i+1][0] != price {
			t.Fatalf("cheapest row %d price: want %s got %s", i+1, price, cheapest[i+1][0])
		}
	}

	msgs := h.messages()
	for _, m := range []string{
		"Error fetching data for 'MAD' to 'AUH' at 2024-07-09 until 2024-07-16, continuing...",
		"No viable flights found from 'JFK' to 'AUH' at 2024-07-09 until 2024-07-16, continuing...",
		"No viable round trips found from 'JFK' to 'FUE' at 2024-07-09 until 2024-07-16, continuing...",
		"No viable flights found from 'CPH' to 'MAD' at 2024-07-04 until 2024-07-31, continuing...",
		"Data saved to " + h.cfg.Output.Directory + " subdirectory.",
	} {
		if !containsMessage(msgs, m) {
			t.Errorf("missing log message %q\ngot: %s", m, strings.Join(msgs, "\n"))
		}
	}
}

func TestRunReplacesPreviousOutput(t *testing.T) {
	madFueReq := req("MAD", "FUE", "2024-07-09", "2024-07-16", "")
	h := newHarness(t, map[model.SearchRequest]string{madFueReq: madFue})

	for i := 0; i < 2; i++ {
		if _, err := h.scraper.Run(context.Background(), []model.SearchRequest{madFueReq}); err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
	}

	if all := readCSV(t, h.cfg.AllTripsPath()); len(all) != 1+5 {
		t.Fatalf("expected output of a single run, got %d records", len(all))
	}
}

func TestRunAllSearchesSkipped(t *testing.T) {
	h := newHarness(t, nil)

	summary, err := h.scraper.Run(context.Background(), []model.SearchRequest{req("MAD", "AUH", "2024-07-09", "2024-07-16", "")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Skipped != 1 || summary.RoundTripsWritten != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(h.cfg.AllTripsPath()); !os.IsNotExist(err) {
		t.Fatalf("expected no all trips file, stat err: %v", err)
	}
}

func TestRunMissingPriceIsFatal(t *testing.T) {
	bad := req("MAD", "AUH", "2024-07-09", "2024-07-16", "")
	later := req("MAD", "FUE", "2024-07-09", "2024-07-16", "")
	h := newHarness(t, map[model.SearchRequest]string{bad: missingPrice, later: madFue})

	summary, err := h.scraper.Run(context.Background(), []model.SearchRequest{bad, later})
	if !errors.Is(err, trips.ErrMissingPrice) {
		t.Fatalf("expected ErrMissingPrice, got %v", err)
	}
	if summary.Searches != 1 {
		t.Fatalf("run should stop at the failing search, got %+v", summary)
	}
}
