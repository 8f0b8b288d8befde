package searchclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jopce/flightscraper/internal/model"
	"github.com/Jopce/flightscraper/internal/searchapi/searchmodel"
)

// FetchError reports a failed search request. StatusCode is zero when the
// request never produced an HTTP response or the body could not be decoded.
type FetchError struct {
	Request    model.SearchRequest
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search %s: status %d: %v", e.Request, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("search %s: %v", e.Request, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// New returns a Client for the search endpoint at baseURL. A zero timeout
// leaves the transport defaults in place.
func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// buildSearchURL appends the from/to/depart/return query parameters to the base URL.
func buildSearchURL(baseURL string, req model.SearchRequest) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("error parsing base URL: %w", err)
	}

	q := u.Query()
	q.Set("from", req.From)
	q.Set("to", req.To)
	q.Set("depart", req.Depart)
	q.Set("return", req.Return)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Fetch performs one GET against the search endpoint. Every failure is
// returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, req model.SearchRequest) (*searchmodel.Response, error) {
	fullURL, err := buildSearchURL(c.baseURL, req)
	if err != nil {
		return nil, &FetchError{Request: req, Err: err}
	}
	c.log.WithField("url", fullURL).Debug("Querying search api")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &FetchError{Request: req, Err: fmt.Errorf("error creating HTTP request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &FetchError{Request: req, Err: fmt.Errorf("error performing HTTP GET to %s: %w", fullURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{
			Request:    req,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("received non-success status from search api. Response: %s", string(body)),
		}
	}

	var response searchmodel.Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &FetchError{Request: req, Err: fmt.Errorf("error decoding response body: %w", err)}
	}

	return &response, nil
}
