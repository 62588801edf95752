package brewery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"brewfinder/models"
)

const (
	DefaultAPIBase  = "https://api.openbrewerydb.org/v1/breweries"
	MaxSearchLength = 50
	MaxAPIResults   = 100

	userAgent      = "BrewFinder/1.0"
	defaultPerPage = 20
)

// typeKeys preserves the display order of the known brewery types.
var typeKeys = []string{
	"micro", "nano", "regional", "brewpub", "large",
	"planning", "bar", "contract", "proprietor",
}

var typeLabels = map[string]string{
	"micro":      "Micro Brewery",
	"nano":       "Nano Brewery",
	"regional":   "Regional Brewery",
	"brewpub":    "Brewpub",
	"large":      "Large Brewery",
	"planning":   "Planning",
	"bar":        "Bar",
	"contract":   "Contract",
	"proprietor": "Proprietor",
}

// TypeKeys returns the known brewery type identifiers in display order.
func TypeKeys() []string {
	return typeKeys
}

// TypeLabels returns the known type identifiers mapped to display labels.
func TypeLabels() map[string]string {
	return typeLabels
}

func IsKnownType(t string) bool {
	_, ok := typeLabels[t]
	return ok
}

// fetchStrategy is one way of getting brewery records off the wire. The
// client tries its strategies in order and takes the first success.
type fetchStrategy struct {
	name   string
	client *http.Client
}

// Client queries the brewery directory API. Every failure is absorbed
// locally: callers get the static sample set instead of an error, so "API
// down" and "no real results" are indistinguishable downstream.
type Client struct {
	baseURL    string
	strategies []fetchStrategy
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	return &Client{
		baseURL: baseURL,
		strategies: []fetchStrategy{
			{
				name: "full",
				client: &http.Client{
					Timeout: 10 * time.Second,
					Transport: &http.Transport{
						DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
					},
					CheckRedirect: func(req *http.Request, via []*http.Request) error {
						if len(via) >= 3 {
							return errors.New("too many redirects")
						}
						return nil
					},
				},
			},
			{
				name:   "simple",
				client: &http.Client{Timeout: 5 * time.Second},
			},
		},
	}
}

// Fetch queries the directory with the given parameters. On any transport or
// parse failure across all strategies it returns the sample set.
func (c *Client) Fetch(ctx context.Context, params url.Values) []models.Brewery {
	breweries, err := c.fetch(ctx, params)
	if err != nil {
		return SampleBreweries()
	}
	return breweries
}

// fetch tries each strategy in order and takes the first success. The error
// is the last strategy's failure; callers decide how to degrade.
func (c *Client) fetch(ctx context.Context, params url.Values) ([]models.Brewery, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(defaultPerPage))
	for key, vals := range params {
		for _, v := range vals {
			query.Set(key, v)
		}
	}

	apiURL := c.baseURL + "?" + query.Encode()

	var lastErr error
	for _, strategy := range c.strategies {
		breweries, err := c.fetchWith(ctx, strategy, apiURL)
		if err != nil {
			lastErr = err
			continue
		}
		return breweries, nil
	}
	return nil, lastErr
}

func (c *Client) fetchWith(ctx context.Context, s fetchStrategy, apiURL string) ([]models.Brewery, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s strategy: unexpected status %d", s.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var breweries []models.Brewery
	if err := json.Unmarshal(body, &breweries); err != nil {
		return nil, fmt.Errorf("%s strategy: %w", s.name, err)
	}
	return breweries, nil
}

// Search builds query parameters from the non-empty filters and fetches.
// When the directory is unreachable or returns nothing, the sample set is
// re-filtered in-process so the UI is rarely empty: case-insensitive
// substring match on name/city/state, exact match on type.
func (c *Client) Search(ctx context.Context, name, city, state, breweryType string) []models.Brewery {
	params := url.Values{}
	if name != "" {
		params.Set("by_name", name)
	}
	if city != "" {
		params.Set("by_city", city)
	}
	if state != "" {
		params.Set("by_state", state)
	}
	if breweryType != "" {
		params.Set("by_type", breweryType)
	}

	result, err := c.fetch(ctx, params)
	if err != nil || len(result) == 0 {
		result = filterSamples(name, city, state, breweryType)
	}
	return result
}

// RandomSample requests a randomized page of up to limit records, falling
// back to the sample set truncated to limit.
func (c *Client) RandomSample(ctx context.Context, limit int) []models.Brewery {
	if limit <= 0 {
		return []models.Brewery{}
	}
	if limit > MaxAPIResults {
		limit = MaxAPIResults
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("sort", "random")

	breweries := c.Fetch(ctx, params)
	if len(breweries) == 0 {
		breweries = SampleBreweries()
	}
	if len(breweries) > limit {
		breweries = breweries[:limit]
	}
	return breweries
}

func filterSamples(name, city, state, breweryType string) []models.Brewery {
	matched := []models.Brewery{}
	for _, b := range SampleBreweries() {
		if name != "" && !containsFold(b.Name, name) {
			continue
		}
		if city != "" && !containsFold(b.City, city) {
			continue
		}
		if state != "" && !containsFold(b.State, state) {
			continue
		}
		if breweryType != "" && b.BreweryType != breweryType {
			continue
		}
		matched = append(matched, b)
	}
	return matched
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
