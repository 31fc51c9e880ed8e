package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

var (
	// ErrNotFound means the geocoding service returned no candidate for the
	// query (and, for full addresses, for the city+zip fallback either).
	ErrNotFound = errors.New("geo: address not found")
	// ErrIncompleteAddress means a full-address lookup was attempted without
	// all of address, city, and zip code.
	ErrIncompleteAddress = errors.New("geo: address, city and zip code are all required")
)

const (
	geocodeRetries      = 3
	geocodeRetryBackoff = 250 * time.Millisecond
	geocodeTimeout      = 10 * time.Second
)

// Geocoder resolves free-text place descriptions to coordinates.
type Geocoder interface {
	// Resolve geocodes a full postal address, falling back to city+zip when
	// the full address yields nothing.
	Resolve(ctx context.Context, address, city, zip string) (Point, error)
	// ResolveCity geocodes a bare city name. Used by the search path, which
	// does not need street-level precision.
	ResolveCity(ctx context.Context, city string) (Point, error)
}

// NominatimClient is a Geocoder backed by a Nominatim-compatible HTTP service.
type NominatimClient struct {
	baseURL string
	country string
	client  *http.Client
}

// NewNominatimClient builds a client for the given endpoint. country biases
// queries ("<query>, <country>"); an empty baseURL uses the public endpoint.
func NewNominatimClient(baseURL, country string) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &NominatimClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
		client:  &http.Client{Timeout: geocodeTimeout},
	}
}

func (n *NominatimClient) Resolve(ctx context.Context, address, city, zip string) (Point, error) {
	if strings.TrimSpace(address) == "" || strings.TrimSpace(city) == "" || strings.TrimSpace(zip) == "" {
		return Point{}, ErrIncompleteAddress
	}

	p, err := n.lookup(ctx, n.withCountry(fmt.Sprintf("%s, %s, %s", address, city, zip)))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Point{}, err
	}

	// Street-level match failed; retry with just city and zip.
	return n.lookup(ctx, n.withCountry(fmt.Sprintf("%s, %s", city, zip)))
}

func (n *NominatimClient) ResolveCity(ctx context.Context, city string) (Point, error) {
	return n.lookup(ctx, city)
}

func (n *NominatimClient) withCountry(query string) string {
	if n.country == "" {
		return query
	}
	return query + ", " + n.country
}

// nominatimResult carries the fields we use; Nominatim returns coordinates
// as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *NominatimClient) lookup(ctx context.Context, query string) (Point, error) {
	reqURL := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", n.baseURL, url.QueryEscape(query))

	body, err := n.get(ctx, reqURL)
	if err != nil {
		return Point{}, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Point{}, fmt.Errorf("geo: decode response: %w", err)
	}
	if len(results) == 0 {
		return Point{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geo: bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geo: bad longitude %q: %w", results[0].Lon, err)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// get fetches reqURL with bounded retry. Transport failures and 5xx responses
// are retried with doubling backoff; any 2xx (including an empty result list)
// is definitive.
func (n *NominatimClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	backoff := geocodeRetryBackoff

	for attempt := 0; attempt < geocodeRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "saveagri-backend")

		resp, err := n.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("geo: upstream status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("geo: upstream status %d", resp.StatusCode)
		}
		return body, nil
	}
	return nil, fmt.Errorf("geo: lookup failed after %d attempts: %w", geocodeRetries, lastErr)
}
