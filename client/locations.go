// Package client talks to a remote location-listing endpoint.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-photomap/types"
)

const locationsPath = "/api/locations"

var (
	ErrMalformedResponse = errors.New("locations response is not successful or has no data")
	ErrUnexpectedStatus  = errors.New("unexpected status")
)

// LocationsClient fetches the location listing over HTTP.
type LocationsClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewLocationsClient(baseURL string, timeout time.Duration) *LocationsClient {
	return &LocationsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "go-photomap/1.0",
	}
}

// FetchLocations issues one GET request. A response without success=true and
// a data object is reported as ErrMalformedResponse.
func (c *LocationsClient) FetchLocations(ctx context.Context) (*types.LocationsPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+locationsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build locations request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}
	defer resp.Body.Close()

	var body types.LocationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
		}
		return nil, fmt.Errorf("decode locations: %w", err)
	}

	if !body.Success || body.Data == nil {
		if body.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, body.Error)
		}
		return nil, ErrMalformedResponse
	}
	return body.Data, nil
}
