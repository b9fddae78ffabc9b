package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// IPAPI resolves a coarse position from the caller's public IP.
type IPAPI struct {
	url  string
	http *http.Client
}

func NewIPAPI(url string) *IPAPI {
	return &IPAPI{
		url:  url,
		http: &http.Client{Timeout: LocateTimeout},
	}
}

func (p *IPAPI) Name() string { return "ipapi" }

func (p *IPAPI) Locate(ctx context.Context) (Point, error) {
	const op = "geo.IPAPI.Locate"

	ctx, cancel := context.WithTimeout(ctx, LocateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Point{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var payload struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}

	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Point{}, fmt.Errorf("%s: %w", op, err)
	}

	return Point{Latitude: payload.Latitude, Longitude: payload.Longitude}, nil
}
