// Package geo supplies the caller's position for the nearby-events feature.
// Acquisition is a one-shot lookup bounded to five seconds, no retry; the
// nearby listing simply stays empty when it fails.
package geo

import (
	"context"
	"fmt"
	"time"
)

type Point struct {
	Latitude  float64
	Longitude float64
}

type Locator interface {
	Name() string
	Locate(ctx context.Context) (Point, error)
}

// LocateTimeout bounds a single position acquisition.
const LocateTimeout = 5 * time.Second

type Config struct {
	Provider  string  `yaml:"provider" env:"GEO_PROVIDER" env-default:"static"`
	Latitude  float64 `yaml:"latitude" env:"GEO_LATITUDE"`
	Longitude float64 `yaml:"longitude" env:"GEO_LONGITUDE"`
	IPAPIURL  string  `yaml:"ipapi_url" env:"GEO_IPAPI_URL" env-default:"https://ipapi.co/json/"`
}

func NewLocator(cfg Config) (Locator, error) {
	switch cfg.Provider {
	case "static":
		return &Static{Point: Point{Latitude: cfg.Latitude, Longitude: cfg.Longitude}}, nil
	case "ipapi":
		return NewIPAPI(cfg.IPAPIURL), nil
	default:
		return nil, fmt.Errorf("unknown geo provider: %s", cfg.Provider)
	}
}

// Static returns a fixed position from configuration.
type Static struct {
	Point Point
}

func (s *Static) Name() string { return "static" }

func (s *Static) Locate(_ context.Context) (Point, error) {
	return s.Point, nil
}
