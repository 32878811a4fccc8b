package busboard

import (
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/busboard/arrivals"
	"github.com/theoremus-urban-solutions/busboard/config"
	"github.com/theoremus-urban-solutions/busboard/gtfsrt"
	"github.com/theoremus-urban-solutions/busboard/metrics"
	"github.com/theoremus-urban-solutions/busboard/weather"
)

// Feed names used in logs and metric labels.
const (
	FeedTripUpdates      = "trip_updates"
	FeedVehiclePositions = "vehicle_positions"
)

func millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// NewFromConfig wires the feed client, caches, resolvers and weather client
// described by cfg into a Server.
func NewFromConfig(cfg *config.AppConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	var m *metrics.Collector
	if cfg.Server.MetricsEnabled {
		m = metrics.NewCollector()
	}

	client := gtfsrt.NewClient(cfg.GTFSRT.APIKey, cfg.GTFSRT.APIKeyHeader, millis(cfg.GTFSRT.TimeoutMS))
	feeds := gtfsrt.NewFeedCache(client, logger.Named("feeds"), m)

	tripUpdates := gtfsrt.Feed{
		Name: FeedTripUpdates,
		URL:  cfg.GTFSRT.TripUpdatesURL,
		TTL:  millis(cfg.CacheTTL.ArrivalsMS),
	}
	vehiclePositions := gtfsrt.Feed{
		Name: FeedVehiclePositions,
		URL:  cfg.GTFSRT.VehiclePositionsURL,
		TTL:  millis(cfg.CacheTTL.VehiclesMS),
	}

	positions := arrivals.NewPositionResolver(feeds, vehiclePositions, logger.Named("positions"))
	resolver := arrivals.NewResolver(feeds, tripUpdates, positions, logger.Named("arrivals"), arrivals.Options{
		MaxArrivals: cfg.GTFSRT.MaxArrivals,
		Metrics:     m,
	})

	forecasts := weather.NewClient(weather.Options{
		BaseURL:  cfg.Weather.BaseURL,
		APIKey:   cfg.Weather.APIKey,
		Timeout:  millis(cfg.Weather.TimeoutMS),
		CacheTTL: millis(cfg.CacheTTL.WeatherMS),
		Logger:   logger.Named("weather"),
		Metrics:  m,
	})

	return NewServer(cfg, logger, Deps{
		Arrivals: resolver,
		Vehicles: positions,
		Weather:  forecasts,
		Metrics:  m,
	})
}
