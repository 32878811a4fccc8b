// Package busboard serves a transit arrivals dashboard API.
//
// It exposes upcoming arrivals for a configured set of stops, vehicle position
// lookups and a weather forecast passthrough, all built from a GTFS-Realtime
// feed and a WeatherAPI-compatible endpoint:
//
//	GET /api/arrivals
//	GET /api/vehicle/{vehicleId}
//	GET /api/weather
//	GET /health
//	GET /metrics
//
// NewFromConfig wires every component from a config.AppConfig.
package busboard
