package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// DefaultConfigPaths are searched in order for an optional config.yml.
var DefaultConfigPaths = []string{"config.yml", "./config/config.yml"}

// Default returns the configuration used when nothing overrides it.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               3000,
			Environment:        EnvDevelopment,
			Version:            "1.0.0",
			AllowedOrigins:     []string{"http://localhost:5173"},
			CORSEnabled:        true,
			HealthCheckEnabled: true,
		},
		GTFSRT: GTFSRTConfig{
			TripUpdatesURL:      "https://api.at.govt.nz/realtime/legacy/tripupdates",
			VehiclePositionsURL: "https://api.at.govt.nz/realtime/legacy/vehiclelocations",
			APIKeyHeader:        "Ocp-Apim-Subscription-Key",
			TimeoutMS:           10000,
			StopIDs:             []string{"8596-9b3631c6", "7285-77225635"},
			MaxArrivals:         4,
		},
		Weather: WeatherConfig{
			BaseURL:   "https://api.weatherapi.com/v1",
			Location:  "Auckland",
			Days:      3,
			TimeoutMS: 10000,
		},
		CacheTTL: CacheTTLConfig{
			ArrivalsMS: 30000,
			VehiclesMS: 15000,
			WeatherMS:  600000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadAppConfig builds the configuration from defaults, the first config.yml
// found in paths, a .env file and the process environment, then validates it.
// The returned slice names required API keys that are missing; in production
// a missing key is an error instead.
func LoadAppConfig(paths ...string) (*AppConfig, []string, error) {
	if len(paths) == 0 {
		paths = DefaultConfigPaths
	}
	cfg := Default()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, nil, fmt.Errorf("read %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", p, err)
		}
		break
	}

	// .env is optional; existing environment wins
	_ = godotenv.Load()

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	missing := cfg.MissingKeys()
	if len(missing) > 0 && cfg.IsProduction() {
		return nil, missing, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return &cfg, missing, nil
}

// MissingKeys lists the required API keys that are not configured.
func (c *AppConfig) MissingKeys() []string {
	var missing []string
	if c.GTFSRT.APIKey == "" {
		missing = append(missing, "GTFS_API_KEY")
	}
	if c.Weather.APIKey == "" {
		missing = append(missing, "WEATHER_API_KEY")
	}
	return missing
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *AppConfig, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = splitList(v)
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %q", key, v))
			return
		}
		*dst = n
	}
	flag := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			*dst = true
		case "0", "false", "f", "no", "n", "off":
			*dst = false
		default:
			errs = append(errs, fmt.Errorf("invalid %s: %q", key, v))
		}
	}

	num("PORT", &cfg.Server.Port)
	str("HOST", &cfg.Server.Host)
	str("NODE_ENV", &cfg.Server.Environment)
	str("APP_ENV", &cfg.Server.Environment)
	str("APP_VERSION", &cfg.Server.Version)
	list("ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)
	if v, ok := lookup("FRONTEND_URL"); ok && v != "" && !contains(cfg.Server.AllowedOrigins, v) {
		cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, strings.TrimSpace(v))
	}
	flag("CORS_ENABLED", &cfg.Server.CORSEnabled)
	flag("TRUST_PROXY", &cfg.Server.TrustProxy)
	flag("ENABLE_REQUEST_LOGGING", &cfg.Server.EnableRequestLogging)
	flag("HEALTH_CHECK_ENABLED", &cfg.Server.HealthCheckEnabled)
	flag("METRICS_ENABLED", &cfg.Server.MetricsEnabled)

	str("GTFS_API_KEY", &cfg.GTFSRT.APIKey)
	str("GTFS_API_KEY_HEADER", &cfg.GTFSRT.APIKeyHeader)
	str("GTFS_TRIP_UPDATES_URL", &cfg.GTFSRT.TripUpdatesURL)
	str("GTFS_VEHICLE_POSITIONS_URL", &cfg.GTFSRT.VehiclePositionsURL)
	num("UPSTREAM_TIMEOUT_MS", &cfg.GTFSRT.TimeoutMS)
	list("STOP_IDS", &cfg.GTFSRT.StopIDs)
	num("MAX_ARRIVALS", &cfg.GTFSRT.MaxArrivals)

	str("WEATHER_API_KEY", &cfg.Weather.APIKey)
	str("WEATHER_API_BASE_URL", &cfg.Weather.BaseURL)
	str("WEATHER_LOCATION", &cfg.Weather.Location)
	num("WEATHER_DAYS", &cfg.Weather.Days)
	num("UPSTREAM_TIMEOUT_MS", &cfg.Weather.TimeoutMS)

	num("CACHE_TTL_ARRIVALS", &cfg.CacheTTL.ArrivalsMS)
	num("CACHE_TTL_VEHICLES", &cfg.CacheTTL.VehiclesMS)
	num("CACHE_TTL_WEATHER", &cfg.CacheTTL.WeatherMS)

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
