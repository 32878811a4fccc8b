package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host                 string   `yaml:"host" validate:"omitempty,hostname|ip"`
	Port                 int      `yaml:"port" validate:"gt=0,lte=65535"`
	Environment          string   `yaml:"environment" validate:"oneof=development production test"`
	Version              string   `yaml:"version"`
	AllowedOrigins       []string `yaml:"allowedOrigins" validate:"dive,required"`
	CORSEnabled          bool     `yaml:"corsEnabled"`
	TrustProxy           bool     `yaml:"trustProxy"`
	EnableRequestLogging bool     `yaml:"enableRequestLogging"`
	HealthCheckEnabled   bool     `yaml:"healthCheckEnabled"`
	MetricsEnabled       bool     `yaml:"metricsEnabled"`
}

// GTFSRTConfig contains GTFS-Realtime feed configuration
type GTFSRTConfig struct {
	TripUpdatesURL      string   `yaml:"tripUpdatesURL" validate:"required,url"`
	VehiclePositionsURL string   `yaml:"vehiclePositionsURL" validate:"required,url"`
	APIKey              string   `yaml:"apiKey"`
	APIKeyHeader        string   `yaml:"apiKeyHeader" validate:"required"`
	TimeoutMS           int      `yaml:"timeoutMS" validate:"gt=0"`
	StopIDs             []string `yaml:"stopIDs" validate:"min=1,dive,required"`
	MaxArrivals         int      `yaml:"maxArrivals" validate:"gt=0"`
}

// WeatherConfig contains forecast API configuration
type WeatherConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	APIKey    string `yaml:"apiKey"`
	Location  string `yaml:"location" validate:"required"`
	Days      int    `yaml:"days" validate:"gte=1,lte=14"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gt=0"`
}

// CacheTTLConfig holds per-upstream cache lifetimes. Zero disables caching.
type CacheTTLConfig struct {
	ArrivalsMS int `yaml:"arrivalsMS" validate:"gte=0"`
	VehiclesMS int `yaml:"vehiclesMS" validate:"gte=0"`
	WeatherMS  int `yaml:"weatherMS" validate:"gte=0"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	GTFSRT   GTFSRTConfig   `yaml:"gtfsrt" validate:"required"`
	Weather  WeatherConfig  `yaml:"weather" validate:"required"`
	CacheTTL CacheTTLConfig `yaml:"cacheTTL"`
	Log      LogConfig      `yaml:"log"`
}

// IsProduction reports whether the service runs in the production environment.
func (c *AppConfig) IsProduction() bool { return c.Server.Environment == EnvProduction }

// IsDevelopment reports whether the service runs in the development environment.
func (c *AppConfig) IsDevelopment() bool { return c.Server.Environment == EnvDevelopment }
