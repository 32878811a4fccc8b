package arrivals

import (
	"errors"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/theoremus-urban-solutions/busboard/utils"
)

const (
	// UnknownVehicle is reported when a trip update carries no vehicle identity.
	UnknownVehicle = "unknown"
	// DefaultMaxArrivals is how many arrivals are kept per stop.
	DefaultMaxArrivals = 4
)

// ErrVehicleNotFound is returned when no entity in the vehicle positions feed
// matches the requested vehicle.
var ErrVehicleNotFound = errors.New("vehicle not found")

// StopArrival is one predicted arrival of a vehicle at a stop.
type StopArrival struct {
	Route                string           `json:"route"`
	ScheduledArrivalTime utils.Timestamp  `json:"scheduledArrivalTime"`
	StopID               string           `json:"stopId"`
	MinutesUntilArrival  int              `json:"minutesUntilArrival"`
	VehicleID            string           `json:"vehicleId"`
	VehiclePosition      *VehiclePosition `json:"vehiclePosition,omitempty"`
}

// VehiclePosition is the last reported location of a vehicle.
type VehiclePosition struct {
	Latitude  float32  `json:"latitude"`
	Longitude float32  `json:"longitude"`
	Bearing   *float32 `json:"bearing,omitempty"`
	Odometer  *float64 `json:"odometer,omitempty"`
	Speed     *float32 `json:"speed,omitempty"`
}

// StopResult is the outcome of resolving one stop. Arrivals is empty, never
// nil, when Error is set.
type StopResult struct {
	StopID    string        `json:"stopId"`
	Arrivals  []StopArrival `json:"arrivals"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"errorKind,omitempty"`
}

func positionFromFeed(p *gtfsrtpb.Position) *VehiclePosition {
	if p == nil {
		return nil
	}
	return &VehiclePosition{
		Latitude:  p.GetLatitude(),
		Longitude: p.GetLongitude(),
		Bearing:   p.Bearing,
		Odometer:  p.Odometer,
		Speed:     p.Speed,
	}
}
