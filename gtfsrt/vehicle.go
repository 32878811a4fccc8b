package gtfsrt

import (
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// VehicleIDSource is one place a feed entity may carry vehicle identity.
// Vendors are inconsistent about where they nest it, so lookups walk an
// ordered list of sources and take the first non-empty value.
type VehicleIDSource struct {
	Name string
	Get  func(e *gtfsrtpb.FeedEntity) string
}

// TripUpdateVehicleIDs is the lookup order for the vehicle serving a trip update.
var TripUpdateVehicleIDs = []VehicleIDSource{
	{
		Name: "trip_update.vehicle.id",
		Get:  func(e *gtfsrtpb.FeedEntity) string { return e.GetTripUpdate().GetVehicle().GetId() },
	},
	{
		Name: "vehicle.vehicle.id",
		Get:  func(e *gtfsrtpb.FeedEntity) string { return e.GetVehicle().GetVehicle().GetId() },
	},
	{
		Name: "trip_update.vehicle.label",
		Get:  func(e *gtfsrtpb.FeedEntity) string { return e.GetTripUpdate().GetVehicle().GetLabel() },
	},
}

// VehiclePositionIDs is the lookup order for the identity of a vehicle position entity.
var VehiclePositionIDs = []VehicleIDSource{
	{
		Name: "vehicle.vehicle.id",
		Get:  func(e *gtfsrtpb.FeedEntity) string { return e.GetVehicle().GetVehicle().GetId() },
	},
	{
		Name: "vehicle.vehicle.label",
		Get:  func(e *gtfsrtpb.FeedEntity) string { return e.GetVehicle().GetVehicle().GetLabel() },
	},
	{
		Name: "entity.id",
		Get: func(e *gtfsrtpb.FeedEntity) string {
			if e.GetVehicle() == nil {
				return ""
			}
			return e.GetId()
		},
	},
}

// FirstVehicleID returns the first non-empty identity found in sources.
func FirstVehicleID(e *gtfsrtpb.FeedEntity, sources []VehicleIDSource) (string, bool) {
	for _, s := range sources {
		if id := s.Get(e); id != "" {
			return id, true
		}
	}
	return "", false
}

// MatchVehicleID reports whether any source carries exactly id, and which one.
func MatchVehicleID(e *gtfsrtpb.FeedEntity, id string, sources []VehicleIDSource) (string, bool) {
	if id == "" {
		return "", false
	}
	for _, s := range sources {
		if s.Get(e) == id {
			return s.Name, true
		}
	}
	return "", false
}
