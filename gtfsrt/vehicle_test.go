package gtfsrt

import (
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/busboard/internal/feedtest"
)

func TestFirstVehicleID_TripUpdateOrder(t *testing.T) {
	tests := []struct {
		name   string
		entity *gtfsrtpb.FeedEntity
		want   string
		found  bool
	}{
		{
			name:   "trip update vehicle id",
			entity: feedtest.TripUpdate("e1", "R", "V1"),
			want:   "V1",
			found:  true,
		},
		{
			name: "combined entity falls back to vehicle payload",
			entity: &gtfsrtpb.FeedEntity{
				Id:         proto.String("e2"),
				TripUpdate: &gtfsrtpb.TripUpdate{Trip: &gtfsrtpb.TripDescriptor{}},
				Vehicle: &gtfsrtpb.VehiclePosition{
					Vehicle: &gtfsrtpb.VehicleDescriptor{Id: proto.String("V2")},
				},
			},
			want:  "V2",
			found: true,
		},
		{
			name: "label used last",
			entity: &gtfsrtpb.FeedEntity{
				Id: proto.String("e3"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip:    &gtfsrtpb.TripDescriptor{},
					Vehicle: &gtfsrtpb.VehicleDescriptor{Label: proto.String("Bus 12")},
				},
			},
			want:  "Bus 12",
			found: true,
		},
		{
			name: "id preferred over label",
			entity: &gtfsrtpb.FeedEntity{
				Id: proto.String("e4"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip: &gtfsrtpb.TripDescriptor{},
					Vehicle: &gtfsrtpb.VehicleDescriptor{
						Id:    proto.String("V4"),
						Label: proto.String("Bus 4"),
					},
				},
			},
			want:  "V4",
			found: true,
		},
		{
			name:   "no identity",
			entity: feedtest.TripUpdate("e5", "R", ""),
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstVehicleID(tt.entity, TripUpdateVehicleIDs)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchVehicleID_PositionShapes(t *testing.T) {
	byID := feedtest.VehiclePosition("ent-1", "V1", "L1", 1, 2)
	byLabel := feedtest.VehiclePosition("ent-2", "", "L2", 1, 2)
	byEntity := feedtest.VehiclePosition("V3", "", "", 1, 2)
	tripOnly := feedtest.TripUpdate("V4", "R", "")

	src, ok := MatchVehicleID(byID, "V1", VehiclePositionIDs)
	assert.True(t, ok)
	assert.Equal(t, "vehicle.vehicle.id", src)

	src, ok = MatchVehicleID(byLabel, "L2", VehiclePositionIDs)
	assert.True(t, ok)
	assert.Equal(t, "vehicle.vehicle.label", src)

	src, ok = MatchVehicleID(byEntity, "V3", VehiclePositionIDs)
	assert.True(t, ok)
	assert.Equal(t, "entity.id", src)

	_, ok = MatchVehicleID(tripOnly, "V4", VehiclePositionIDs)
	assert.False(t, ok, "entity id only counts for entities with a vehicle payload")

	_, ok = MatchVehicleID(byID, "", VehiclePositionIDs)
	assert.False(t, ok)
}
