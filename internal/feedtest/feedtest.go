// Package feedtest builds GTFS-RT payloads and fake upstream servers for tests.
package feedtest

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Message wraps entities in a FeedMessage with a valid header.
func Message(timestamp uint64, entities ...*gtfsrtpb.FeedEntity) *gtfsrtpb.FeedMessage {
	return &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(timestamp),
		},
		Entity: entities,
	}
}

// Marshal encodes a FeedMessage, failing the test on error.
func Marshal(t testing.TB, fm *gtfsrtpb.FeedMessage) []byte {
	t.Helper()
	b, err := proto.Marshal(fm)
	if err != nil {
		t.Fatalf("Failed to marshal feed: %v", err)
	}
	return b
}

// StopTime is one stop-time update for TripUpdate. A zero ArrivalUnix leaves
// the arrival time unset.
type StopTime struct {
	StopID      string
	ArrivalUnix int64
}

// TripUpdate builds a trip-update entity. Empty routeID or vehicleID leave
// the corresponding field unset.
func TripUpdate(entityID, routeID, vehicleID string, stops ...StopTime) *gtfsrtpb.FeedEntity {
	tu := &gtfsrtpb.TripUpdate{Trip: &gtfsrtpb.TripDescriptor{}}
	if routeID != "" {
		tu.Trip.RouteId = proto.String(routeID)
	}
	if vehicleID != "" {
		tu.Vehicle = &gtfsrtpb.VehicleDescriptor{Id: proto.String(vehicleID)}
	}
	for _, st := range stops {
		stu := &gtfsrtpb.TripUpdate_StopTimeUpdate{StopId: proto.String(st.StopID)}
		if st.ArrivalUnix != 0 {
			stu.Arrival = &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(st.ArrivalUnix)}
		}
		tu.StopTimeUpdate = append(tu.StopTimeUpdate, stu)
	}
	return &gtfsrtpb.FeedEntity{Id: proto.String(entityID), TripUpdate: tu}
}

// VehiclePosition builds a vehicle-position entity. Empty id or label leave
// the descriptor fields unset.
func VehiclePosition(entityID, id, label string, lat, lon float32) *gtfsrtpb.FeedEntity {
	vp := &gtfsrtpb.VehiclePosition{
		Position: &gtfsrtpb.Position{
			Latitude:  proto.Float32(lat),
			Longitude: proto.Float32(lon),
		},
	}
	if id != "" || label != "" {
		vp.Vehicle = &gtfsrtpb.VehicleDescriptor{}
		if id != "" {
			vp.Vehicle.Id = proto.String(id)
		}
		if label != "" {
			vp.Vehicle.Label = proto.String(label)
		}
	}
	return &gtfsrtpb.FeedEntity{Id: proto.String(entityID), Vehicle: vp}
}

// Server serves body with status for every request and counts hits.
type Server struct {
	*httptest.Server
	hits    atomic.Int64
	headers atomic.Value
}

// NewServer starts a fake feed endpoint. It is closed when the test ends.
func NewServer(t testing.TB, status int, body []byte) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.headers.Store(r.Header.Clone())
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits is the number of requests served so far.
func (s *Server) Hits() int64 { return s.hits.Load() }

// LastHeaders returns the headers of the most recent request.
func (s *Server) LastHeaders() http.Header {
	h, _ := s.headers.Load().(http.Header)
	return h
}
