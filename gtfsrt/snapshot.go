package gtfsrt

import (
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Snapshot is the decoded content of one feed payload. It is read-only once
// built and may be shared between goroutines.
type Snapshot struct {
	URL       string
	Timestamp time.Time
	Entities  []*gtfsrtpb.FeedEntity
}

// Decode unmarshals a GTFS-RT payload fetched from url.
func Decode(url string, data []byte) (*Snapshot, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}
	return NewSnapshot(url, &fm), nil
}

// NewSnapshot wraps an already decoded feed message. The snapshot timestamp is
// the header timestamp, or the current time when the header carries none.
func NewSnapshot(url string, fm *gtfsrtpb.FeedMessage) *Snapshot {
	ts := time.Now().UTC()
	if h := fm.GetHeader(); h != nil && h.Timestamp != nil {
		ts = time.Unix(int64(h.GetTimestamp()), 0).UTC()
	}
	return &Snapshot{
		URL:       url,
		Timestamp: ts,
		Entities:  fm.GetEntity(),
	}
}
