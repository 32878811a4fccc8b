package gtfsrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/busboard/internal/feedtest"
)

func TestDecode_PreservesEntityOrder(t *testing.T) {
	fm := feedtest.Message(1700000000,
		feedtest.TripUpdate("e1", "R1", "V1", feedtest.StopTime{StopID: "A", ArrivalUnix: 1700000300}),
		feedtest.VehiclePosition("e2", "V2", "", -36.8, 174.7),
	)

	snap, err := Decode("http://feed", feedtest.Marshal(t, fm))
	require.NoError(t, err)

	require.Len(t, snap.Entities, 2)
	assert.Equal(t, "e1", snap.Entities[0].GetId())
	assert.Equal(t, "e2", snap.Entities[1].GetId())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), snap.Timestamp)
	assert.Equal(t, "http://feed", snap.URL)
}

func TestDecode_InvalidPayload(t *testing.T) {
	_, err := Decode("http://feed", []byte("this is not protobuf"))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrFetch)
	assert.Equal(t, KindDecode, Kind(err))
}

func TestDecode_EmptyPayloadMissesRequiredHeader(t *testing.T) {
	_, err := Decode("http://feed", nil)
	assert.ErrorIs(t, err, ErrDecode)
}
