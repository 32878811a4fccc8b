package arrivals

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/busboard/gtfsrt"
)

// PositionResolver looks vehicles up in the vehicle positions feed.
type PositionResolver struct {
	feeds  gtfsrt.SnapshotLoader
	feed   gtfsrt.Feed
	logger *zap.Logger
}

// NewPositionResolver creates a resolver reading feed through feeds.
func NewPositionResolver(feeds gtfsrt.SnapshotLoader, feed gtfsrt.Feed, logger *zap.Logger) *PositionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionResolver{feeds: feeds, feed: feed, logger: logger}
}

// Lookup returns the position of vehicleID. It returns ErrVehicleNotFound
// when the feed has no matching entity, and a wrapped gtfsrt error when the
// feed could not be loaded.
func (p *PositionResolver) Lookup(ctx context.Context, vehicleID string) (*VehiclePosition, error) {
	snap, err := p.feeds.Load(ctx, p.feed)
	if err != nil {
		return nil, fmt.Errorf("load vehicle positions: %w", err)
	}
	pos, ok := FindPosition(snap, vehicleID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, vehicleID)
	}
	return pos, nil
}

// Resolve is Lookup for callers that treat a missing position as absent data.
// Failures other than not-found are logged.
func (p *PositionResolver) Resolve(ctx context.Context, vehicleID string) *VehiclePosition {
	pos, err := p.Lookup(ctx, vehicleID)
	if err != nil {
		if !errors.Is(err, ErrVehicleNotFound) {
			p.logger.Warn("vehicle position unavailable",
				zap.String("vehicle_id", vehicleID),
				zap.Error(err))
		}
		return nil
	}
	return pos
}

// FindPosition scans snap in feed order and returns the position of the first
// entity whose vehicle identity equals vehicleID and which carries a position.
func FindPosition(snap *gtfsrt.Snapshot, vehicleID string) (*VehiclePosition, bool) {
	if snap == nil || vehicleID == "" {
		return nil, false
	}
	for _, e := range snap.Entities {
		if _, ok := gtfsrt.MatchVehicleID(e, vehicleID, gtfsrt.VehiclePositionIDs); !ok {
			continue
		}
		if pos := positionFromFeed(e.GetVehicle().GetPosition()); pos != nil {
			return pos, true
		}
	}
	return nil, false
}
