package arrivals

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/busboard/gtfsrt"
	"github.com/theoremus-urban-solutions/busboard/metrics"
	"github.com/theoremus-urban-solutions/busboard/utils"
)

// Options tunes a Resolver. Zero values select the defaults.
type Options struct {
	MaxArrivals int
	Now         func() time.Time
	Metrics     *metrics.Collector
}

// Resolver builds arrival lists for stops from the trip updates feed.
type Resolver struct {
	feeds       gtfsrt.SnapshotLoader
	tripUpdates gtfsrt.Feed
	positions   *PositionResolver
	maxArrivals int
	now         func() time.Time
	logger      *zap.Logger
	metrics     *metrics.Collector
}

// NewResolver creates a Resolver. positions may be nil, in which case
// arrivals are never enriched with vehicle positions.
func NewResolver(feeds gtfsrt.SnapshotLoader, tripUpdates gtfsrt.Feed, positions *PositionResolver, logger *zap.Logger, opts Options) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxArrivals <= 0 {
		opts.MaxArrivals = DefaultMaxArrivals
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resolver{
		feeds:       feeds,
		tripUpdates: tripUpdates,
		positions:   positions,
		maxArrivals: opts.MaxArrivals,
		now:         opts.Now,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// ResolveAll resolves every stop concurrently. Results keep the order of
// stopIDs. A panic while resolving one stop becomes that stop's error.
func (r *Resolver) ResolveAll(ctx context.Context, stopIDs []string) []StopResult {
	results := make([]StopResult, len(stopIDs))

	var g errgroup.Group
	for i, stopID := range stopIDs {
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("arrivals resolution panicked",
						zap.String("stop_id", stopID),
						zap.Any("panic", rec))
					r.metrics.StopError(gtfsrt.KindUnknown)
					results[i] = StopResult{
						StopID:    stopID,
						Arrivals:  []StopArrival{},
						Error:     "internal error resolving arrivals",
						ErrorKind: gtfsrt.KindUnknown,
					}
				}
			}()
			results[i] = r.ResolveArrivals(ctx, stopID)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ResolveArrivals returns the next arrivals at stopID. Feed failures are
// reported in the result's Error and ErrorKind fields.
func (r *Resolver) ResolveArrivals(ctx context.Context, stopID string) StopResult {
	snap, err := r.feeds.Load(ctx, r.tripUpdates)
	if err != nil {
		kind := gtfsrt.Kind(err)
		r.metrics.StopError(kind)
		r.logger.Error("failed to resolve arrivals",
			zap.String("stop_id", stopID),
			zap.String("kind", kind),
			zap.Error(err))
		return StopResult{
			StopID:    stopID,
			Arrivals:  []StopArrival{},
			Error:     err.Error(),
			ErrorKind: kind,
		}
	}

	arrivals := ExtractArrivals(snap, stopID, r.now(), r.maxArrivals)
	r.enrich(ctx, arrivals)

	return StopResult{StopID: stopID, Arrivals: arrivals}
}

// enrich attaches vehicle positions in place. Lookups run concurrently and a
// failed or panicking lookup leaves VehiclePosition nil.
func (r *Resolver) enrich(ctx context.Context, arrivals []StopArrival) {
	if r.positions == nil {
		return
	}

	var g errgroup.Group
	for i := range arrivals {
		if arrivals[i].VehicleID == UnknownVehicle {
			continue
		}
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("vehicle position lookup panicked",
						zap.String("vehicle_id", arrivals[i].VehicleID),
						zap.Any("panic", rec))
				}
			}()
			arrivals[i].VehiclePosition = r.positions.Resolve(ctx, arrivals[i].VehicleID)
			return nil
		})
	}
	_ = g.Wait()
}

// ExtractArrivals collects the stop-time updates for stopID that carry an
// arrival time, sorted soonest first and capped at limit. A non-positive
// limit keeps every arrival.
func ExtractArrivals(snap *gtfsrt.Snapshot, stopID string, now time.Time, limit int) []StopArrival {
	out := []StopArrival{}
	if snap == nil {
		return out
	}

	for _, e := range snap.Entities {
		tu := e.GetTripUpdate()
		if tu == nil {
			continue
		}

		vehicleID, ok := gtfsrt.FirstVehicleID(e, gtfsrt.TripUpdateVehicleIDs)
		if !ok {
			vehicleID = UnknownVehicle
		}

		for _, stu := range tu.GetStopTimeUpdate() {
			if stu.GetStopId() != stopID {
				continue
			}
			arrival := stu.GetArrival()
			if arrival == nil || arrival.Time == nil {
				continue
			}

			scheduled := utils.FromUnixSeconds(arrival.GetTime())
			out = append(out, StopArrival{
				Route:                tu.GetTrip().GetRouteId(),
				ScheduledArrivalTime: utils.Timestamp(scheduled),
				StopID:               stopID,
				MinutesUntilArrival:  utils.MinutesUntil(scheduled, now),
				VehicleID:            vehicleID,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledArrivalTime.Time().Before(out[j].ScheduledArrivalTime.Time())
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
