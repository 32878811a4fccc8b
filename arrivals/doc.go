// Package arrivals turns GTFS-RT snapshots into per-stop arrival lists and
// vehicle position lookups.
//
// Resolver filters trip updates for a stop, converts arrival times to
// minutes-from-now, keeps the soonest few and enriches each one with the
// serving vehicle's position from PositionResolver. Upstream failures never
// escape ResolveArrivals; they are folded into the StopResult instead.
package arrivals
