// Package gtfsrt handles fetching and decoding GTFS-Realtime protobuf feeds.
//
// It covers the two feed types the dashboard consumes:
//   - Trip Updates: real-time arrival/departure predictions
//   - Vehicle Positions: current vehicle locations
//
// Client fetches raw bytes, Decode turns them into a Snapshot, and FeedCache
// keeps decoded snapshots for a per-feed TTL so concurrent lookups against the
// same feed share one upstream request.
package gtfsrt
