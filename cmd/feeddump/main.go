// Command feeddump fetches a GTFS-RT feed once and prints what the dashboard
// would make of it.
//
//	feeddump -call arrivals -stop 8596-9b3631c6
//	feeddump -call vehicle -vehicle 59C1 -vehiclePositions ./vp.pb
//	feeddump -call raw -tripUpdates ./tu.pb
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/busboard/arrivals"
	"github.com/theoremus-urban-solutions/busboard/config"
	"github.com/theoremus-urban-solutions/busboard/gtfsrt"
	"github.com/theoremus-urban-solutions/busboard/internal"
)

type options struct {
	call             string
	configPath       string
	tripUpdates      string
	vehiclePositions string
	stops            string
	vehicleID        string
	maxArrivals      int
	logLevel         string
}

func main() {
	var opts options
	flag.StringVar(&opts.call, "call", "arrivals", "arrivals|vehicle|raw")
	flag.StringVar(&opts.configPath, "config", "", "path to config.yml")
	flag.StringVar(&opts.tripUpdates, "tripUpdates", "", "TripUpdates URL or file (overrides config)")
	flag.StringVar(&opts.vehiclePositions, "vehiclePositions", "", "VehiclePositions URL or file (overrides config)")
	flag.StringVar(&opts.stops, "stop", "", "comma-separated stop IDs (default: configured stops)")
	flag.StringVar(&opts.vehicleID, "vehicle", "", "vehicle ID for -call vehicle")
	flag.IntVar(&opts.maxArrivals, "max", 0, "arrivals per stop (default: configured cap)")
	flag.StringVar(&opts.logLevel, "log", "warn", "log level")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "feeddump: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	var paths []string
	if opts.configPath != "" {
		paths = []string{opts.configPath}
	}
	cfg, _, err := config.LoadAppConfig(paths...)
	if err != nil {
		return err
	}

	logger, err := internal.NewLogger(opts.logLevel, config.EnvDevelopment, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tu := cfg.GTFSRT.TripUpdatesURL
	if opts.tripUpdates != "" {
		tu = opts.tripUpdates
	}
	vp := cfg.GTFSRT.VehiclePositionsURL
	if opts.vehiclePositions != "" {
		vp = opts.vehiclePositions
	}
	stopIDs := cfg.GTFSRT.StopIDs
	if opts.stops != "" {
		stopIDs = splitList(opts.stops)
	}
	maxArrivals := cfg.GTFSRT.MaxArrivals
	if opts.maxArrivals > 0 {
		maxArrivals = opts.maxArrivals
	}

	client := gtfsrt.NewClient(cfg.GTFSRT.APIKey, cfg.GTFSRT.APIKeyHeader,
		time.Duration(cfg.GTFSRT.TimeoutMS)*time.Millisecond)
	src := newFetcher(client)
	feeds := gtfsrt.NewFeedCache(src, logger, nil)

	// One run reads each source at most once.
	tripFeed := gtfsrt.Feed{Name: "trip_updates", URL: tu, TTL: time.Minute}
	positionFeed := gtfsrt.Feed{Name: "vehicle_positions", URL: vp, TTL: time.Minute}
	positions := arrivals.NewPositionResolver(feeds, positionFeed, logger)

	switch opts.call {
	case "arrivals":
		resolver := arrivals.NewResolver(feeds, tripFeed, positions, logger, arrivals.Options{MaxArrivals: maxArrivals})
		return writeJSON(out, resolver.ResolveAll(ctx, stopIDs))

	case "vehicle":
		if opts.vehicleID == "" {
			return errors.New("-vehicle is required for -call vehicle")
		}
		pos, err := positions.Lookup(ctx, opts.vehicleID)
		if err != nil {
			return err
		}
		return writeJSON(out, pos)

	case "raw":
		source := tu
		if opts.vehiclePositions != "" && opts.tripUpdates == "" {
			source = vp
		}
		return dumpRaw(ctx, src, source, out, logger)

	default:
		return fmt.Errorf("unknown call %q", opts.call)
	}
}

func dumpRaw(ctx context.Context, f gtfsrt.Fetcher, source string, out io.Writer, logger *zap.Logger) error {
	data, err := f.Fetch(ctx, source)
	if err != nil {
		return err
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return &gtfsrt.DecodeError{URL: source, Err: err}
	}
	logger.Debug("decoded feed", zap.String("source", source), zap.Int("entities", len(fm.GetEntity())))

	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(&fm)
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
