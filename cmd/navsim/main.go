// navsim scans a YAML scene the way a moving AR device would, then plans and
// walks a path across it.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/arnav/internal/config"
	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/internal/scene"
	"github.com/Faultbox/arnav/internal/store"
	"github.com/Faultbox/arnav/pkg/math"
)

var (
	flagFrom   = flag.String("from", "0,0,0", "Start position x,y,z")
	flagTo     = flag.String("to", "1,0,1", "Destination x,y,z")
	flagFrames = flag.Int("frames", 20, "Frames the device spends walking from start to destination")
	flagDt     = flag.Duration("dt", 100*time.Millisecond, "Simulated frame time")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== arnav navsim ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	opts, err := parseOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if cfg.Scene.Path == "" {
		fmt.Fprintln(os.Stderr, "Error: no scene given, use -scene or scene.path")
		os.Exit(2)
	}
	sc, err := scene.Load(cfg.Scene.Path)
	if err != nil {
		logger.Error("failed to load scene", zap.Error(err))
		os.Exit(1)
	}

	var snapshots *store.SnapshotStore
	if cfg.Store.Path != "" {
		snapshots, err = store.Open(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open snapshot store", zap.Error(err))
			os.Exit(1)
		}
		defer snapshots.Close()
	}

	res, err := run(cfg, sc, snapshots, opts)
	if err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
	printResult(res)
}

func parseOptions() (options, error) {
	from, err := parseVec(*flagFrom)
	if err != nil {
		return options{}, fmt.Errorf("-from: %w", err)
	}
	to, err := parseVec(*flagTo)
	if err != nil {
		return options{}, fmt.Errorf("-to: %w", err)
	}
	if *flagFrames < 1 {
		return options{}, fmt.Errorf("-frames must be at least 1, got %d", *flagFrames)
	}
	if *flagDt <= 0 {
		return options{}, fmt.Errorf("-dt must be positive, got %v", *flagDt)
	}
	return options{from: from, to: to, frames: *flagFrames, dt: *flagDt}, nil
}

// parseVec parses "x,y,z".
func parseVec(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		v[i] = float32(f)
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func printResult(res *result) {
	fmt.Printf("session   %s\n", res.Session)
	if res.SnapshotID != "" {
		fmt.Printf("snapshot  %s\n", res.SnapshotID)
	}
	fmt.Printf("scans     %d\n", res.Scans)
	fmt.Printf("area      %.3f m² over %d surfaces\n", res.Area, res.Surfaces)
	fmt.Printf("path      %s, %d waypoints, %d jumps, %.2f m\n",
		res.Path.Status, len(res.Path.Waypoints), res.Path.Jumps(), res.Path.Length())
	for i, w := range res.Path.Waypoints {
		fmt.Printf("  %3d %-12s %-10v (%.3f, %.3f, %.3f)\n", i, w.Type, w.Tile, w.Position.X, w.Position.Y, w.Position.Z)
	}
	fmt.Printf("agent     (%.3f, %.3f, %.3f) after %v\n", res.Final.X, res.Final.Y, res.Final.Z, res.Elapsed)
}
