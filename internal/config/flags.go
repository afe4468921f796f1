package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("log-file", "", "Write JSON logs to this file")
	flagScene     = flag.String("scene", "", "Path to scene YAML")
	flagDB        = flag.String("db", "", "Path to snapshot database")
	flagSession   = flag.String("session", "", "Snapshot session to resume")
	flagBehaviour = flag.String("behaviour", "", "Path finding behaviour: single_surface, prefer_performance, prefer_results")
	flagTileSize  = flag.Float64("tile-size", 0, "Tile edge in meters")
	flagRange     = flag.Float64("range", 0, "Scan range in meters")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagScene != "" {
		cfg.Scene.Path = *flagScene
	}
	if *flagDB != "" {
		cfg.Store.Path = *flagDB
	}
	if *flagSession != "" {
		cfg.Store.Session = *flagSession
	}
	if *flagBehaviour != "" {
		cfg.Agent.Behaviour = *flagBehaviour
	}
	if *flagTileSize > 0 {
		cfg.NavMesh.TileSize = float32(*flagTileSize)
	}
	if *flagRange > 0 {
		cfg.Scan.Range = float32(*flagRange)
	}
}
