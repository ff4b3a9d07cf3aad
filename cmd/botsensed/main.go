// botsensed - Behavioral bot-detection scoring daemon
//
// Reads collector events as NDJSON on stdin, scores the session, and prints
// the classification when the stream ends or on SIGINT/SIGTERM:
//
//	botsensed run            Score an event stream from stdin
//	botsensed check-config   Validate a config file and print the result
//	botsensed version        Print version information
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"botsense/internal/collector"
	"botsense/internal/config"
	"botsense/internal/fusion"
	"botsense/internal/metrics"
	"botsense/internal/monitor"
	"botsense/internal/persist"
	"botsense/internal/telemetry"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "check-config":
		cmdCheckConfig(os.Args[2:])
	case "version":
		fmt.Printf("botsensed %s (commit %s, built %s)\n", version, commit, buildTime)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`botsensed - Behavioral bot-detection scoring daemon

USAGE:
    botsensed <command> [options]

COMMANDS:
    run             Read NDJSON collector events on stdin and score them
    check-config    Validate a configuration file
    version         Print version information
    help            Show this help message

EXAMPLES:
    session-gen -profile human | botsensed run
    botsensed run -config botsense.toml -format json < session.ndjson
    botsensed check-config botsense.toml`)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (toml, yaml, or json)")
	format := fs.String("format", "text", "output format: text or json")
	watch := fs.Bool("watch", false, "watch the config file and log reloads (calibration stays fixed for the running session)")
	fs.Parse(args)

	var (
		cfg    *config.Config
		loader *config.Loader
	)
	if *configPath != "" {
		loader = config.NewLoader(*configPath)
		loaded, err := loader.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
			os.Exit(1)
		}
		defer loader.Close()
		cfg = loaded
	} else {
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
			os.Exit(1)
		}
	}

	log, logCloser, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: logging: %v\n", err)
		os.Exit(1)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	cal, err := cfg.LoadCalibration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: calibration: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: storage: %v\n", err)
		os.Exit(1)
	}

	enabled, err := cfg.EnabledChannels()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	eng := metrics.NewEngine(nil)
	if cfg.Metrics.Enabled {
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: eng.Registry().Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics endpoint failed", "error", err)
			}
		}()
		defer srv.Close()
		log.Info("metrics endpoint listening", "addr", cfg.Metrics.Listen)
	}

	mon, err := monitor.New(monitor.Options{
		Calibration:  &cal,
		Enabled:      enabled,
		Store:        store,
		StorageKey:   cfg.Storage.Key,
		SaveInterval: time.Duration(cfg.Storage.DebounceMs) * time.Millisecond,
		OnSample: func(ch telemetry.Channel) {
			eng.Samples[ch].Inc()
		},
		OnReady: func() {
			eng.Ready.Set(1)
		},
		Logger: log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	mon.Start()
	eng.SessionsStarted.Inc()

	if *watch && *configPath != "" {
		// Register before watching so no reload slips past the callback.
		loader.OnChange(func(next *config.Config) {
			eng.ConfigReloads.Inc()
			log.Info("config reloaded", "path", *configPath)
		})
		if err := loader.Watch(); err != nil {
			log.Warn("config watch unavailable", "error", err)
		}
	}

	// A signal ends the session the same way stream EOF does.
	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		dispatched, skipped, err := collector.Stream(os.Stdin, mon)
		if err != nil {
			log.Warn("event stream error", "error", err)
		}
		eng.EventsDispatched.Add(uint64(dispatched))
		eng.EventsSkipped.Add(uint64(skipped))
		log.Info("event stream ended", "dispatched", dispatched, "skipped", skipped)
		close(done)
	}()

	select {
	case <-done:
	case sig := <-sigCh:
		log.Info("signal received", "signal", sig.String())
	}

	scoreStart := time.Now()
	result := mon.Stop()
	eng.ScoringDuration.ObserveDuration(time.Since(scoreStart))
	if result == nil {
		fmt.Fprintln(os.Stderr, "Error: session was not running")
		os.Exit(1)
	}
	eng.ObserveResult(result)

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: encode result: %v\n", err)
			os.Exit(1)
		}
	default:
		printResult(os.Stdout, result)
	}
	if result.Class == fusion.ClassBot {
		os.Exit(2)
	}
}

func cmdCheckConfig(args []string) {
	fs := flag.NewFlagSet("check-config", flag.ExitOnError)
	fs.Parse(args)
	path := fs.Arg(0)
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: botsensed check-config <path>")
		os.Exit(1)
	}

	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(1)
	}
	if _, err := cfg.LoadCalibration(); err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: calibration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %s\n", path)
}

func openStore(cfg *config.Config) (persist.Store, error) {
	switch cfg.Storage.Type {
	case "sqlite":
		return persist.OpenSQLite(cfg.Storage.Path)
	case "memory":
		return persist.NewMemoryStore(), nil
	default:
		return nil, nil
	}
}
