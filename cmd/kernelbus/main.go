package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goclaw/kernelbus/config"
	"github.com/goclaw/kernelbus/pkg/admin"
	"github.com/goclaw/kernelbus/pkg/kernel"
	"github.com/goclaw/kernelbus/pkg/logger"
	"github.com/goclaw/kernelbus/pkg/metrics"
	"github.com/goclaw/kernelbus/pkg/signal"
	"github.com/goclaw/kernelbus/pkg/telemetry/tracing"
	"github.com/goclaw/kernelbus/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")
	watchFlag   = flag.Bool("watch", false, "Reload log level and signal policy when the config file changes")

	// CLI overrides
	appName   = flag.String("app-name", "", "Override app name")
	adminPort = flag.Int("admin-port", 0, "Override admin port")
	logLevel  = flag.String("log-level", "", "Override log level")
	debugMode = flag.Bool("debug", false, "Enable debug mode")
	agents    = flag.Int("agents", 0, "Override the number of agents")
	rounds    = flag.Int("rounds", -1, "Override the number of rounds (0 runs until stopped)")
	interval  = flag.Duration("interval", 0, "Override the pause between rounds")
	policy    = flag.String("policy", "", "Override the default signal policy")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg, *debugMode)
	defer log.Close()

	log.Info("Starting kernelbus",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	ossignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, log)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Metrics.Enabled
	metricsCfg.Path = cfg.Metrics.Path
	metricsManager := metrics.NewManager(metricsCfg)

	k, err := kernel.New(cfg, log, kernel.WithMetrics(metricsManager))
	if err != nil {
		log.Error("Failed to create kernel", "error", err)
		os.Exit(1)
	}
	if err := k.Start(ctx); err != nil {
		log.Error("Failed to start kernel", "error", err)
		os.Exit(1)
	}

	var bridge *signal.RedisBridge
	var redisClient redis.UniversalClient
	if cfg.Signal.Bridge.Enabled {
		redisClient = newRedisClient(cfg.Redis)
		bridge, err = startBridge(ctx, redisClient, k, cfg, log, metricsManager)
		if err != nil {
			log.Error("Failed to start signal bridge", "error", err)
			os.Exit(1)
		}
	}

	var adminServer *admin.Server
	serverErrChan := make(chan error, 1)
	if cfg.Admin.Enabled {
		router := admin.NewRouter(log.With("component", "admin"), &admin.Handlers{
			Kernel:      k,
			MetricsPath: cfg.Metrics.Path,
			Metrics:     metricsHandler(metricsManager),
			Recorder:    metricsManager,
		})
		adminServer = admin.NewServer(cfg.Admin, router, log)
		go func() {
			if err := adminServer.Start(); err != nil {
				serverErrChan <- err
			}
		}()
	}

	var watcher *config.Watcher
	if *watchFlag && *configPath != "" {
		watcher, err = config.NewWatcher(*configPath, config.NewLoader(), config.WithWatcherLogger(log))
		if err != nil {
			log.Error("Failed to create config watcher", "error", err)
			os.Exit(1)
		}
		watcher.OnChange(newReloader(log, k, cfg).apply)
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Config watcher stopped", "error", err)
			}
		}()
	}

	runErrChan := make(chan error, 1)
	go func() {
		runErrChan <- k.Run(ctx, cfg.Round.Interval, cfg.Round.Count)
	}()

	log.Info("kernelbus is running",
		"agents", cfg.Round.Agents,
		"interval", cfg.Round.Interval,
		"rounds", cfg.Round.Count,
		"admin", cfg.Admin.Enabled,
		"bridge", cfg.Signal.Bridge.Enabled,
	)
	log.Info("Press Ctrl+C to stop")

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("Admin server error", "error", err)
	case err := <-runErrChan:
		if err != nil {
			log.Error("Reaction rounds stopped", "error", err)
		} else {
			log.Info("All rounds completed", "rounds", k.Rounds())
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Admin.ShutdownTimeout+10*time.Second)
	defer shutdownCancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			log.Error("Error stopping config watcher", "error", err)
		}
	}

	if adminServer != nil {
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down admin server", "error", err)
		}
	}

	// The bridge feeds the root manager, so it goes before the kernel.
	if bridge != nil {
		if err := bridge.Close(); err != nil {
			log.Error("Error closing signal bridge", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
		}
	}

	log.Info("Stopping kernel")
	if err := k.Stop(shutdownCtx); err != nil {
		log.Error("Error during kernel shutdown", "error", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", "error", err)
	}

	log.Info("kernelbus stopped gracefully")
}

func newLogger(cfg *config.Config, debug bool) logger.Logger {
	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || debug {
		logCfg.Level = logger.DebugLevel
	}
	return logger.New(logCfg)
}

func newRedisClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       []string{cfg.Address},
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
}

// startBridge relays the root manager's signals to the other processes on
// the channel and feeds theirs back into it.
func startBridge(ctx context.Context, client redis.UniversalClient, k *kernel.Kernel, cfg *config.Config, log logger.Logger, recorder signal.MetricsRecorder) (*signal.RedisBridge, error) {
	bridge, err := signal.NewRedisBridge(client, k.Root(), signal.BridgeConfig{
		Channel:        cfg.Signal.Bridge.Channel,
		RateLimit:      cfg.Signal.Bridge.RateLimit,
		Burst:          cfg.Signal.Bridge.Burst,
		PublishTimeout: cfg.Signal.Bridge.PublishTimeout,
	},
		signal.WithName(cfg.App.Name),
		signal.WithLogger(log.With("component", "bridge")),
		signal.WithMetrics(recorder),
	)
	if err != nil {
		return nil, err
	}
	if err := bridge.Start(ctx); err != nil {
		return nil, err
	}
	k.Root().AddSignalListener(bridge)
	log.Info("Signal bridge connected", "channel", cfg.Signal.Bridge.Channel, "origin", bridge.Origin())
	return bridge, nil
}

// metricsHandler returns nil when metrics are disabled so that the admin
// router does not mount the route at all.
func metricsHandler(m *metrics.Manager) http.Handler {
	if !m.Enabled() {
		return nil
	}
	return m.Handler()
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *adminPort != 0 {
		overrides["admin.port"] = *adminPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}
	if *agents > 0 {
		overrides["round.agents"] = *agents
	}
	if *rounds >= 0 {
		overrides["round.count"] = *rounds
	}
	if *interval > 0 {
		overrides["round.interval"] = interval.String()
	}
	if *policy != "" {
		overrides["signal.default_policy"] = *policy
	}

	return overrides
}

func printVersion() {
	fmt.Println(version.String())
}

func printHelp() {
	fmt.Printf("kernelbus - runs demo agents in reaction rounds over mailboxes and a signal bus\n\n")
	fmt.Printf("Usage: kernelbus [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  kernelbus                                   # Run with default config\n")
	fmt.Printf("  kernelbus -config kernelbus.yaml -watch     # Use a config file and hot reload it\n")
	fmt.Printf("  kernelbus -agents 16 -rounds 100            # Run 100 rounds of 16 agents\n")
	fmt.Printf("  kernelbus -policy store_in_queue            # Agents poll signals instead of callbacks\n")
	fmt.Printf("  kernelbus -version                          # Print version info\n")
}
