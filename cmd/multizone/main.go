// Multizone Core - multi-zone amplifier control service
//
// This is the main entry point for the multizone service. It drives
// multi-zone audio amplifiers (Xantech, Dayton Audio, Acurus) over RS-232,
// exposes zone control and status over MQTT, and records status history
// in SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/openav/multizone-core/migrations"

	"github.com/openav/multizone-core/internal/amp"
	"github.com/openav/multizone-core/internal/bridge"
	"github.com/openav/multizone-core/internal/history"
	"github.com/openav/multizone-core/internal/infrastructure/config"
	"github.com/openav/multizone-core/internal/infrastructure/database"
	"github.com/openav/multizone-core/internal/infrastructure/influxdb"
	"github.com/openav/multizone-core/internal/infrastructure/logging"
	"github.com/openav/multizone-core/internal/infrastructure/mqtt"
	"github.com/openav/multizone-core/internal/profile"
	"github.com/openav/multizone-core/internal/protocol"
	"github.com/openav/multizone-core/profiles"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup wiring: config, storage, broker, devices
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Multizone Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Load the embedded descriptor corpus
	library, err := profiles.Load()
	if err != nil {
		return fmt.Errorf("loading descriptor corpus: %w", err)
	}
	log.Info("descriptor corpus loaded", "series", library.SeriesIDs())

	resolver := profile.NewResolver(protocol.Default())
	resolver.SetLogger(log)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	historyRepo := history.NewRepository(db.DB)

	// Prune aged status snapshots in the background
	if retention := cfg.HistoryRetention(); retention > 0 {
		go pruneHistory(ctx, historyRepo, retention, log)
		log.Info("history pruning enabled", "retention", retention)
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Assemble the MQTT bridge (when the broker is available)
	var br *bridge.Bridge
	if mqttClient != nil {
		brCfg := bridge.Config{
			Client:  mqttClient,
			History: historyRepo,
			QoS:     byte(cfg.MQTT.QoS), //nolint:gosec // QoS validated 0..2
			Logger:  log,
		}
		if influxClient != nil {
			brCfg.Telemetry = influxClient
		}
		br, err = bridge.New(brCfg)
		if err != nil {
			return fmt.Errorf("creating bridge: %w", err)
		}
	}

	// Open a connection per configured device
	for _, dev := range cfg.Devices {
		conn, openErr := openDevice(cfg, dev, library, resolver, br, historyRepo, log)
		if openErr != nil {
			return fmt.Errorf("device %q: %w", dev.ID, openErr)
		}
		defer func(id string, conn *amp.Connection) {
			log.Info("closing device connection", "device_id", id)
			if closeErr := conn.Close(); closeErr != nil {
				log.Error("error closing device connection", "device_id", id, "error", closeErr)
			}
		}(dev.ID, conn)
	}
	log.Info("devices connected", "count", len(cfg.Devices))

	// Start command routing
	if br != nil {
		if startErr := br.Start(); startErr != nil {
			return fmt.Errorf("starting bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping bridge")
			br.Stop()
		}()
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Bridge (publishes offline availability)
	// 2. Device connections
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database

	log.Info("Multizone Core stopped")
	return nil
}

// openDevice resolves one configured amplifier against the descriptor
// corpus and opens its serial connection.
//
// Parameters:
//   - cfg: Application configuration
//   - dev: The device entry to open
//   - library: Loaded descriptor corpus
//   - resolver: Profile resolver
//   - br: MQTT bridge, or nil when the broker is disabled
//   - historyRepo: Status history repository
//   - log: Logger instance
//
// Returns:
//   - *amp.Connection: Running connection with polling active
//   - error: If the descriptor, codec, or serial port cannot be opened
func openDevice(cfg *config.Config, dev config.DeviceConfig, library *profile.Library, resolver *profile.Resolver, br *bridge.Bridge, historyRepo *history.Repository, log *logging.Logger) (*amp.Connection, error) {
	doc, err := library.Series(dev.Series)
	if err != nil {
		return nil, fmt.Errorf("looking up series: %w", err)
	}

	prof, err := resolver.Resolve(doc, dev.Manufacturer, dev.Model)
	if err != nil {
		return nil, fmt.Errorf("resolving profile: %w", err)
	}

	codec, err := protocol.Default().Get(prof.Protocol)
	if err != nil {
		return nil, fmt.Errorf("looking up codec: %w", err)
	}

	transport, err := amp.OpenSerial(dev.Port, prof.Serial, codec.ResponseTerminator())
	if err != nil {
		return nil, fmt.Errorf("opening serial port: %w", err)
	}

	// Status snapshots flow to the bridge when MQTT is up, otherwise
	// straight to history so polling still leaves a record.
	deviceID := dev.ID
	var onStatus func(st protocol.ZoneStatus)
	if br != nil {
		onStatus = func(st protocol.ZoneStatus) {
			br.HandleStatus(deviceID, st)
		}
	} else {
		onStatus = func(st protocol.ZoneStatus) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if recErr := historyRepo.Record(ctx, deviceID, st, history.SourcePoll); recErr != nil {
				log.Warn("history record failed", "device_id", deviceID, "error", recErr)
			}
		}
	}

	conn, err := amp.NewConnection(amp.Config{
		Profile:      prof,
		Codec:        codec,
		Transport:    transport,
		PollInterval: cfg.PollInterval(),
		OnStatus:     onStatus,
		Logger:       log.With("device_id", deviceID),
	})
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("starting connection: %w", err)
	}

	if br != nil {
		if addErr := br.AddDevice(deviceID, conn); addErr != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("registering device: %w", addErr)
		}
	}

	log.Info("device connected",
		"device_id", deviceID,
		"model", prof.Model,
		"protocol", prof.Protocol,
		"port", dev.Port,
		"zones", prof.Zones,
	)
	return conn, nil
}

// pruneHistoryInterval is how often aged snapshots are swept out.
const pruneHistoryInterval = time.Hour

// pruneHistory periodically deletes status snapshots older than the
// configured retention. Runs until ctx is cancelled.
func pruneHistory(ctx context.Context, repo *history.Repository, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(pruneHistoryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		deleted, err := repo.Prune(pruneCtx, retention)
		cancel()
		if err != nil {
			log.Warn("history prune failed", "error", err)
			continue
		}
		if deleted > 0 {
			log.Info("history pruned", "deleted", deleted, "retention", retention)
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses MULTIZONE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MULTIZONE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
