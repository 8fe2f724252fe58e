package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/openav/multizone-core/internal/history"
	"github.com/openav/multizone-core/internal/infrastructure/mqtt"
	"github.com/openav/multizone-core/internal/level"
	"github.com/openav/multizone-core/internal/profile"
	"github.com/openav/multizone-core/internal/protocol"
)

// defaultCommandTimeout bounds one dispatched command including the status
// readback that follows it.
const defaultCommandTimeout = 10 * time.Second

// Snapshot sources recorded alongside status history.
const (
	sourcePoll    = "poll"
	sourceQuery   = "query"
	sourceCommand = "command"
)

// Logger is the minimal logging interface the bridge needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Amplifier is the connection surface the bridge dispatches to.
// *amp.Connection satisfies it.
type Amplifier interface {
	SetPower(ctx context.Context, zone int, on bool) error
	SetMute(ctx context.Context, zone int, mute bool) error
	SetVolume(ctx context.Context, zone int, v level.Value) error
	SetBass(ctx context.Context, zone int, v level.Value) error
	SetTreble(ctx context.Context, zone int, v level.Value) error
	SetBalance(ctx context.Context, zone int, pair level.Pair) error
	SetSource(ctx context.Context, zone, source int) error
	Status(ctx context.Context, zone int) (*protocol.ZoneStatus, error)
	RestoreZone(ctx context.Context, st *protocol.ZoneStatus) error
	Profile() *profile.DeviceProfile
}

// MQTTClient is the broker surface the bridge publishes and subscribes on.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Recorder persists zone status snapshots and serves the newest one back
// for restore commands. May be nil.
type Recorder interface {
	Record(ctx context.Context, deviceID string, st protocol.ZoneStatus, source string) error
	Latest(ctx context.Context, deviceID string, zone int) (*history.Entry, error)
}

// Telemetry receives flattened status snapshots, level changes and command
// round-trip timings for time-series storage. May be nil.
type Telemetry interface {
	WriteZoneStatus(deviceID string, zone int, fields map[string]interface{})
	WriteZoneLevel(deviceID string, zone int, control string, db float64, step int)
	WriteCommandMetric(deviceID string, action string, duration time.Duration, ok bool)
}

// Config assembles a bridge.
type Config struct {
	// Client is the connected MQTT client. Required.
	Client MQTTClient

	// History receives every published snapshot. Optional.
	History Recorder

	// Telemetry receives every published snapshot. Optional.
	Telemetry Telemetry

	// QoS for published status and subscribed commands.
	QoS byte

	// CommandTimeout bounds a single dispatched command. Zero means
	// defaultCommandTimeout.
	CommandTimeout time.Duration

	// Logger for dispatch and publish diagnostics. Optional.
	Logger Logger
}

// Bridge routes zone commands from MQTT to amplifier connections and zone
// status from connections back to MQTT.
type Bridge struct {
	client    MQTTClient
	history   Recorder
	telemetry Telemetry
	qos       byte
	timeout   time.Duration
	logger    Logger
	topics    mqtt.Topics

	mu      sync.RWMutex
	devices map[string]Amplifier
}

// New creates a bridge. Devices are registered afterwards with AddDevice
// and command routing begins with Start.
func New(cfg Config) (*Bridge, error) {
	if cfg.Client == nil {
		return nil, errors.New("bridge: config missing MQTT client")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &Bridge{
		client:    cfg.Client,
		history:   cfg.History,
		telemetry: cfg.Telemetry,
		qos:       cfg.QoS,
		timeout:   timeout,
		logger:    logger,
		devices:   make(map[string]Amplifier),
	}, nil
}

// AddDevice registers a connection under a device id and announces the
// device as online. The id is the one used in command and status topics.
func (b *Bridge) AddDevice(id string, conn Amplifier) error {
	if id == "" || conn == nil {
		return errors.New("bridge: empty device id or nil connection")
	}

	b.mu.Lock()
	if _, exists := b.devices[id]; exists {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateDevice, id)
	}
	b.devices[id] = conn
	b.mu.Unlock()

	if err := b.client.Publish(b.topics.DeviceAvailability(id), []byte("online"), b.qos, true); err != nil {
		b.logger.Warn("availability publish failed", "device_id", id, "error", err)
	}

	b.logger.Info("device registered",
		"device_id", id,
		"model", conn.Profile().Model,
		"zones", conn.Profile().Zones,
	)
	return nil
}

// Start subscribes to the zone command wildcard and begins dispatching.
func (b *Bridge) Start() error {
	if err := b.client.Subscribe(b.topics.AllZoneCommands(), b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to zone commands: %w", err)
	}
	b.logger.Info("bridge started", "topic", b.topics.AllZoneCommands())
	return nil
}

// Stop unsubscribes from command topics and marks every device offline.
func (b *Bridge) Stop() {
	if err := b.client.Unsubscribe(b.topics.AllZoneCommands()); err != nil {
		b.logger.Warn("unsubscribe failed", "error", err)
	}

	b.mu.RLock()
	ids := make([]string, 0, len(b.devices))
	for id := range b.devices {
		ids = append(ids, id)
	}
	b.mu.RUnlock()

	for _, id := range ids {
		if err := b.client.Publish(b.topics.DeviceAvailability(id), []byte("offline"), b.qos, true); err != nil {
			b.logger.Warn("availability publish failed", "device_id", id, "error", err)
		}
	}
}

// HandleStatus publishes a status snapshot that originated inside a
// connection (status polling). Wire it as the connection's OnStatus
// callback:
//
//	amp.Config{OnStatus: func(st protocol.ZoneStatus) {
//	    br.HandleStatus("acurus-main", st)
//	}}
func (b *Bridge) HandleStatus(deviceID string, st protocol.ZoneStatus) {
	conn, err := b.device(deviceID)
	if err != nil {
		b.logger.Error("status from unregistered device", "device_id", deviceID)
		return
	}
	b.publishStatus(deviceID, conn.Profile(), st, sourcePoll)
}

// device looks up a registered connection.
func (b *Bridge) device(id string) (Amplifier, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	conn, ok := b.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	return conn, nil
}

// handleCommand dispatches one zone command message.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	deviceID, zone, err := parseCommandTopic(topic)
	if err != nil {
		return err
	}

	conn, err := b.device(deviceID)
	if err != nil {
		return err
	}

	env, err := parseCommand(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if env.Action == "status" {
		st, queryErr := conn.Status(ctx, zone)
		if queryErr != nil {
			return fmt.Errorf("querying %s zone %d: %w", deviceID, zone, queryErr)
		}
		b.publishStatus(deviceID, conn.Profile(), *st, sourceQuery)
		return nil
	}

	start := time.Now()
	var dispatchErr error
	if env.Action == "restore" {
		dispatchErr = b.restore(ctx, conn, deviceID, zone)
	} else {
		dispatchErr = b.dispatch(ctx, conn, zone, env)
	}
	if b.telemetry != nil {
		b.telemetry.WriteCommandMetric(deviceID, env.Action, time.Since(start), dispatchErr == nil)
	}
	if dispatchErr != nil {
		return fmt.Errorf("dispatching %s to %s zone %d: %w", env.Action, deviceID, zone, dispatchErr)
	}
	if b.telemetry != nil {
		b.recordLevel(conn.Profile(), deviceID, zone, env)
	}

	b.logger.Debug("command dispatched",
		"device_id", deviceID,
		"zone", zone,
		"action", env.Action,
	)

	// Read the zone back so consumers see the device's actual state, not
	// an assumption about what the command did.
	st, queryErr := conn.Status(ctx, zone)
	if queryErr != nil {
		b.logger.Warn("post-command status query failed",
			"device_id", deviceID,
			"zone", zone,
			"error", queryErr,
		)
		return nil
	}
	b.publishStatus(deviceID, conn.Profile(), *st, sourceCommand)
	return nil
}

// dispatch invokes the connection method for one parsed command.
func (b *Bridge) dispatch(ctx context.Context, conn Amplifier, zone int, env *commandEnvelope) error {
	switch env.Action {
	case "power":
		if env.On == nil {
			return fmt.Errorf("%w: power requires on", ErrBadPayload)
		}
		return conn.SetPower(ctx, zone, *env.On)
	case "mute":
		if env.On == nil {
			return fmt.Errorf("%w: mute requires on", ErrBadPayload)
		}
		return conn.SetMute(ctx, zone, *env.On)
	case "volume":
		v, err := env.levelValue()
		if err != nil {
			return err
		}
		return conn.SetVolume(ctx, zone, v)
	case "bass":
		v, err := env.levelValue()
		if err != nil {
			return err
		}
		return conn.SetBass(ctx, zone, v)
	case "treble":
		v, err := env.levelValue()
		if err != nil {
			return err
		}
		return conn.SetTreble(ctx, zone, v)
	case "balance":
		pair, err := env.balancePair()
		if err != nil {
			return err
		}
		return conn.SetBalance(ctx, zone, pair)
	case "source":
		if env.Source == nil {
			return fmt.Errorf("%w: source requires source", ErrBadPayload)
		}
		return conn.SetSource(ctx, zone, *env.Source)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
	}
}

// restore replays the newest recorded snapshot for a zone back to the
// hardware, typically after an amplifier power cycle wiped its state.
func (b *Bridge) restore(ctx context.Context, conn Amplifier, deviceID string, zone int) error {
	if b.history == nil {
		return errors.New("bridge: restore requires a history store")
	}
	entry, err := b.history.Latest(ctx, deviceID, zone)
	if err != nil {
		return fmt.Errorf("loading last snapshot: %w", err)
	}
	return conn.RestoreZone(ctx, &entry.Status)
}

// recordLevel emits a telemetry point for a level-changing command,
// carrying both the decibel value and the hardware step it encoded to.
func (b *Bridge) recordLevel(prof *profile.DeviceProfile, deviceID string, zone int, env *commandEnvelope) {
	if env.Action == "balance" {
		if prof.Balance == nil {
			return
		}
		pair, err := env.balancePair()
		if err != nil {
			return
		}
		step, err := prof.Balance.Encode(pair)
		if err != nil {
			return
		}
		db := 0.0
		for _, v := range []level.Value{pair.Left, pair.Right} {
			if !v.IsMute() && v.Decibels() != 0 {
				db = v.Decibels()
			}
		}
		b.telemetry.WriteZoneLevel(deviceID, zone, "balance", db, step)
		return
	}

	var table *level.Table
	switch env.Action {
	case "volume":
		table = prof.Volume
	case "bass":
		table = prof.Bass
	case "treble":
		table = prof.Treble
	default:
		return
	}
	if table == nil {
		return
	}
	v, err := env.levelValue()
	if err != nil || v.IsMute() {
		return
	}
	step, err := table.Encode(v)
	if err != nil {
		return
	}
	b.telemetry.WriteZoneLevel(deviceID, zone, env.Action, v.Decibels(), step)
}

// publishStatus decodes, publishes, records and writes one snapshot.
func (b *Bridge) publishStatus(deviceID string, prof *profile.DeviceProfile, st protocol.ZoneStatus, source string) {
	msg := decodeStatus(deviceID, prof, st, time.Now())

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("status marshal failed", "device_id", deviceID, "zone", st.Zone, "error", err)
		return
	}

	topic := b.topics.ZoneStatus(deviceID, st.Zone)
	if err := b.client.Publish(topic, payload, b.qos, true); err != nil {
		b.logger.Error("status publish failed", "topic", topic, "error", err)
	}

	if b.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := b.history.Record(ctx, deviceID, st, source); err != nil {
			b.logger.Warn("history record failed", "device_id", deviceID, "zone", st.Zone, "error", err)
		}
		cancel()
	}

	if b.telemetry != nil {
		b.telemetry.WriteZoneStatus(deviceID, st.Zone, telemetryFields(msg))
	}
}

// parseCommandTopic extracts the device id and zone from a command topic
// of the form multizone/command/{device}/{zone}.
func parseCommandTopic(topic string) (deviceID string, zone int, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != mqtt.TopicPrefix || parts[1] != "command" || parts[2] == "" {
		return "", 0, fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
	zone, convErr := strconv.Atoi(parts[3])
	if convErr != nil || zone <= 0 {
		return "", 0, fmt.Errorf("%w: bad zone in %s", ErrBadTopic, topic)
	}
	return parts[2], zone, nil
}
