package amp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openav/multizone-core/internal/level"
	"github.com/openav/multizone-core/internal/profile"
	"github.com/openav/multizone-core/internal/protocol"
)

// Logger defines the logging interface used by the connection.
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

// Config carries the collaborators for a single amplifier connection.
type Config struct {
	// Profile is the resolved device profile.
	Profile *profile.DeviceProfile

	// Codec formats and parses frames for the device's protocol.
	Codec protocol.Codec

	// Transport is the open control port.
	Transport Transport

	// PollInterval is the base cadence of the background status poller.
	// Zero disables polling.
	PollInterval time.Duration

	// OnStatus, when set, receives every zone status decoded from the
	// device, whether polled or explicitly queried. Called from the
	// connection worker; implementations must not block.
	OnStatus func(protocol.ZoneStatus)

	// Logger receives connection lifecycle and poll errors. Optional.
	Logger Logger
}

// Connection drives one amplifier. All wire traffic is serialized through
// an internal worker goroutine.
type Connection struct {
	prof      *profile.DeviceProfile
	codec     protocol.Codec
	transport Transport
	pacer     *Pacer
	onStatus  func(protocol.ZoneStatus)
	logger    Logger

	pollInterval time.Duration
	skipCounter  int

	ops       chan connOp
	done      chan struct{}
	lifeCtx   context.Context
	lifeStop  context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type connResult struct {
	status *protocol.ZoneStatus
	err    error
}

type connOp struct {
	ctx    context.Context
	frames [][]byte
	parse  bool // decode the final response as a zone status
	reply  chan connResult
}

// NewConnection starts the worker for an open transport.
func NewConnection(cfg Config) (*Connection, error) {
	if cfg.Profile == nil {
		return nil, errors.New("amp: config missing profile")
	}
	if cfg.Codec == nil {
		return nil, errors.New("amp: config missing codec")
	}
	if cfg.Transport == nil {
		return nil, errors.New("amp: config missing transport")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Connection{
		prof:         cfg.Profile,
		codec:        cfg.Codec,
		transport:    cfg.Transport,
		pacer:        NewPacer(cfg.Profile.CommandSpacing),
		onStatus:     cfg.OnStatus,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		ops:          make(chan connOp),
		done:         make(chan struct{}),
	}
	c.lifeCtx, c.lifeStop = context.WithCancel(context.Background())

	c.wg.Add(1)
	go c.run()

	return c, nil
}

// run serializes all wire traffic: queued operations and poll ticks never
// overlap.
func (c *Connection) run() {
	defer c.wg.Done()

	var tick <-chan time.Time
	if c.pollInterval > 0 {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-c.done:
			return
		case op := <-c.ops:
			op.reply <- c.execute(op)
		case <-tick:
			// Queued commands go first. A ready tick must not jump
			// ahead of an operation already waiting on the queue.
			if closed := c.drainOps(); closed {
				return
			}
			c.pollTick()
		}
	}
}

// drainOps runs every operation currently parked on the queue. Returns true
// when the connection closed while draining.
func (c *Connection) drainOps() bool {
	for {
		select {
		case <-c.done:
			return true
		case op := <-c.ops:
			op.reply <- c.execute(op)
		default:
			return false
		}
	}
}

// execute sends an operation's frames in order, pacing each send. When
// parse is set the final response is decoded as a zone status.
func (c *Connection) execute(op connOp) connResult {
	// Tie the operation to the connection lifetime so Close aborts an
	// in-flight pacer wait or transport read.
	ctx, cancel := context.WithCancel(op.ctx)
	defer cancel()
	stop := context.AfterFunc(c.lifeCtx, cancel)
	defer stop()

	var last []byte
	for _, frame := range op.frames {
		if err := c.pacer.Wait(ctx); err != nil {
			return connResult{err: err}
		}
		resp, err := c.transport.Roundtrip(ctx, frame)
		if err != nil {
			return connResult{err: err}
		}
		c.pacer.MarkSent()
		last = resp
	}

	if !op.parse {
		return connResult{}
	}

	st, err := c.codec.ParseStatus(last)
	if err != nil {
		return connResult{err: err}
	}
	if c.onStatus != nil {
		c.onStatus(*st)
	}
	return connResult{status: st}
}

// pollTick runs one poll cycle, honouring the descriptor's skip count:
// a skip of N lets N ticks elapse between hardware polls.
func (c *Connection) pollTick() {
	if skip := c.prof.StatusPollSkip; skip > 0 {
		if c.skipCounter < skip {
			c.skipCounter++
			return
		}
		c.skipCounter = 0
	}

	for _, zone := range c.prof.ZoneIDs() {
		st, err := c.queryZone(context.Background(), zone)
		if err != nil {
			c.logger.Warn("zone poll failed",
				"device", c.prof.Model,
				"zone", zone,
				"error", err,
			)
			continue
		}
		c.logger.Debug("zone polled",
			"device", c.prof.Model,
			"zone", zone,
			"power", st.Power,
			"volume", st.Volume,
		)
	}
}

// queryZone performs one status roundtrip inline on the worker goroutine.
func (c *Connection) queryZone(ctx context.Context, zone int) (*protocol.ZoneStatus, error) {
	frame, err := c.codec.FormatQuery(zone)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.prof.Serial.ReadTimeout())
	defer cancel()

	res := c.execute(connOp{ctx: queryCtx, frames: [][]byte{frame}, parse: true})
	return res.status, res.err
}

// submit queues an operation on the worker and waits for its result.
func (c *Connection) submit(ctx context.Context, frames [][]byte, parse bool) (*protocol.ZoneStatus, error) {
	op := connOp{
		ctx:    ctx,
		frames: frames,
		parse:  parse,
		reply:  make(chan connResult, 1),
	}

	select {
	case c.ops <- op:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}

	select {
	case res := <-op.reply:
		return res.status, res.err
	case <-c.done:
		return nil, ErrClosed
	}
}

// sendCommand validates, formats and queues a single zone command.
func (c *Connection) sendCommand(ctx context.Context, cmd protocol.Command) error {
	if !c.prof.ValidZone(cmd.Zone) {
		return fmt.Errorf("%w: zone %d on %s", ErrInvalidZone, cmd.Zone, c.prof.Model)
	}
	frame, err := c.codec.FormatCommand(cmd)
	if err != nil {
		return err
	}
	_, err = c.submit(ctx, [][]byte{frame}, false)
	return err
}

// SetPower switches a zone on or off.
func (c *Connection) SetPower(ctx context.Context, zone int, on bool) error {
	return c.sendCommand(ctx, protocol.Command{Zone: zone, Action: protocol.ActionPower, On: on})
}

// SetMute mutes or unmutes a zone.
func (c *Connection) SetMute(ctx context.Context, zone int, mute bool) error {
	return c.sendCommand(ctx, protocol.Command{Zone: zone, Action: protocol.ActionMute, On: mute})
}

// SetVolume sets a zone's volume to the nearest hardware step for v.
func (c *Connection) SetVolume(ctx context.Context, zone int, v level.Value) error {
	step, err := c.prof.Volume.Encode(v)
	if err != nil {
		return err
	}
	return c.sendCommand(ctx, protocol.Command{Zone: zone, Action: protocol.ActionVolume, Value: step})
}

// SetBass sets a zone's bass level. Fails with ErrUnsupportedAction on
// devices without tone controls.
func (c *Connection) SetBass(ctx context.Context, zone int, v level.Value) error {
	if c.prof.Bass == nil {
		return fmt.Errorf("%w: %s has no bass control", protocol.ErrUnsupportedAction, c.prof.Model)
	}
	step, err := c.prof.Bass.Encode(v)
	if err != nil {
		return err
	}
	return c.sendCommand(ctx, protocol.Command{Zone: zone, Action: protocol.ActionBass, Value: step})
}

// SetTreble sets a zone's treble level. Fails with ErrUnsupportedAction on
// devices without tone controls.
func (c *Connection) SetTreble(ctx context.Context, zone int, v level.Value) error {
	if c.prof.Treble == nil {
		return fmt.Errorf("%w: %s has no treble control", protocol.ErrUnsupportedAction, c.prof.Model)
	}
	step, err := c.prof.Treble.Encode(v)
	if err != nil {
		return err
	}
	return c.sendCommand(ctx, protocol.Command{Zone: zone, Action: protocol.ActionTreble, Value: step})
}

// SetBalance sets a zone's left/right balance from a channel pair. Fails
// with ErrUnsupportedAction on devices without balance control.
func (c *Connection) SetBalance(ctx context.Context, zone int, pair level.Pair) error {
	if c.prof.Balance == nil {
		return fmt.Errorf("%w: %s has no balance control", protocol.ErrUnsupportedAction, c.prof.Model)
	}
	step, err := c.prof.Balance.Encode(pair)
	if err != nil {
		return err
	}
	return c.sendCommand(ctx, protocol.Command{Zone: zone, Action: protocol.ActionBalance, Value: step})
}

// SetSource routes an input source to a zone.
func (c *Connection) SetSource(ctx context.Context, zone, source int) error {
	if !c.prof.ValidSource(source) {
		return fmt.Errorf("%w: source %d on %s", ErrInvalidSource, source, c.prof.Model)
	}
	return c.sendCommand(ctx, protocol.Command{Zone: zone, Action: protocol.ActionSource, Value: source})
}

// Status queries a zone's current state from the hardware, bypassing the
// poll skip.
func (c *Connection) Status(ctx context.Context, zone int) (*protocol.ZoneStatus, error) {
	if !c.prof.ValidZone(zone) {
		return nil, fmt.Errorf("%w: zone %d on %s", ErrInvalidZone, zone, c.prof.Model)
	}
	frame, err := c.codec.FormatQuery(zone)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, [][]byte{frame}, true)
}

// RestoreZone replays a previously captured zone state: power, mute,
// levels and source, in order, as one serialized batch.
func (c *Connection) RestoreZone(ctx context.Context, st *protocol.ZoneStatus) error {
	if !c.prof.ValidZone(st.Zone) {
		return fmt.Errorf("%w: zone %d on %s", ErrInvalidZone, st.Zone, c.prof.Model)
	}
	frames, err := protocol.RestoreZone(c.codec, st)
	if err != nil {
		return err
	}
	_, err = c.submit(ctx, frames, false)
	return err
}

// Profile returns the resolved device profile backing this connection.
func (c *Connection) Profile() *profile.DeviceProfile {
	return c.prof
}

// Close stops the worker and closes the transport, aborting any in-flight
// pacer wait or transport read. Safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.lifeStop()
		close(c.done)
		c.wg.Wait()
		err = c.transport.Close()
	})
	return err
}
