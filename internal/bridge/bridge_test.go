package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openav/multizone-core/internal/history"
	"github.com/openav/multizone-core/internal/infrastructure/mqtt"
	"github.com/openav/multizone-core/internal/level"
	"github.com/openav/multizone-core/internal/profile"
	"github.com/openav/multizone-core/internal/protocol"
)

// fakeClient records publishes and captures subscription handlers.
type fakeClient struct {
	mu        sync.Mutex
	published []publication
	handlers  map[string]mqtt.MessageHandler
	unsubs    []string
}

type publication struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]mqtt.MessageHandler)}
}

func (c *fakeClient) Publish(topic string, payload []byte, qos byte, retained bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, publication{topic, append([]byte(nil), payload...), qos, retained})
	return nil
}

func (c *fakeClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	return nil
}

func (c *fakeClient) Unsubscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubs = append(c.unsubs, topic)
	return nil
}

func (c *fakeClient) publications() []publication {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publication(nil), c.published...)
}

func (c *fakeClient) lastOn(topic string) *publication {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.published) - 1; i >= 0; i-- {
		if c.published[i].topic == topic {
			p := c.published[i]
			return &p
		}
	}
	return nil
}

// fakeAmp records dispatched calls and serves a canned status.
type fakeAmp struct {
	mu     sync.Mutex
	prof   *profile.DeviceProfile
	calls  []string
	value  level.Value
	pair   level.Pair
	source   int
	status   protocol.ZoneStatus
	restored *protocol.ZoneStatus
	err      error
}

func (a *fakeAmp) record(call string) error {
	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()
	return a.err
}

func (a *fakeAmp) SetPower(_ context.Context, zone int, on bool) error {
	if on {
		return a.record("power-on")
	}
	return a.record("power-off")
}

func (a *fakeAmp) SetMute(_ context.Context, zone int, mute bool) error {
	if mute {
		return a.record("mute-on")
	}
	return a.record("mute-off")
}

func (a *fakeAmp) SetVolume(_ context.Context, zone int, v level.Value) error {
	a.mu.Lock()
	a.value = v
	a.mu.Unlock()
	return a.record("volume")
}

func (a *fakeAmp) SetBass(_ context.Context, zone int, v level.Value) error {
	a.mu.Lock()
	a.value = v
	a.mu.Unlock()
	return a.record("bass")
}

func (a *fakeAmp) SetTreble(_ context.Context, zone int, v level.Value) error {
	a.mu.Lock()
	a.value = v
	a.mu.Unlock()
	return a.record("treble")
}

func (a *fakeAmp) SetBalance(_ context.Context, zone int, pair level.Pair) error {
	a.mu.Lock()
	a.pair = pair
	a.mu.Unlock()
	return a.record("balance")
}

func (a *fakeAmp) SetSource(_ context.Context, zone, source int) error {
	a.mu.Lock()
	a.source = source
	a.mu.Unlock()
	return a.record("source")
}

func (a *fakeAmp) Status(_ context.Context, zone int) (*protocol.ZoneStatus, error) {
	if err := a.record("status"); err != nil {
		return nil, err
	}
	st := a.status
	st.Zone = zone
	return &st, nil
}

func (a *fakeAmp) RestoreZone(_ context.Context, st *protocol.ZoneStatus) error {
	a.mu.Lock()
	a.restored = st
	a.mu.Unlock()
	return a.record("restore")
}

func (a *fakeAmp) Profile() *profile.DeviceProfile { return a.prof }

func (a *fakeAmp) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// fakeRecorder captures history writes.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	deviceID string
	status   protocol.ZoneStatus
	source   string
}

func (r *fakeRecorder) Record(_ context.Context, deviceID string, st protocol.ZoneStatus, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedEntry{deviceID, st, source})
	return nil
}

func (r *fakeRecorder) Latest(_ context.Context, deviceID string, zone int) (*history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.deviceID == deviceID && e.status.Zone == zone {
			return &history.Entry{DeviceID: e.deviceID, Zone: zone, Status: e.status, Source: e.source}, nil
		}
	}
	return nil, history.ErrNotFound
}

func (r *fakeRecorder) recorded() []recordedEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEntry(nil), r.entries...)
}

// fakeTelemetry captures telemetry writes.
type fakeTelemetry struct {
	mu      sync.Mutex
	fields  []map[string]interface{}
	levels  []levelPoint
	metrics []commandMetric
}

type levelPoint struct {
	deviceID string
	zone     int
	control  string
	db       float64
	step     int
}

type commandMetric struct {
	deviceID string
	action   string
	ok       bool
}

func (f *fakeTelemetry) WriteZoneStatus(_ string, _ int, fields map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = append(f.fields, fields)
}

func (f *fakeTelemetry) WriteZoneLevel(deviceID string, zone int, control string, db float64, step int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = append(f.levels, levelPoint{deviceID, zone, control, db, step})
}

func (f *fakeTelemetry) WriteCommandMetric(deviceID string, action string, _ time.Duration, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = append(f.metrics, commandMetric{deviceID, action, ok})
}

func testProfile(t *testing.T) *profile.DeviceProfile {
	t.Helper()

	volSteps := make([]level.Value, 39)
	volSteps[0] = level.Mute()
	for i := 1; i <= 38; i++ {
		volSteps[i] = level.DB(float64(i-38) * 2)
	}
	volume, err := level.NewTable("volume", volSteps)
	if err != nil {
		t.Fatalf("NewTable(volume) error = %v", err)
	}

	toneSteps := make([]level.Value, 15)
	for i := range toneSteps {
		toneSteps[i] = level.DB(float64(i-7) * 2)
	}
	bass, err := level.NewTable("bass", toneSteps)
	if err != nil {
		t.Fatalf("NewTable(bass) error = %v", err)
	}
	treble, err := level.NewTable("treble", toneSteps)
	if err != nil {
		t.Fatalf("NewTable(treble) error = %v", err)
	}

	curve := make([]level.Value, 11)
	curve[0] = level.DB(0)
	for i := 1; i < 10; i++ {
		curve[i] = level.DB(float64(i) * -4)
	}
	curve[10] = level.Mute()
	balance, err := level.NewBalanceTable(curve)
	if err != nil {
		t.Fatalf("NewBalanceTable() error = %v", err)
	}

	return &profile.DeviceProfile{
		Series:       "testamp",
		Manufacturer: "Acme",
		Model:        "A6",
		Protocol:     "xantech",
		Zones:        6,
		Sources:      8,
		ZoneNames:    map[int]string{1: "Main", 2: "Kitchen"},
		SourceNames:  map[int]string{1: "Tuner", 4: "Stream"},
		Volume:       volume,
		Bass:         bass,
		Treble:       treble,
		Balance:      balance,
	}
}

func newTestBridge(t *testing.T) (*Bridge, *fakeClient, *fakeAmp, *fakeRecorder, *fakeTelemetry) {
	t.Helper()

	client := newFakeClient()
	recorder := &fakeRecorder{}
	telemetry := &fakeTelemetry{}

	br, err := New(Config{
		Client:    client,
		History:   recorder,
		Telemetry: telemetry,
		QoS:       1,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	amp := &fakeAmp{
		prof: testProfile(t),
		status: protocol.ZoneStatus{
			Power:   true,
			Volume:  13,
			Bass:    7,
			Treble:  9,
			Balance: 10,
			Source:  4,
		},
	}
	if err := br.AddDevice("amp1", amp); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if err := br.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return br, client, amp, recorder, telemetry
}

// command feeds a payload through the captured subscription handler.
func command(t *testing.T, client *fakeClient, topic, payload string) error {
	t.Helper()
	handler := client.handlers["multizone/command/+/+"]
	if handler == nil {
		t.Fatal("no handler registered for multizone/command/+/+")
	}
	return handler(topic, []byte(payload))
}

func TestParseCommandTopic(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		device  string
		zone    int
		wantErr bool
	}{
		{name: "valid", topic: "multizone/command/amp1/3", device: "amp1", zone: 3},
		{name: "segmented zone", topic: "multizone/command/dax/21", device: "dax", zone: 21},
		{name: "wrong prefix", topic: "other/command/amp1/3", wantErr: true},
		{name: "wrong verb", topic: "multizone/status/amp1/3", wantErr: true},
		{name: "missing zone", topic: "multizone/command/amp1", wantErr: true},
		{name: "non-numeric zone", topic: "multizone/command/amp1/x", wantErr: true},
		{name: "zero zone", topic: "multizone/command/amp1/0", wantErr: true},
		{name: "empty device", topic: "multizone/command//3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, zone, err := parseCommandTopic(tt.topic)
			if tt.wantErr {
				if !errors.Is(err, ErrBadTopic) {
					t.Fatalf("parseCommandTopic() error = %v, want ErrBadTopic", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommandTopic() error = %v", err)
			}
			if device != tt.device || zone != tt.zone {
				t.Errorf("parseCommandTopic() = %s/%d, want %s/%d", device, zone, tt.device, tt.zone)
			}
		})
	}
}

func TestBridge_DispatchPower(t *testing.T) {
	_, client, amp, recorder, _ := newTestBridge(t)

	if err := command(t, client, "multizone/command/amp1/1", `{"action":"power","on":true}`); err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}

	calls := amp.recorded()
	if len(calls) != 2 || calls[0] != "power-on" || calls[1] != "status" {
		t.Fatalf("calls = %v, want [power-on status]", calls)
	}

	// The readback is published retained on the status topic.
	pub := client.lastOn("multizone/status/amp1/1")
	if pub == nil {
		t.Fatal("no status published after command")
	}
	if !pub.retained {
		t.Error("status publish not retained")
	}

	entries := recorder.recorded()
	if len(entries) != 1 || entries[0].source != sourceCommand {
		t.Fatalf("history entries = %+v, want one with source command", entries)
	}
}

func TestBridge_DispatchVolume(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    level.Value
	}{
		{name: "decibels", payload: `{"action":"volume","db":-24.5}`, want: level.DB(-24.5)},
		{name: "mute sentinel", payload: `{"action":"volume","mute":true}`, want: level.Mute()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client, amp, _, _ := newTestBridge(t)

			if err := command(t, client, "multizone/command/amp1/2", tt.payload); err != nil {
				t.Fatalf("handleCommand() error = %v", err)
			}
			if !amp.value.Equal(tt.want) {
				t.Errorf("SetVolume() got %s, want %s", amp.value, tt.want)
			}
		})
	}
}

func TestBridge_DispatchBalance(t *testing.T) {
	_, client, amp, _, _ := newTestBridge(t)

	err := command(t, client, "multizone/command/amp1/1", `{"action":"balance","left_db":-8}`)
	if err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}
	if amp.pair.Left.Decibels() != -8 || amp.pair.Right.Decibels() != 0 {
		t.Errorf("SetBalance() pair = %+v, want left -8dB right 0dB", amp.pair)
	}
}

func TestBridge_BalanceBothChannels(t *testing.T) {
	_, client, _, _, _ := newTestBridge(t)

	err := command(t, client, "multizone/command/amp1/1",
		`{"action":"balance","left_db":-4,"right_db":-4}`)
	if !errors.Is(err, ErrBadPayload) {
		t.Fatalf("handleCommand() error = %v, want ErrBadPayload", err)
	}
}

func TestBridge_DispatchSource(t *testing.T) {
	_, client, amp, _, _ := newTestBridge(t)

	if err := command(t, client, "multizone/command/amp1/1", `{"action":"source","source":4}`); err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}
	if amp.source != 4 {
		t.Errorf("SetSource() source = %d, want 4", amp.source)
	}
}

func TestBridge_StatusAction(t *testing.T) {
	_, client, amp, recorder, _ := newTestBridge(t)

	if err := command(t, client, "multizone/command/amp1/1", `{"action":"status"}`); err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}

	calls := amp.recorded()
	if len(calls) != 1 || calls[0] != "status" {
		t.Fatalf("calls = %v, want [status]", calls)
	}

	entries := recorder.recorded()
	if len(entries) != 1 || entries[0].source != sourceQuery {
		t.Fatalf("history entries = %+v, want one with source query", entries)
	}
}

func TestBridge_StatusDecodedToDecibels(t *testing.T) {
	_, client, _, _, telemetry := newTestBridge(t)

	if err := command(t, client, "multizone/command/amp1/1", `{"action":"status"}`); err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}

	pub := client.lastOn("multizone/status/amp1/1")
	if pub == nil {
		t.Fatal("no status published")
	}

	var msg StatusMessage
	if err := json.Unmarshal(pub.payload, &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	// Volume step 13 on the 39-step table is (13-38)*2 = -50 dB.
	if msg.Volume == nil || msg.Volume.Decibels() != -50 {
		t.Errorf("Volume = %v, want -50dB", msg.Volume)
	}
	if msg.Bass == nil || msg.Bass.Decibels() != 0 {
		t.Errorf("Bass = %v, want 0dB", msg.Bass)
	}
	if msg.Balance == nil || msg.Balance.Left.Decibels() != 0 || msg.Balance.Right.Decibels() != 0 {
		t.Errorf("Balance = %+v, want centred", msg.Balance)
	}
	if msg.SourceName != "Stream" {
		t.Errorf("SourceName = %q, want Stream", msg.SourceName)
	}
	if msg.Label != "Main" {
		t.Errorf("Label = %q, want Main", msg.Label)
	}

	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	if len(telemetry.fields) != 1 {
		t.Fatalf("telemetry writes = %d, want 1", len(telemetry.fields))
	}
	if telemetry.fields[0]["volume_db"] != -50.0 {
		t.Errorf("telemetry volume_db = %v, want -50", telemetry.fields[0]["volume_db"])
	}
}

func TestBridge_HandleStatus(t *testing.T) {
	br, client, _, recorder, _ := newTestBridge(t)

	br.HandleStatus("amp1", protocol.ZoneStatus{Zone: 2, Power: true, Volume: 38, Source: 1})

	pub := client.lastOn("multizone/status/amp1/2")
	if pub == nil {
		t.Fatal("no status published")
	}

	var msg StatusMessage
	if err := json.Unmarshal(pub.payload, &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if msg.Volume == nil || msg.Volume.Decibels() != 0 {
		t.Errorf("Volume = %v, want 0dB", msg.Volume)
	}
	if msg.Label != "Kitchen" {
		t.Errorf("Label = %q, want Kitchen", msg.Label)
	}

	entries := recorder.recorded()
	if len(entries) != 1 || entries[0].source != sourcePoll {
		t.Fatalf("history entries = %+v, want one with source poll", entries)
	}
}

func TestBridge_RestoreAction(t *testing.T) {
	_, client, amp, recorder, _ := newTestBridge(t)

	// Record a snapshot, then knock the zone back to defaults.
	if err := command(t, client, "multizone/command/amp1/1", `{"action":"status"}`); err != nil {
		t.Fatalf("status command error = %v", err)
	}

	if err := command(t, client, "multizone/command/amp1/1", `{"action":"restore"}`); err != nil {
		t.Fatalf("restore command error = %v", err)
	}

	amp.mu.Lock()
	restored := amp.restored
	amp.mu.Unlock()
	if restored == nil {
		t.Fatal("RestoreZone not called")
	}
	if restored.Volume != 13 || restored.Source != 4 {
		t.Errorf("restored snapshot = %+v, want volume 13 source 4", restored)
	}

	// The restore publishes a fresh readback like any other command.
	entries := recorder.recorded()
	if len(entries) != 2 || entries[1].source != sourceCommand {
		t.Fatalf("history entries = %+v, want readback with source command", entries)
	}
}

func TestBridge_RestoreWithoutSnapshot(t *testing.T) {
	_, client, amp, _, _ := newTestBridge(t)

	err := command(t, client, "multizone/command/amp1/5", `{"action":"restore"}`)
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("handleCommand() error = %v, want ErrNotFound", err)
	}
	if calls := amp.recorded(); len(calls) != 0 {
		t.Errorf("calls = %v, want none without a snapshot", calls)
	}
}

func TestBridge_LevelTelemetry(t *testing.T) {
	_, client, _, _, telemetry := newTestBridge(t)

	if err := command(t, client, "multizone/command/amp1/2", `{"action":"volume","db":-24.5}`); err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}

	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	if len(telemetry.levels) != 1 {
		t.Fatalf("level points = %d, want 1", len(telemetry.levels))
	}
	got := telemetry.levels[0]
	// -24.5 dB rounds to step 26 (-24 dB) on the 39-step table.
	if got.control != "volume" || got.db != -24.5 || got.step != 26 || got.zone != 2 {
		t.Errorf("level point = %+v, want volume -24.5dB step 26 zone 2", got)
	}
}

func TestBridge_CommandMetrics(t *testing.T) {
	_, client, amp, _, telemetry := newTestBridge(t)

	if err := command(t, client, "multizone/command/amp1/1", `{"action":"power","on":true}`); err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}

	amp.err = protocol.ErrUnsupportedAction
	if err := command(t, client, "multizone/command/amp1/1", `{"action":"bass","db":2}`); err == nil {
		t.Fatal("handleCommand() error = nil, want dispatch failure")
	}

	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	if len(telemetry.metrics) != 2 {
		t.Fatalf("command metrics = %d, want 2", len(telemetry.metrics))
	}
	if m := telemetry.metrics[0]; m.action != "power" || !m.ok {
		t.Errorf("first metric = %+v, want power ok", m)
	}
	if m := telemetry.metrics[1]; m.action != "bass" || m.ok {
		t.Errorf("second metric = %+v, want bass failed", m)
	}
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("New() error = nil, want missing client error")
	}
	if errors.Is(err, ErrBadPayload) {
		t.Errorf("New() error = %v, want a plain constructor error", err)
	}
}

func TestBridge_UnknownDevice(t *testing.T) {
	_, client, _, _, _ := newTestBridge(t)

	err := command(t, client, "multizone/command/ghost/1", `{"action":"power","on":true}`)
	if !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("handleCommand() error = %v, want ErrUnknownDevice", err)
	}
}

func TestBridge_BadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{name: "not json", payload: `power on`, want: ErrBadPayload},
		{name: "missing action", payload: `{"on":true}`, want: ErrBadPayload},
		{name: "power without on", payload: `{"action":"power"}`, want: ErrBadPayload},
		{name: "volume without level", payload: `{"action":"volume"}`, want: ErrBadPayload},
		{name: "source without source", payload: `{"action":"source"}`, want: ErrBadPayload},
		{name: "unknown action", payload: `{"action":"loudness","on":true}`, want: ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client, amp, _, _ := newTestBridge(t)

			err := command(t, client, "multizone/command/amp1/1", tt.payload)
			if !errors.Is(err, tt.want) {
				t.Fatalf("handleCommand() error = %v, want %v", err, tt.want)
			}
			if calls := amp.recorded(); len(calls) != 0 {
				t.Errorf("calls = %v, want none for rejected payload", calls)
			}
		})
	}
}

func TestBridge_DispatchErrorPropagates(t *testing.T) {
	_, client, amp, _, _ := newTestBridge(t)
	amp.err = protocol.ErrUnsupportedAction

	err := command(t, client, "multizone/command/amp1/1", `{"action":"bass","db":2}`)
	if !errors.Is(err, protocol.ErrUnsupportedAction) {
		t.Fatalf("handleCommand() error = %v, want ErrUnsupportedAction", err)
	}
}

func TestBridge_AddDevice(t *testing.T) {
	client := newFakeClient()
	br, err := New(Config{Client: client, QoS: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	amp := &fakeAmp{prof: testProfile(t)}
	if err := br.AddDevice("amp1", amp); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}

	// Registration announces the device online, retained.
	pub := client.lastOn("multizone/availability/amp1")
	if pub == nil {
		t.Fatal("no availability published")
	}
	if string(pub.payload) != "online" || !pub.retained {
		t.Errorf("availability = %q retained=%v, want online retained", pub.payload, pub.retained)
	}

	if err := br.AddDevice("amp1", amp); !errors.Is(err, ErrDuplicateDevice) {
		t.Errorf("AddDevice() duplicate error = %v, want ErrDuplicateDevice", err)
	}
}

func TestBridge_Stop(t *testing.T) {
	br, client, _, _, _ := newTestBridge(t)

	br.Stop()

	if len(client.unsubs) != 1 || client.unsubs[0] != "multizone/command/+/+" {
		t.Errorf("unsubs = %v, want [multizone/command/+/+]", client.unsubs)
	}

	pub := client.lastOn("multizone/availability/amp1")
	if pub == nil || string(pub.payload) != "offline" {
		t.Fatalf("availability after Stop = %v, want offline", pub)
	}
}

func TestDecodeStatus_OmitsMissingControls(t *testing.T) {
	prof := testProfile(t)
	prof.Bass = nil
	prof.Treble = nil
	prof.Balance = nil

	msg := decodeStatus("amp1", prof, protocol.ZoneStatus{Zone: 1, Volume: 13}, time.Now())

	if msg.Bass != nil || msg.Treble != nil || msg.Balance != nil {
		t.Errorf("decodeStatus() kept tone/balance fields for device without them")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, field := range []string{"bass", "treble", "balance"} {
		if strings.Contains(string(payload), `"`+field+`"`) {
			t.Errorf("payload contains %q for device without the control: %s", field, payload)
		}
	}
}
