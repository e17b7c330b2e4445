package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/sim"
	"github.com/san-kum/tankersim/internal/vessel"
)

func testResult() *sim.Result {
	tel := []env.Telemetry{
		{Step: 0, Time: 0, Lat: 56.0, Lon: 7.0, State: vessel.State{U: 13.5}, Nps: 3, WP1: 0, WP2: 1},
		{Step: 1, Time: 3, Lat: 56.0004, Lon: 7.0, State: vessel.State{North: 40.5, U: 13.5, R: 1.25e-5}, Rudder: 0.0436, Nps: 3, WP1: 0, WP2: 1},
		{Step: 2, Time: 6, Lat: 56.0008, Lon: 7.0001, State: vessel.State{North: 81, East: 0.4, U: 13.4}, Rudder: 0.0872, Nps: 3, WP1: 1, WP2: 2},
	}
	tel[2].Guidance.CrossTrack = -12.5
	tel[2].Env.Depth = 25
	return &sim.Result{
		Telemetry:  tel,
		Actions:    []int{vessel.ActionStarboard, vessel.ActionStarboard},
		Rewards:    []float64{0.5, -1},
		Metrics:    map[string]float64{"cross_track_rms": 8.8, "min_clearance": math.Inf(1)},
		StepsTaken: 2,
		Return:     -0.5,
		Seed:       42,
	}
}

func testInfo() RunInfo {
	return RunInfo{Mode: "train", Policy: "pid", Integrator: "rk45", Dt: 3, Seed: 42}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStoreSaveLoad(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Policy != "pid" {
		t.Errorf("expected policy 'pid', got '%s'", meta.Policy)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Steps != 2 || meta.Return != -0.5 {
		t.Errorf("expected 2 steps and return -0.5, got %d and %f", meta.Steps, meta.Return)
	}
	if meta.Metrics["cross_track_rms"] != 8.8 {
		t.Errorf("expected cross_track_rms 8.8, got %f", meta.Metrics["cross_track_rms"])
	}
	if _, ok := meta.Metrics["min_clearance"]; ok {
		t.Error("infinite metric should not be stored")
	}
}

func TestStoreTelemetryRoundTrip(t *testing.T) {
	st := newStore(t)
	want := testResult()

	runID, err := st.Save(testInfo(), want)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := st.LoadTelemetry(runID)
	if err != nil {
		t.Fatalf("load telemetry failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i := range got {
		w := want.Telemetry[i]
		w.Reading = got[i].Reading
		if !reflect.DeepEqual(got[i], w) {
			t.Errorf("record %d: expected %+v, got %+v", i, w, got[i])
		}
	}
}

func TestStoreTrack(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ls, err := st.LoadTrack(runID)
	if err != nil {
		t.Fatalf("load track failed: %v", err)
	}
	seq := ls.Coordinates()
	if seq.Length() != 3 {
		t.Fatalf("expected 3 points, got %d", seq.Length())
	}
	if xy := seq.GetXY(2); xy.X != 7.0001 || xy.Y != 56.0008 {
		t.Errorf("expected last point (7.0001 56.0008), got %v", xy)
	}
}

func TestTrackOfStationaryRun(t *testing.T) {
	tests := []struct {
		name string
		tel  []env.Telemetry
	}{
		{"no telemetry", nil},
		{"initial state only", testResult().Telemetry[:1]},
		{"never moved", []env.Telemetry{{Lat: 56, Lon: 7}, {Step: 1, Lat: 56, Lon: 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls, err := Track(tt.tel)
			if err != nil {
				t.Fatalf("Track: %v", err)
			}
			if !ls.IsEmpty() {
				t.Errorf("expected empty track, got %s", ls.AsText())
			}
		})
	}
}

func TestStoreZeroStepRun(t *testing.T) {
	st := newStore(t)
	result := testResult()
	result.Telemetry = result.Telemetry[:1]
	result.Actions, result.Rewards = nil, nil
	result.StepsTaken = 0

	runID, err := st.Save(testInfo(), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	ls, err := st.LoadTrack(runID)
	if err != nil {
		t.Fatalf("load track failed: %v", err)
	}
	if !ls.IsEmpty() {
		t.Errorf("expected empty track, got %s", ls.AsText())
	}

	runs, err := st.List(Filter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].LengthDeg != 0 {
		t.Errorf("expected one run of zero length, got %+v", runs)
	}
}

func TestStoreList(t *testing.T) {
	st := newStore(t)

	runs, err := st.List(Filter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	info := testInfo()
	if _, err := st.Save(info, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	info.Policy = "hold"
	if _, err := st.Save(info, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List(Filter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	runs, err = st.List(Filter{Policy: "hold"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Policy != "hold" {
		t.Fatalf("expected the hold run, got %+v", runs)
	}
	if v, ok := runs[0].Metric("cross_track_rms"); !ok || v != 8.8 {
		t.Errorf("expected indexed cross_track_rms 8.8, got %v %v", v, ok)
	}
	if runs[0].LengthDeg <= 0 {
		t.Errorf("expected positive track length, got %f", runs[0].LengthDeg)
	}
}

func TestStoreIDsDoNotCollide(t *testing.T) {
	st := newStore(t)

	a, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("expected distinct ids, got %s twice", a)
	}
}

func TestStoreDelete(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(runID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := st.Load(runID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	runs, _ := st.List(Filter{})
	if len(runs) != 0 {
		t.Errorf("expected empty index, got %d runs", len(runs))
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := newStore(t)
	if _, err := st.LoadTelemetry("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, testInfo(), testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.Steps != 2 || len(data.Telemetry) != 3 || len(data.Actions) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
	if data.Track == "" {
		t.Error("expected track")
	}
}
