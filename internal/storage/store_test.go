package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/quadsim/internal/dynamo"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		Samples: []dynamo.Sample{
			{Time: 0.02, Position: dynamo.Vec3{0, 0, 0}, Throttle: 0, Grounded: true},
			{
				Time:         0.04,
				Position:     dynamo.Vec3{0.1, -0.2, 0.3},
				Velocity:     dynamo.Vec3{1, 2, 3},
				Acceleration: dynamo.Vec3{0, 0, 39.2},
				Orientation:  dynamo.Euler{Roll: -0.25},
				Throttle:     1,
			},
		},
		Metrics:    map[string]float64{"max_altitude": 0.3},
		StepsTaken: 2,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Name: "liftoff", TickPeriod: 0.02, Mass: 0.2}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "liftoff_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", meta.Steps)
	}
	if meta.Mass != 0.2 {
		t.Errorf("expected mass 0.2, got %f", meta.Mass)
	}
	if meta.Metrics["max_altitude"] != 0.3 {
		t.Errorf("expected max_altitude 0.3, got %f", meta.Metrics["max_altitude"])
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}

	got := samples[1]
	if got.Position != (dynamo.Vec3{0.1, -0.2, 0.3}) {
		t.Errorf("position mismatch: %v", got.Position)
	}
	if got.Acceleration[2] != 39.2 {
		t.Errorf("acceleration mismatch: %v", got.Acceleration)
	}
	if got.Orientation.Roll != -0.25 {
		t.Errorf("roll mismatch: %f", got.Orientation.Roll)
	}
	if !samples[0].Grounded || samples[1].Grounded {
		t.Error("grounded flags not preserved")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	first, err := st.Save(RunMetadata{Name: "hover"}, testResult())
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(RunMetadata{Name: "hover"}, testResult())
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("run ids collided: %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save(RunMetadata{Name: "drop"}, testResult())
	if err != nil {
		t.Fatal(err)
	}

	runDir := filepath.Join(dir, runID)
	for _, name := range []string{"metadata.json", "states.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "states.csv"))
	if err != nil {
		t.Fatal(err)
	}
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	if firstLine != strings.Join(Header, ",") {
		t.Errorf("unexpected header %q", firstLine)
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestReadCSVRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testResult().Samples); err != nil {
		t.Fatal(err)
	}
	corrupt := strings.Replace(buf.String(), "0.100000", "abc", 1)

	if _, err := ReadCSV(strings.NewReader(corrupt)); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{Name: "tilted", UnitsPerMeter: 100}
	if err := ExportJSON(&buf, meta, testResult().Samples); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out.Samples))
	}

	s := out.Samples[1]
	want := [3]float64{10, -20, 30}
	for i := range want {
		if math.Abs(s.World[i]-want[i]) > 1e-9 {
			t.Errorf("expected world position in centimeters, got %v", s.World)
		}
	}
	// host rotator mirrors the math frame
	if s.Rotator.Roll <= 0 {
		t.Errorf("expected positive host roll for negative math roll, got %f", s.Rotator.Roll)
	}
}
