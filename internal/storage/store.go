package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/quadsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a saved run. The caller fills the run setup; Save
// stamps ID, Timestamp, Steps and Metrics.
type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	TickPeriod    float64            `json:"tick_period"`
	Duration      float64            `json:"duration"`
	Steps         int                `json:"steps"`
	InputMode     string             `json:"input_mode"`
	Mass          float64            `json:"mass"`
	Gravity       float64            `json:"gravity"`
	ThrustCoeff   float64            `json:"thrust_coefficient"`
	Drag          [3]float64         `json:"drag"`
	UnitsPerMeter float64            `json:"units_per_meter"`
	Metrics       map[string]float64 `json:"metrics"`
	Errors        []string           `json:"errors,omitempty"`
}

func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := s.newRunID(meta.Name, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrap(err, "create run dir")
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	meta.Errors = nil
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", errors.Wrap(err, "create states file")
	}
	defer f.Close()

	if err := WriteCSV(f, result.Samples); err != nil {
		return "", errors.Wrapf(err, "write %s", statesFile)
	}
	return runID, nil
}

func (s *Store) newRunID(name string, now time.Time) string {
	if name == "" {
		name = "run"
	}
	id := fmt.Sprintf("%s_%d", name, now.Unix())
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s_%d_%d", name, now.Unix(), i)
	}
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create metadata")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(meta), "encode metadata")
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "run %s metadata", runID)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]dynamo.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", runID)
	}
	defer f.Close()

	samples, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "run %s states", runID)
	}
	return samples, nil
}

// LoadResult rebuilds a Result from a saved run.
func (s *Store) LoadResult(runID string) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &dynamo.Result{
		Samples:    samples,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}, nil
}
