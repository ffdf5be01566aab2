package control

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Inputs are the three analog axes the host delivers each frame.
type Inputs struct {
	Thrust    float64 `yaml:"thrust" json:"thrust"`
	MoveUp    float64 `yaml:"move_up" json:"move_up"`
	MoveRight float64 `yaml:"move_right" json:"move_right"`
}

// Clamp limits every axis to [-1, 1].
func (in Inputs) Clamp() Inputs {
	return Inputs{
		Thrust:    clamp(in.Thrust, -1, 1),
		MoveUp:    clamp(in.MoveUp, -1, 1),
		MoveRight: clamp(in.MoveRight, -1, 1),
	}
}

// Source supplies the axes for one frame. The sample is the state after
// the most recent fixed tick.
type Source interface {
	Sample(s dynamo.Sample) Inputs
}

// Collider is implemented by sources that receive collision events from
// outside the simulation goroutine. The loop forwards each one to
// Mapper.OnCollision.
type Collider interface {
	TakeCollision() bool
}

// Resetter is implemented by sources with memory of past samples.
type Resetter interface {
	Reset()
}

// Keyframe sets all axes from At (seconds) until the next keyframe.
type Keyframe struct {
	At     float64 `yaml:"at"`
	Inputs `yaml:",inline"`
}

// Script replays piecewise-constant keyframes. Before the first keyframe
// every axis is zero.
type Script struct {
	Frames []Keyframe
}

func NewScript(frames []Keyframe) *Script {
	sorted := make([]Keyframe, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Script{Frames: sorted}
}

// LoadScript reads a YAML list of keyframes.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read input script")
	}
	var frames []Keyframe
	if err := yaml.Unmarshal(data, &frames); err != nil {
		return nil, errors.Wrapf(err, "parse input script %s", path)
	}
	return NewScript(frames), nil
}

func (s *Script) Sample(x dynamo.Sample) Inputs {
	i := sort.Search(len(s.Frames), func(i int) bool { return s.Frames[i].At > x.Time })
	if i == 0 {
		return Inputs{}
	}
	return s.Frames[i-1].Inputs
}

// Constant always returns the same axes.
type Constant Inputs

func (c Constant) Sample(dynamo.Sample) Inputs { return Inputs(c) }
