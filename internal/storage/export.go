package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Header is the states.csv column layout.
var Header = []string{
	"time",
	"x", "y", "z",
	"vx", "vy", "vz",
	"ax", "ay", "az",
	"roll", "pitch", "yaw",
	"throttle", "grounded",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func WriteCSV(w io.Writer, samples []dynamo.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	row := make([]string, len(Header))
	for _, s := range samples {
		row[0] = formatFloat(s.Time)
		for i := 0; i < 3; i++ {
			row[1+i] = formatFloat(s.Position[i])
			row[4+i] = formatFloat(s.Velocity[i])
			row[7+i] = formatFloat(s.Acceleration[i])
		}
		row[10] = formatFloat(s.Orientation.Roll)
		row[11] = formatFloat(s.Orientation.Pitch)
		row[12] = formatFloat(s.Orientation.Yaw)
		row[13] = formatFloat(s.Throttle)
		row[14] = strconv.FormatBool(s.Grounded)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([]dynamo.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Sample{}, nil
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for line, rec := range records[1:] {
		var vals [14]float64
		for i := range vals {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d column %s", line+2, Header[i])
			}
			vals[i] = v
		}
		grounded, err := strconv.ParseBool(rec[14])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d column grounded", line+2)
		}
		samples = append(samples, dynamo.Sample{
			Time:         vals[0],
			Position:     dynamo.Vec3{vals[1], vals[2], vals[3]},
			Velocity:     dynamo.Vec3{vals[4], vals[5], vals[6]},
			Acceleration: dynamo.Vec3{vals[7], vals[8], vals[9]},
			Orientation:  dynamo.Euler{Roll: vals[10], Pitch: vals[11], Yaw: vals[12]},
			Throttle:     vals[13],
			Grounded:     grounded,
		})
	}
	return samples, nil
}

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []ExportSample `json:"samples"`
}

// ExportSample carries both frames of a sample: meters and radians for
// analysis, world units and the host rotator for replay in a scene.
type ExportSample struct {
	Time     float64        `json:"t"`
	Position [3]float64     `json:"position"`
	Velocity [3]float64     `json:"velocity"`
	World    [3]float64     `json:"world"`
	Rotator  dynamo.Rotator `json:"rotator"`
	Throttle float64        `json:"throttle"`
	Grounded bool           `json:"grounded"`
}

func ExportJSON(w io.Writer, meta RunMetadata, samples []dynamo.Sample) error {
	upm := meta.UnitsPerMeter
	if upm <= 0 {
		upm = 1
	}

	data := ExportData{
		Run:     meta,
		Samples: make([]ExportSample, len(samples)),
	}
	for i, s := range samples {
		data.Samples[i] = ExportSample{
			Time:     s.Time,
			Position: s.Position,
			Velocity: s.Velocity,
			World:    s.Pose().World(upm),
			Rotator:  s.Pose().Rotator(),
			Throttle: s.Throttle,
			Grounded: s.Grounded,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
