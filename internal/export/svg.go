// Package export renders recorded flights as standalone SVG plots.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// View picks the two coordinates plotted from each sample.
type View string

const (
	// Side plots x against altitude.
	Side View = "side"
	// Top plots the ground track, x against y.
	Top View = "top"
	// Altitude plots altitude against time.
	Altitude View = "altitude"
)

func (v View) project(s dynamo.Sample) (float64, float64, error) {
	switch v {
	case Side, "":
		return s.Position[0], s.Position[2], nil
	case Top:
		return s.Position[0], s.Position[1], nil
	case Altitude:
		return s.Time, s.Position[2], nil
	}
	return 0, 0, errors.Errorf("unknown view %q", string(v))
}

type point struct{ X, Y float64 }

type bounds struct{ minX, maxX, minY, maxY float64 }

func boundsOf(points []point) bounds {
	b := bounds{points[0].X, points[0].X, points[0].Y, points[0].Y}
	for _, p := range points {
		if p.X < b.minX {
			b.minX = p.X
		}
		if p.X > b.maxX {
			b.maxX = p.X
		}
		if p.Y < b.minY {
			b.minY = p.Y
		}
		if p.Y > b.maxY {
			b.maxY = p.Y
		}
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

func (b bounds) scale(p point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

// WriteSVG draws the flight path in the chosen view. Grounded ticks are
// marked with dots, and views with altitude on the vertical axis get a
// ground line at zero.
func WriteSVG(w io.Writer, samples []dynamo.Sample, view View, width, height int, stroke string) error {
	if len(samples) < 2 {
		return errors.Errorf("need at least 2 samples, got %d", len(samples))
	}
	if width <= 0 || height <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "svg size %dx%d", width, height)
	}

	points := make([]point, len(samples))
	for i, s := range samples {
		x, y, err := view.project(s)
		if err != nil {
			return err
		}
		points[i] = point{x, y}
	}
	b := boundsOf(points)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if view != Top && b.minY <= 0 && b.maxY >= 0 {
		_, gy := b.scale(point{0, 0}, width, height)
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-dasharray="4 4"/>
`, gy, width, gy)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := b.scale(p, width, height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	sb.WriteString(`<g fill="#ff6600">` + "\n")
	for i, s := range samples {
		if !s.Grounded {
			continue
		}
		x, y := b.scale(points[i], width, height)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="1.5"/>`+"\n", x, y)
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "write svg")
}
