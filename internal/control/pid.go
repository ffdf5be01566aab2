package control

import "github.com/san-kum/quadsim/internal/dynamo"

// AltitudeHold drives the Thrust axis with a PID loop on altitude. The
// hover throttle is fed forward so the integrator only trims. Stick axes
// pass through from Inner when set.
type AltitudeHold struct {
	Kp, Ki, Kd float64
	Target     float64
	Hover      float64
	Inner      Source

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewAltitudeHold(kp, ki, kd, target, hover float64) *AltitudeHold {
	return &AltitudeHold{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Hover:  hover,
		first:  true,
	}
}

func (p *AltitudeHold) Sample(s dynamo.Sample) Inputs {
	var in Inputs
	if p.Inner != nil {
		in = p.Inner.Sample(s)
	}

	err := p.Target - s.Position[2]
	u := p.Kp * err

	if p.first {
		p.first = false
	} else if dt := s.Time - p.prevT; dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt
		u += p.Ki*p.integral + p.Kd*derivative
	}
	p.prevErr = err
	p.prevT = s.Time

	in.Thrust = clamp(p.Hover+u, -1, 1)
	return in
}

// Reset clears integral and derivative state
func (p *AltitudeHold) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
