// Package control turns raw analog axes into the signals the flight model
// and the host consume.
//
//   - [Mapper]: per-frame stick mapping with first-order smoothing
//   - [Source]: where the three named axes come from each frame
//   - [Script]: keyframed axes loaded from YAML
//   - [Manual]: axes set by an interactive front end
//   - [AltitudeHold]: PID autopilot producing the Thrust axis
//
// # Usage
//
//	m := control.NewMapper(control.DefaultMapperParams())
//	in := src.Sample(sample)
//	m.Update(in, currentRoll, frameDt)
//	quad.Step(tick, m.Throttle())
//
// Only the raw throttle reaches the dynamics. The smoothed forward, pitch,
// yaw and roll channels are kept for display.
package control
