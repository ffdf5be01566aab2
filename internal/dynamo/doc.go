// Package dynamo provides the shared primitives of the quadcopter simulator.
//
// The package defines the value types that cross package boundaries:
//
//   - [Vec3]: inertial-frame vector (meters, m/s, m/s²)
//   - [Euler]: roll/pitch/yaw in radians, math frame
//   - [Rotator]: host-frame orientation in degrees, all axes negated
//   - [Pose]: the snapshot a host applies to its own scene graph
//   - [Metric], [Observer]: hooks called once per fixed tick
//
// # Frames
//
// Position, velocity and acceleration live in the inertial frame with +Z
// up. The body thrust axis is body +Z. Euler angles accumulate and are
// never wrapped.
//
// # Thread Safety
//
// Nothing in this package synchronizes. A simulation has exactly one
// writer; hosts read a published [Pose] copy.
package dynamo
