// Package viz is the terminal front end for live flights.
//
// [Model] runs a simulator one input frame per Bubble Tea tick and draws a
// side view of the quad on a Braille [Canvas], an altitude trace, and the
// state the host would see: world position, host rotator, and the mapper
// rate channels. [Picker] lists presets and opens a Model for the one
// chosen.
//
// # Key Bindings
//
//	w/s        - Thrust up/down
//	↑/↓        - MoveUp stick
//	←/→        - MoveRight stick
//	x          - Center sticks
//	c          - Collision
//	Space      - Pause/Resume
//	r          - Reset
//	?          - Help
//	q          - Quit
package viz
