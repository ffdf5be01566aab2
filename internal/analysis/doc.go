// Package analysis characterizes recorded flights.
//
//   - [AnalyzeResponse]: rise time, overshoot and settling of the altitude
//     against a hold target
//   - [DominantOscillation]: strongest periodic component of the altitude
//     trace, from its spectrum
//   - [PhasePortrait]: altitude against vertical speed, with
//     [PhasePortraitToASCII] for the terminal
//
// A well tuned hold settles inside a few seconds and shows no dominant
// oscillation above the noise floor:
//
//	resp, err := analysis.AnalyzeResponse(result.Samples, 5, 0.02)
//	osc, err := analysis.DominantOscillation(result.Samples)
package analysis
