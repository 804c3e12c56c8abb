// Package viz renders solved trajectories in the terminal.
//
//   - [PlotSeries], [PlotSolution]: line charts built with asciigraph
//   - [Canvas]: Braille-based pixel canvas used for phase traces
//   - [Browser]: Bubble Tea model for stepping through the samples of a run
//
// # Key Bindings
//
//	←/→ h/l   - Previous/next sample
//	PgUp/PgDn - Jump a tenth of the run
//	Home/End  - First/last sample
//	/         - Look up a sample by time
//	Q         - Quit
package viz
