// Package kernel holds the value objects shared by the courier and order aggregates:
// UUID identifiers and Location, a point on the bounded city grid.
//
// Values are immutable and must be built with their constructors. A zero value
// fails Validate, which every operation checks before using its argument.
// Random locations are drawn from an injected RandomSource so callers decide
// whether they want a seeded (reproducible) or a process-wide generator.
package kernel
