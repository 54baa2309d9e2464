// Package taskolib is the repository root; the library lives entirely
// under pkg/, split by component. See SPEC_FULL.md for the specification
// and DESIGN.md for how each package is grounded.
package taskolib
