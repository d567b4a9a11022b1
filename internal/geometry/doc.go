// Package geometry resolves IFC placements, points, directions and 2D
// profiles into concrete double-precision geometry.
//
// Every resolver method returns the value together with a resolved flag.
// When the flag is false the value is the documented default (identity
// transform, origin, nil profile) so callers can keep going and record a
// diagnostic instead of aborting the import.
package geometry
