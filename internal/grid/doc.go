// Package grid loads, updates, validates, and persists cell grids.
//
// A grid is stored as plain CSV, one row per line and one integer cell per
// field, with no header:
//
//	1,0,0
//	0,-1,0
//
// The row count is the number of non-blank lines and the column count is
// the field count of each line. Every line must carry the same number of
// fields.
//
// # Cell Values
//
//   - 1: yes
//   - -1: no
//   - 0: skip (also the initial value)
//
// Responses are matched case-insensitively. Anything other than "yes" or
// "no" is recorded as skip.
//
// # Writes
//
// Persist writes the whole grid to a temporary file next to the target and
// renames it into place, so a crash mid-write leaves the previous file
// intact. There is no locking; concurrent writers race and the last rename
// wins.
package grid
