// Package errors provides structured, coded errors for pebble.
//
// Every failure pebble reports carries a code (e.g. "P004") that maps to a
// category, a short message and a longer explanation:
//
//   - setup: a cell was accessed without a live boundary (P001-P009)
//   - contract: the caller broke the cell protocol (P010-P019, P003-P005)
//   - config: pebble.json is invalid (P020-P029)
//   - scenario: a harness scenario is invalid or failed (P030-P039)
//   - storage: a snapshot store failed (P040-P049)
//
// Errors with the same code match under errors.Is, so callers compare against
// the exported sentinels regardless of the cell they were raised for:
//
//	err := errors.New("P004").WithCell("count-title")
//	stderrors.Is(err, pebble.ErrReadOnly) // true
//
// Format renders an error for terminal display:
//
//	ERROR P004: Cell is read-only
//
//	  cell: count-title
//
//	  Computed cells derive their value and cannot be written. Write to the
//	  cells the computation reads instead.
package errors
