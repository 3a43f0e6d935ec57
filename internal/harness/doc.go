// Package harness runs scripted scenarios against a catalog of cells.
//
// A scenario is a YAML file naming a catalog and a list of steps:
//
//	name: counter
//	description: Derived cells follow their sources.
//	catalog: counter
//	steps:
//	  - get: count-title
//	    expect: "Count: 0"
//	  - set: doubled
//	    action: 3
//	    expect: 3
//	  - update: count
//	    delta: 1
//	  - set: count-title
//	    action: "x"
//	    error: P004
//
// Scenario files are checked against an embedded CUE schema before they are
// decoded. Run executes the steps in a fresh boundary and returns the trace
// of values observed, which tests compare against golden files.
package harness
