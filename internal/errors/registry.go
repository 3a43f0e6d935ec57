package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Setup Errors (P001-P009)
	// ============================================

	"P001": {
		Category: CategorySetup,
		Message:  "Boundary created without a live owner",
		Detail:   "A boundary anchors every cell instance to an ownership scope. It needs a non-nil owner that has not been disposed.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P001",
	},
	"P002": {
		Category: CategorySetup,
		Message:  "Cell accessed outside a boundary",
		Detail:   "No boundary was found on the current owner or any of its ancestors. Create one with pebble.NewBoundary or pebble.Provide and access cells inside its owner.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P002",
	},

	// ============================================
	// Contract Errors (P003-P019)
	// ============================================

	"P003": {
		Category: CategoryContract,
		Message:  "Unrecognized cell kind",
		Detail:   "The cell was not produced by a pebble constructor. Use NewPebble, NewComputed, NewProxy or NewCustom.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P003",
	},
	"P004": {
		Category: CategoryContract,
		Message:  "Cell is read-only",
		Detail:   "Computed cells derive their value and cannot be written. Write to the cells the computation reads instead.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P004",
	},
	"P005": {
		Category: CategoryContract,
		Message:  "Invalid action for cell",
		Detail:   "Plain cells accept a value or an updater function of their own type. Proxy and custom cells accept their declared action type.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P005",
	},
	"P010": {
		Category: CategoryContract,
		Message:  "Cell referenced itself during construction",
		Detail:   "A cell accessed itself before its own construction or computation finished, directly or through other cells. Break the cycle.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P010",
	},
	"P011": {
		Category: CategoryContract,
		Message:  "Option type does not match cell type",
		Detail:   "WithEquals, WithInitial and WithInitialFunc must be instantiated with the same type parameter as the cell they configure.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P011",
	},
	"P012": {
		Category: CategoryContract,
		Message:  "Cell identity reused with a different kind or type",
		Detail:   "Identities are the registry key. Two definitions with the same name must be the same kind of cell over the same type.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P012",
	},

	// ============================================
	// Config Errors (P020-P029)
	// ============================================

	"P020": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "pebble.json could not be parsed or contains an unsupported value.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P020",
	},

	// ============================================
	// Scenario Errors (P030-P039)
	// ============================================

	"P030": {
		Category: CategoryScenario,
		Message:  "Invalid scenario",
		Detail:   "The scenario file does not match the scenario schema.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P030",
	},
	"P031": {
		Category: CategoryScenario,
		Message:  "Scenario expectation failed",
		Detail:   "A step's observed value differs from its expected value.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P031",
	},
	"P032": {
		Category: CategoryScenario,
		Message:  "Unknown catalog or cell",
		Detail:   "Scenarios may only reference catalogs registered with the harness and cells those catalogs define.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P032",
	},

	// ============================================
	// Storage Errors (P040-P049)
	// ============================================

	"P040": {
		Category: CategoryStorage,
		Message:  "Snapshot store failure",
		Detail:   "The snapshot store could not read or write the requested key.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P040",
	},
	"P041": {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
		Detail:   "No snapshot exists under the requested key.",
		DocURL:   "https://vango.dev/docs/pebble/errors/P041",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
