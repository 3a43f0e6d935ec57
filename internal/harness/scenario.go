package harness

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/pebble/internal/errors"
)

//go:embed schema.cue
var schemaSource string

// Scenario is a scripted sequence of reads and writes against one catalog.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// Catalog is the name of the cell catalog to run against.
	Catalog string `yaml:"catalog"`

	// Steps run in order in a single boundary.
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Exactly one of Get, Set and Update is set.
type Step struct {
	// Get reads the named cell.
	Get string `yaml:"get,omitempty"`

	// Set writes Action to the named cell.
	Set    string `yaml:"set,omitempty"`
	Action any    `yaml:"action,omitempty"`

	// Update adds Delta to the named numeric cell.
	Update string  `yaml:"update,omitempty"`
	Delta  float64 `yaml:"delta,omitempty"`

	// Expect, when present, is compared with the value the step observed.
	Expect any `yaml:"expect,omitempty"`

	// Error, when set, is the error code the step must fail with.
	Error string `yaml:"error,omitempty"`

	hasExpect bool
}

// Step operations.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpUpdate = "update"
)

// Op returns the step's operation.
func (s Step) Op() string {
	switch {
	case s.Get != "":
		return OpGet
	case s.Set != "":
		return OpSet
	default:
		return OpUpdate
	}
}

// Cell returns the identity of the cell the step targets.
func (s Step) Cell() string {
	switch s.Op() {
	case OpGet:
		return s.Get
	case OpSet:
		return s.Set
	default:
		return s.Update
	}
}

// HasExpect reports whether the step carries an expectation.
// A literal `expect: null` counts.
func (s Step) HasExpect() bool {
	return s.hasExpect || s.Expect != nil
}

// UnmarshalYAML records whether expect was present.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type plain Step
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "expect" {
			s.hasExpect = true
		}
	}
	return nil
}

// LoadScenario reads, validates and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("P030").
			WithDetail("Failed to read " + filepath.Base(path)).
			Wrap(err)
	}
	return ParseScenario(data)
}

// ParseScenario validates data against the scenario schema and decodes it.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.New("P030").Wrap(err)
	}
	return &scenario, nil
}

// Validate checks scenario YAML against the schema without running it.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.New("P030").
			WithDetail("The scenario is not valid YAML.").
			Wrap(err)
	}
	if doc == nil {
		return errors.New("P030").WithDetail("The scenario is empty.")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Scenario"))
	if err := schema.Err(); err != nil {
		return errors.New("P030").WithDetail("The scenario schema failed to compile.").Wrap(err)
	}

	value := schema.Unify(ctx.Encode(doc))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return errors.New("P030").
			WithDetail(err.Error()).
			WithSuggestion("Each step needs exactly one of get, set (with action) or update (with delta)")
	}
	return nil
}
