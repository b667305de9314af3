package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a table scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definition is the CUE file holding the table definition.
	Definition string `yaml:"definition"`

	// Table selects a table in Definition. Optional when there is only one.
	Table string `yaml:"table,omitempty"`

	// Records is the JSON, YAML or TOML record file the table is built over.
	Records string `yaml:"records"`

	// Steps are applied to the table in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the table after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one state change. Exactly one operation field must be set.
type Step struct {
	Filter   string      `yaml:"filter,omitempty"`
	OrderBy  string      `yaml:"orderBy,omitempty"`
	Global   *string     `yaml:"global,omitempty"`
	GroupBy  []string    `yaml:"groupBy,omitempty"`
	Expand   *ExpandStep `yaml:"expand,omitempty"`
	PageSize *int        `yaml:"pageSize,omitempty"`
	Page     *int        `yaml:"page,omitempty"`
	Reset    bool        `yaml:"reset,omitempty"`

	// Expect is checked right after the step.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// Step operation names, as recorded in the trace.
const (
	OpFilter   = "filter"
	OpOrderBy  = "orderBy"
	OpGlobal   = "global"
	OpGroupBy  = "groupBy"
	OpExpand   = "expand"
	OpPageSize = "pageSize"
	OpPage     = "page"
	OpReset    = "reset"
)

// ops returns the operations the step sets.
func (s Step) ops() []string {
	var ops []string
	if s.Filter != "" {
		ops = append(ops, OpFilter)
	}
	if s.OrderBy != "" {
		ops = append(ops, OpOrderBy)
	}
	if s.Global != nil {
		ops = append(ops, OpGlobal)
	}
	if s.GroupBy != nil {
		ops = append(ops, OpGroupBy)
	}
	if s.Expand != nil {
		ops = append(ops, OpExpand)
	}
	if s.PageSize != nil {
		ops = append(ops, OpPageSize)
	}
	if s.Page != nil {
		ops = append(ops, OpPage)
	}
	if s.Reset {
		ops = append(ops, OpReset)
	}
	return ops
}

// Op returns the step's operation name.
func (s Step) Op() string {
	ops := s.ops()
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// ExpandStep is either "all" or a list of row ids.
type ExpandStep struct {
	All bool
	IDs []string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *ExpandStep) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s != "all" {
			return fmt.Errorf("line %d: expand must be \"all\" or a list of row ids, got %q", node.Line, s)
		}
		*e = ExpandStep{All: true}
		return nil
	case yaml.SequenceNode:
		var ids []string
		if err := node.Decode(&ids); err != nil {
			return err
		}
		*e = ExpandStep{IDs: ids}
		return nil
	}
	return fmt.Errorf("line %d: expand must be \"all\" or a list of row ids", node.Line)
}

// StepExpect checks the page after a step. Unset fields are not checked.
type StepExpect struct {
	RowCount  *int     `yaml:"rowCount,omitempty"`
	PageCount *int     `yaml:"pageCount,omitempty"`
	RowIDs    []string `yaml:"rowIds,omitempty"`
}

// Assertion validates the final table.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Rows are the expected row ids (row_ids).
	Rows []string `yaml:"rows,omitempty"`

	// Count is the expected count (row_count, page_count).
	Count *int `yaml:"count,omitempty"`

	// Row and Column address a cell (cell); Column also names the
	// faceted column (unique_values).
	Row    string `yaml:"row,omitempty"`
	Column string `yaml:"column,omitempty"`

	// Value is the expected cell value (cell).
	Value any `yaml:"value,omitempty"`

	// Values are the expected unique values in facet order (unique_values).
	Values []any `yaml:"values,omitempty"`
}

// Assertion type constants.
const (
	AssertRowIDs       = "row_ids"
	AssertRowCount     = "row_count"
	AssertPageCount    = "page_count"
	AssertCell         = "cell"
	AssertUniqueValues = "unique_values"
)

// LoadScenario reads and parses a scenario YAML file. Definition and
// Records are resolved relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so "assertion:" vs "assertions:" is caught.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Definition = resolve(base, scenario.Definition)
	scenario.Records = resolve(base, scenario.Records)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml scenario in dir, sorted by file
// name. Duplicate scenario names are rejected since they would share a
// golden file.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if s.Definition == "" {
		return errors.New("definition is required")
	}
	if s.Records == "" {
		return errors.New("records is required")
	}
	if len(s.Steps) == 0 && len(s.Assertions) == 0 {
		return errors.New("a scenario needs at least one step or assertion")
	}

	for _, path := range []string{s.Definition, s.Records} {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	for i, step := range s.Steps {
		switch ops := step.ops(); len(ops) {
		case 0:
			return fmt.Errorf("steps[%d]: no operation", i)
		case 1:
		default:
			return fmt.Errorf("steps[%d]: one operation per step, got %s", i, strings.Join(ops, ", "))
		}
		if step.PageSize != nil && *step.PageSize < 1 {
			return fmt.Errorf("steps[%d]: pageSize must be positive", i)
		}
		if step.Page != nil && *step.Page < 0 {
			return fmt.Errorf("steps[%d]: page must not be negative", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertRowIDs:
		if a.Rows == nil {
			return errors.New("row_ids requires rows")
		}
	case AssertRowCount, AssertPageCount:
		if a.Count == nil {
			return fmt.Errorf("%s requires count", a.Type)
		}
	case AssertCell:
		if a.Row == "" || a.Column == "" {
			return errors.New("cell requires row and column")
		}
	case AssertUniqueValues:
		if a.Column == "" {
			return errors.New("unique_values requires column")
		}
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
