package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CompileTable parses a CUE value into a TableSpec.
//
// The CUE value should be the table struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: people: { columns: [...] }`)
//	spec, err := CompileTable(v.LookupPath(cue.ParsePath("table.people")))
func CompileTable(v cue.Value) (*TableSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, "table", tableFields); err != nil {
		return nil, err
	}

	spec := &TableSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = unquote(labels[len(labels)-1].String())
	}

	// Parse columns (required, at least one)
	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil, &CompileError{
			Field:   "columns",
			Message: "columns is required",
			Pos:     v.Pos(),
		}
	}
	columns, err := parseColumns(columnsVal)
	if err != nil {
		return nil, err
	}
	spec.Columns = columns

	// Parse features (optional, defaults to every stock feature)
	featuresVal := v.LookupPath(cue.ParsePath("features"))
	if featuresVal.Exists() {
		if err := featuresVal.Decode(&spec.Features); err != nil {
			return nil, decodeError("features", featuresVal, err)
		}
	}

	// Parse options (optional)
	optionsVal := v.LookupPath(cue.ParsePath("options"))
	if optionsVal.Exists() {
		if err := checkFields(optionsVal, "options", optionFields); err != nil {
			return nil, err
		}
		if err := optionsVal.Decode(&spec.Options); err != nil {
			return nil, decodeError("options", optionsVal, err)
		}
	}

	// Parse initial_state (optional)
	stateVal := v.LookupPath(cue.ParsePath("initial_state"))
	if stateVal.Exists() {
		var raw any
		if err := stateVal.Decode(&raw); err != nil {
			return nil, decodeError("initial_state", stateVal, err)
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, &CompileError{Field: "initial_state", Message: err.Error(), Pos: stateVal.Pos()}
		}
		if err := json.Unmarshal(data, &spec.InitialState); err != nil {
			return nil, &CompileError{Field: "initial_state", Message: err.Error(), Pos: stateVal.Pos()}
		}
	}

	return spec, nil
}

// parseColumns decodes the columns list.
func parseColumns(v cue.Value) ([]ColumnSpec, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "columns",
			Message: "must be a list of column structs",
			Pos:     v.Pos(),
		}
	}

	var columns []ColumnSpec
	for i := 0; iter.Next(); i++ {
		colVal := iter.Value()
		field := fmt.Sprintf("columns[%d]", i)
		if colVal.IncompleteKind() != cue.StructKind {
			return nil, &CompileError{
				Field:   field,
				Message: "must be a struct",
				Pos:     colVal.Pos(),
			}
		}
		if err := checkFields(colVal, field, columnFields); err != nil {
			return nil, err
		}
		var col ColumnSpec
		if err := colVal.Decode(&col); err != nil {
			return nil, decodeError(field, colVal, err)
		}
		columns = append(columns, col)
	}

	if len(columns) == 0 {
		return nil, &CompileError{
			Field:   "columns",
			Message: "at least one column is required",
			Pos:     v.Pos(),
		}
	}
	return columns, nil
}

var (
	tableFields  = map[string]bool{"columns": true, "features": true, "options": true, "initial_state": true}
	columnFields = jsonFieldNames(ColumnSpec{})
	optionFields = jsonFieldNames(OptionsSpec{})
)

// checkFields rejects struct fields outside known so typos fail loudly.
func checkFields(v cue.Value, field string, known map[string]bool) error {
	iter, err := v.Fields()
	if err != nil {
		return &CompileError{Field: field, Message: "must be a struct", Pos: v.Pos()}
	}
	for iter.Next() {
		name := iter.Label()
		if !known[name] {
			return &CompileError{
				Field:   field + "." + name,
				Message: fmt.Sprintf("unknown field (allowed: %s)", strings.Join(sortedKeys(known), ", ")),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func jsonFieldNames(v any) map[string]bool {
	names := make(map[string]bool)
	typ := reflect.TypeOf(v)
	for i := 0; i < typ.NumField(); i++ {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[name] = true
		}
	}
	return names
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unquote(label string) string {
	return strings.Trim(label, `"`)
}

// CompileSource compiles every table under the top-level "table" field of
// a single CUE file, in declaration order.
func CompileSource(filename string, src []byte) ([]*TableSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileTables(v)
}

// CompileFile reads and compiles one CUE file.
func CompileFile(path string) ([]*TableSpec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table definition: %w", err)
	}
	return CompileSource(path, src)
}

// CompileDir compiles the .cue files directly inside dir as one instance.
// The files need no package clause; when they carry one it must match.
func CompileDir(dir string) ([]*TableSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read table definitions: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".cue") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances(files, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileTables(v)
}

func compileTables(v cue.Value) ([]*TableSpec, error) {
	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "no table definitions found",
			Pos:     v.Pos(),
		}
	}
	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*TableSpec
	for iter.Next() {
		spec, err := CompileTable(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("table.%s: %w", iter.Label(), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Lookup returns the spec named name, or the only spec when name is empty.
func Lookup(specs []*TableSpec, name string) (*TableSpec, error) {
	if name == "" {
		if len(specs) == 1 {
			return specs[0], nil
		}
		names := make([]string, len(specs))
		for i, s := range specs {
			names[i] = s.Name
		}
		return nil, fmt.Errorf("definition holds %d tables (%s); pick one by name", len(specs), strings.Join(names, ", "))
	}
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("table %q not found", name)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// decodeError reports a failed Decode of v as a CompileError on field,
// positioned at the CUE error when it carries one.
func decodeError(field string, v cue.Value, err error) error {
	pos := v.Pos()
	if errs := errors.Errors(err); len(errs) > 0 {
		if positions := errors.Positions(errs[0]); len(positions) > 0 {
			pos = positions[0]
		}
	}
	return &CompileError{Field: field, Message: err.Error(), Pos: pos}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
