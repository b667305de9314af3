// Package harness runs table scenarios as executable contract tests.
//
// A scenario compiles a CUE table definition, loads a record file, applies
// a sequence of state steps to the resulting table and checks the rows it
// produces.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	definition: ../tables/people.cue
//	table: people
//	records: ../data/people.json
//	steps:
//	  - filter: "age >= 30"
//	    expect:
//	      rowCount: 4
//	  - orderBy: "age desc"
//	  - pageSize: 2
//	  - page: 1
//	    expect:
//	      rowIds: ["p2", "p1"]
//	assertions:
//	  - type: row_ids
//	    rows: ["p2", "p1"]
//	  - type: cell
//	    row: p2
//	    column: lastName
//	    value: Turing
//
// Paths are resolved relative to the scenario file. table may be omitted
// when the definition declares a single table.
//
// Each step performs exactly one of: filter (AIP-160), orderBy (AIP-132),
// global, groupBy, expand ("all" or a list of row ids), pageSize, page or
// reset.
//
// # Assertion Types
//
//   - row_ids: the current page lists exactly these row ids, in order
//   - row_count: the number of rows being paginated
//   - page_count: the number of pages
//   - cell: one row's value for one column
//   - unique_values: the faceted unique values of a column
//
// # Deterministic Output
//
// Every step appends a trace event recording the page that follows it.
// RunWithGolden compares the trace and the final page, encoded as canonical
// JSON, against testdata/golden/{name}.golden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/filter_sort_page.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
