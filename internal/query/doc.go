// Package query translates request-style query strings into table state.
//
// Filters use the AIP-160 syntax and become compare filters:
//
//	age >= 20 AND age < 40 AND status = "single"
//
// yields one column filter per referenced column, each holding the ANDed
// comparisons for that column. OR and NOT have no column-filter form and
// are rejected.
//
// Orderings use the AIP-132 order_by syntax and become sorting state:
//
//	lastName, age desc
package query
