// Package testutil provides deterministic fixtures for table tests: a
// seeded person generator and sequential id and time sources.
package testutil

import (
	"math/rand/v2"
	"strconv"
)

// Person is the record shape used across the table, harness and CLI tests.
type Person struct {
	ID        string   `json:"id" yaml:"id" toml:"id"`
	FirstName string   `json:"firstName" yaml:"firstName" toml:"firstName"`
	LastName  string   `json:"lastName" yaml:"lastName" toml:"lastName"`
	Age       int      `json:"age" yaml:"age" toml:"age"`
	Visits    int      `json:"visits" yaml:"visits" toml:"visits"`
	Status    string   `json:"status" yaml:"status" toml:"status"`
	Progress  int      `json:"progress" yaml:"progress" toml:"progress"`
	SubRows   []Person `json:"subRows,omitempty" yaml:"subRows,omitempty" toml:"subRows,omitempty"`
}

// Statuses lists the values Person.Status takes.
var Statuses = []string{"relationship", "complicated", "single"}

var (
	firstNames = []string{
		"Ada", "Brian", "Chen", "Dana", "Emil", "Fatima", "Grace", "Hiro",
		"Ines", "Jonas", "Kemi", "Lars", "Mira", "Nolan", "Olga", "Priya",
	}
	lastNames = []string{
		"Abbott", "Baker", "Castillo", "Doe", "Engel", "Fischer", "Garcia",
		"Hansen", "Ito", "Jensen", "Kowalski", "Lopez", "Moreau", "Nakamura",
	}
)

// DefaultSeed seeds MakePersons. Changing it changes every golden file.
const DefaultSeed = 88

// MakePersons returns a deterministic tree of people. lens gives the
// number of rows per depth: MakePersons(100, 3) yields 100 top-level
// people with three sub rows each.
func MakePersons(lens ...int) []Person {
	return MakePersonsSeeded(DefaultSeed, lens...)
}

// MakePersonsSeeded is MakePersons with an explicit seed.
func MakePersonsSeeded(seed uint64, lens ...int) []Person {
	if len(lens) == 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return makeLevel(rng, lens, 0, "")
}

func makeLevel(rng *rand.Rand, lens []int, depth int, prefix string) []Person {
	out := make([]Person, lens[depth])
	for i := range out {
		id := strconv.Itoa(i)
		if prefix != "" {
			id = prefix + "." + id
		}
		p := newPerson(rng, id)
		if depth+1 < len(lens) {
			p.SubRows = makeLevel(rng, lens, depth+1, id)
		}
		out[i] = p
	}
	return out
}

func newPerson(rng *rand.Rand, id string) Person {
	return Person{
		ID:        id,
		FirstName: firstNames[rng.IntN(len(firstNames))],
		LastName:  lastNames[rng.IntN(len(lastNames))],
		Age:       rng.IntN(60),
		Visits:    rng.IntN(1000),
		Status:    Statuses[rng.IntN(len(Statuses))],
		Progress:  rng.IntN(101),
	}
}

// PersonMaps converts people to the generic record form loaded from
// JSON, YAML or TOML files.
func PersonMaps(people []Person) []map[string]any {
	out := make([]map[string]any, len(people))
	for i, p := range people {
		m := map[string]any{
			"id":        p.ID,
			"firstName": p.FirstName,
			"lastName":  p.LastName,
			"age":       p.Age,
			"visits":    p.Visits,
			"status":    p.Status,
			"progress":  p.Progress,
		}
		if len(p.SubRows) > 0 {
			subs := PersonMaps(p.SubRows)
			rows := make([]any, len(subs))
			for j, s := range subs {
				rows[j] = s
			}
			m["subRows"] = rows
		}
		out[i] = m
	}
	return out
}
