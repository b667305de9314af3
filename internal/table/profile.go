package table

import "strings"

// profileSampleSize bounds how many values decide a column's auto sorting
// function.
const profileSampleSize = 10

// columnProfile is what the auto filter, sorting and aggregation choices
// need to know about a column's values. It is resolved once per core row
// model rather than per comparison.
type columnProfile struct {
	// firstKind is the kind of the first row's value.
	firstKind ValueKind
	// kind is the kind of the first present value.
	kind     ValueKind
	autoSort string
}

// columnProfiles returns the profile of every column for the current core
// row model.
func (t *Table[T]) columnProfiles() map[string]columnProfile {
	core := t.coreRowModel()
	profiles, _ := t.profileMemo.get([]any{core}, func() map[string]columnProfile {
		out := make(map[string]columnProfile, len(t.columns))
		for _, col := range t.columns {
			out[col.ID] = profileColumn(core, col.ID)
		}
		return out
	})
	return profiles
}

func profileColumn[T any](core *RowModel[T], columnID string) columnProfile {
	var p columnProfile
	if len(core.FlatRows) > 0 {
		p.firstKind = KindOf(core.FlatRows[0].GetValue(columnID))
	}

	sampled := 0
	isString := false
	for _, row := range core.FlatRows {
		v := row.GetValue(columnID)
		k := KindOf(v)
		if k == KindUndefined {
			continue
		}
		if p.kind == KindUndefined {
			p.kind = k
		}
		switch k {
		case KindDate:
			if p.autoSort == "" {
				p.autoSort = SortDatetime
			}
		case KindString:
			isString = true
			if strings.ContainsAny(v.(string), "0123456789") && p.autoSort == "" {
				p.autoSort = SortAlphanumeric
			}
		}
		sampled++
		if sampled >= profileSampleSize {
			break
		}
	}
	if p.autoSort == "" {
		if isString {
			p.autoSort = SortText
		} else {
			p.autoSort = SortBasic
		}
	}
	return p
}

// Kind returns the kind of the column's first present value in the core
// row model.
func (c *Column[T]) Kind() ValueKind {
	return c.table.columnProfiles()[c.ID].kind
}
