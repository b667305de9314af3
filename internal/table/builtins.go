package table

// IsBuiltinFilterFn reports whether name is a built-in filter function or
// "auto".
func IsBuiltinFilterFn(name string) bool {
	if name == FilterAuto {
		return true
	}
	_, ok := builtinFilterFn[struct{}](name)
	return ok
}

// IsBuiltinSortingFn reports whether name is a built-in sorting function or
// "auto".
func IsBuiltinSortingFn(name string) bool {
	if name == SortAuto {
		return true
	}
	_, ok := builtinSortingFn[struct{}](name)
	return ok
}

// IsBuiltinAggregationFn reports whether name is a built-in aggregation
// function or "auto".
func IsBuiltinAggregationFn(name string) bool {
	if name == AggregateAuto {
		return true
	}
	_, ok := builtinAggregationFn[struct{}](name)
	return ok
}
