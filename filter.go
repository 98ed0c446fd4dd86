package loguru

import "strings"

// Filter decides whether a record should reach a handler's writer, run
// after the level gate (spec.md §4.3). Returning false drops the record
// for that handler only; other handlers still see it.
type Filter func(Record) bool

// NameFilter accepts records whose Name equals namespace or is nested
// under it (Name == namespace, or Name starts with namespace + "."),
// mirroring loguru's string-filter shorthand where filter="pkg.sub"
// matches "pkg.sub" and anything below it.
func NameFilter(namespace string) Filter {
	return func(r Record) bool {
		return r.Name == namespace || strings.HasPrefix(r.Name, namespace+".")
	}
}

// ExcludeFilter inverts a namespace match, dropping records from the
// named module and its children instead of restricting to them.
func ExcludeFilter(namespace string) Filter {
	inner := NameFilter(namespace)
	return func(r Record) bool { return !inner(r) }
}

// AllFilter accepts a record only when every given filter accepts it.
func AllFilter(filters ...Filter) Filter {
	return func(r Record) bool {
		for _, f := range filters {
			if f == nil {
				continue
			}
			if !f(r) {
				return false
			}
		}
		return true
	}
}

// AnyFilter accepts a record when at least one given filter accepts it.
func AnyFilter(filters ...Filter) Filter {
	return func(r Record) bool {
		for _, f := range filters {
			if f != nil && f(r) {
				return true
			}
		}
		return false
	}
}
