package blackboard

import (
	"reflect"
	"strings"
)

// DomainType describes one domain object type the platform can reason
// about: its simple name, the supertypes it satisfies, and, for
// aggregation types, the constituent types it is assembled from.
type DomainType struct {
	// Name is the simple type name, e.g. "Person".
	Name string

	// Supertypes lists simple names this type also satisfies.
	Supertypes []string

	// Constituents is non-empty for aggregation types: the simple names
	// of the parts an instance is assembled from.
	Constituents []string

	// Assemble builds an aggregation instance from one part per
	// constituent, keyed by constituent name. Required when Constituents
	// is non-empty.
	Assemble func(parts map[string]any) any
}

// IsAggregation reports whether the type is assembled from constituents.
func (dt DomainType) IsAggregation() bool {
	return len(dt.Constituents) > 0
}

// DomainTypes is a registry of the domain types an agent declares.
type DomainTypes struct {
	types map[string]DomainType
}

// NewDomainTypes creates a registry holding the given types.
func NewDomainTypes(types ...DomainType) *DomainTypes {
	dt := &DomainTypes{types: make(map[string]DomainType, len(types))}
	for _, t := range types {
		dt.Register(t)
	}
	return dt
}

// Register adds or replaces a type by name.
func (dt *DomainTypes) Register(t DomainType) {
	dt.types[t.Name] = t
}

// Lookup returns the registered type of that name.
func (dt *DomainTypes) Lookup(name string) (DomainType, bool) {
	t, ok := dt.types[name]
	return t, ok
}

// Satisfies reports whether a value of the concrete type can stand in for
// the wanted type: either an exact name match or the wanted type appears
// among the concrete type's transitive supertypes.
func (dt *DomainTypes) Satisfies(concrete, wanted string) bool {
	if concrete == wanted {
		return true
	}
	if dt == nil {
		return false
	}
	visited := make(map[string]bool)
	return dt.satisfies(concrete, wanted, visited)
}

func (dt *DomainTypes) satisfies(concrete, wanted string, visited map[string]bool) bool {
	if visited[concrete] {
		return false
	}
	visited[concrete] = true
	t, ok := dt.types[concrete]
	if !ok {
		return false
	}
	for _, super := range t.Supertypes {
		if super == wanted || dt.satisfies(super, wanted, visited) {
			return true
		}
	}
	return false
}

// TypeNameOf returns the simple type name of a value, dereferencing
// pointers. Unnamed types fall back to their reflected string form.
func TypeNameOf(v any) string {
	if v == nil {
		return ""
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// IsList reports whether a value is a slice or array.
func IsList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// SimpleName strips any qualifier from a type name: "com.example.Person"
// and "example.Person" both become "Person".
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
