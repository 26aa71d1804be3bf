// Package blackboard provides the ordered typed object store an agent
// process accumulates domain objects on. Actions communicate exclusively
// through the blackboard: each action reads the objects it needs and
// binds or appends its results.
package blackboard

import "sync"

// DefaultBinding is the variable name the planner uses for "whatever was
// produced last of this type".
const DefaultBinding = "it"

// ListTypeName is the pseudo type name matched by "variable:List" binding
// conditions.
const ListTypeName = "List"

// Blackboard is an append-only ordered object store plus named bindings
// and boolean condition overrides. Objects are never removed and the
// blackboard never mutates them. A bind also appends to the ordered list.
type Blackboard struct {
	mu         sync.RWMutex
	objects    []any
	bindings   map[string]any
	conditions map[string]bool
	lastByType map[string]int // concrete simple type name -> last index in objects
}

// New creates an empty Blackboard.
func New() *Blackboard {
	return &Blackboard{
		bindings:   make(map[string]any),
		conditions: make(map[string]bool),
		lastByType: make(map[string]int),
	}
}

// Bind associates key with value and appends the value to the ordered
// object list.
func (b *Blackboard) Bind(key string, value any) *Blackboard {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings[key] = value
	b.append(value)
	return b
}

// AddObject appends a value to the ordered object list without binding.
func (b *Blackboard) AddObject(value any) *Blackboard {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.append(value)
	return b
}

func (b *Blackboard) append(value any) {
	b.objects = append(b.objects, value)
	if name := TypeNameOf(value); name != "" {
		b.lastByType[name] = len(b.objects) - 1
	}
}

// Get returns the value bound under key, or nil.
func (b *Blackboard) Get(key string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bindings[key]
}

// GetCondition returns the stored condition override and whether one was
// ever set.
func (b *Blackboard) GetCondition(key string) (bool, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.conditions[key]
	return v, ok
}

// SetCondition stores a boolean condition override.
func (b *Blackboard) SetCondition(key string, value bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conditions[key] = value
}

// Objects returns a copy of the ordered object list.
func (b *Blackboard) Objects() []any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]any, len(b.objects))
	copy(out, b.objects)
	return out
}

// ExpressionModel returns a read-only snapshot of the named bindings for
// use in expression evaluation.
func (b *Blackboard) ExpressionModel() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.bindings))
	for k, v := range b.bindings {
		out[k] = v
	}
	return out
}

// Spawn creates an independent child blackboard with identical contents.
// Future writes to either side do not affect the other.
func (b *Blackboard) Spawn() *Blackboard {
	b.mu.RLock()
	defer b.mu.RUnlock()

	child := &Blackboard{
		objects:    make([]any, len(b.objects)),
		bindings:   make(map[string]any, len(b.bindings)),
		conditions: make(map[string]bool, len(b.conditions)),
		lastByType: make(map[string]int, len(b.lastByType)),
	}
	copy(child.objects, b.objects)
	for k, v := range b.bindings {
		child.bindings[k] = v
	}
	for k, v := range b.conditions {
		child.conditions[k] = v
	}
	for k, v := range b.lastByType {
		child.lastByType[k] = v
	}
	return child
}

// LastOfType returns the most recently added object whose type satisfies
// the wanted simple type name, or nil. The per-type index keeps this a
// scan over distinct type names rather than over all objects.
func (b *Blackboard) LastOfType(typeName string, domainTypes *DomainTypes) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastOfTypeLocked(typeName, domainTypes)
}

func (b *Blackboard) lastOfTypeLocked(typeName string, domainTypes *DomainTypes) any {
	wanted := SimpleName(typeName)
	best := -1
	for concrete, idx := range b.lastByType {
		if !domainTypes.Satisfies(concrete, wanted) {
			continue
		}
		if idx > best {
			best = idx
		}
	}
	if best < 0 {
		return nil
	}
	return b.objects[best]
}

// GetValue performs type-aware lookup of a variable:
//
//  1. A value bound under variableName that satisfies typeName wins.
//  2. Otherwise, if typeName is a registered aggregation type, an
//     instance is assembled from the last-added object of each
//     constituent type; all constituents must be present.
//  3. Otherwise, when variableName is the default binding, the last
//     object in insertion order whose type satisfies typeName wins.
//
// Returns nil when nothing matches.
func (b *Blackboard) GetValue(variableName, typeName string, domainTypes *DomainTypes) any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	wanted := SimpleName(typeName)

	if bound, ok := b.bindings[variableName]; ok && bound != nil {
		if wanted == ListTypeName {
			if IsList(bound) {
				return bound
			}
		} else if domainTypes.Satisfies(TypeNameOf(bound), wanted) {
			return bound
		}
	}

	if domainTypes != nil {
		if dt, ok := domainTypes.Lookup(wanted); ok && dt.IsAggregation() && dt.Assemble != nil {
			parts := make(map[string]any, len(dt.Constituents))
			complete := true
			for _, constituent := range dt.Constituents {
				part := b.lastOfTypeLocked(constituent, domainTypes)
				if part == nil {
					complete = false
					break
				}
				parts[constituent] = part
			}
			if complete {
				return dt.Assemble(parts)
			}
		}
	}

	if variableName == DefaultBinding {
		return b.lastOfTypeLocked(wanted, domainTypes)
	}
	return nil
}
