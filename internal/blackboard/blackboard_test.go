package blackboard

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Person struct {
	Name string
}

type Address struct {
	City string
}

type Employee struct {
	Person  Person
	Address Address
}

func TestBindAndGet(t *testing.T) {
	bb := New()
	bb.Bind("x", 1)
	assert.Equal(t, 1, bb.Get("x"))
	assert.Nil(t, bb.Get("missing"))

	// A bind also appends to the ordered list.
	assert.Equal(t, []any{1}, bb.Objects())

	bb.Bind("x", 2)
	assert.Equal(t, 2, bb.Get("x"))
	assert.Equal(t, []any{1, 2}, bb.Objects(), "rebinding appends, never removes")
}

func TestSpawnIndependence(t *testing.T) {
	bb := New()
	bb.Bind("x", 1)
	bb.AddObject("note")

	child := bb.Spawn()
	child.Bind("x", 2)
	child.AddObject("added")

	assert.Equal(t, 1, bb.Get("x"))
	assert.Equal(t, []any{1, "note"}, bb.Objects())
	assert.Equal(t, 2, child.Get("x"))
	assert.Equal(t, []any{1, "note", 2, "added"}, child.Objects())
}

func TestConditions(t *testing.T) {
	bb := New()
	_, ok := bb.GetCondition("ready")
	assert.False(t, ok)

	bb.SetCondition("ready", true)
	v, ok := bb.GetCondition("ready")
	assert.True(t, ok)
	assert.True(t, v)

	bb.SetCondition("ready", false)
	v, _ = bb.GetCondition("ready")
	assert.False(t, v)
}

func TestLastOfType(t *testing.T) {
	dt := NewDomainTypes(
		DomainType{Name: "Person"},
		DomainType{Name: "Address"},
	)
	bb := New()
	bb.AddObject(Person{Name: "ada"})
	bb.AddObject(Address{City: "london"})
	bb.AddObject(Person{Name: "grace"})

	got := bb.LastOfType("Person", dt)
	require.NotNil(t, got)
	assert.Equal(t, "grace", got.(Person).Name)

	assert.Nil(t, bb.LastOfType("Unicorn", dt))
}

func TestLastOfTypeSupertype(t *testing.T) {
	dt := NewDomainTypes(
		DomainType{Name: "Person", Supertypes: []string{"Party"}},
	)
	bb := New()
	bb.AddObject(Person{Name: "ada"})

	got := bb.LastOfType("Party", dt)
	require.NotNil(t, got)
	assert.Equal(t, "ada", got.(Person).Name)
}

func TestGetValue(t *testing.T) {
	dt := NewDomainTypes(
		DomainType{Name: "Person"},
		DomainType{Name: "Address"},
		DomainType{
			Name:         "Employee",
			Constituents: []string{"Person", "Address"},
			Assemble: func(parts map[string]any) any {
				return Employee{
					Person:  parts["Person"].(Person),
					Address: parts["Address"].(Address),
				}
			},
		},
	)

	t.Run("bound value of matching type", func(t *testing.T) {
		bb := New()
		bb.Bind("who", Person{Name: "ada"})
		got := bb.GetValue("who", "Person", dt)
		require.NotNil(t, got)
		assert.Equal(t, "ada", got.(Person).Name)
	})

	t.Run("bound value of wrong type is not returned", func(t *testing.T) {
		bb := New()
		bb.Bind("who", Address{City: "york"})
		assert.Nil(t, bb.GetValue("who", "Person", dt))
	})

	t.Run("fully qualified type names match on simple name", func(t *testing.T) {
		bb := New()
		bb.Bind("who", Person{Name: "ada"})
		got := bb.GetValue("who", "com.example.Person", dt)
		require.NotNil(t, got)
	})

	t.Run("List binding condition", func(t *testing.T) {
		bb := New()
		bb.Bind("items", []string{"a", "b"})
		assert.NotNil(t, bb.GetValue("items", "List", dt))

		bb.Bind("scalar", 7)
		assert.Nil(t, bb.GetValue("scalar", "List", dt))
	})

	t.Run("aggregation assembled from constituents", func(t *testing.T) {
		bb := New()
		bb.AddObject(Person{Name: "ada"})
		bb.AddObject(Address{City: "london"})

		got := bb.GetValue("anything", "Employee", dt)
		require.NotNil(t, got)
		emp := got.(Employee)
		assert.Equal(t, "ada", emp.Person.Name)
		assert.Equal(t, "london", emp.Address.City)
	})

	t.Run("aggregation with missing constituent fails", func(t *testing.T) {
		bb := New()
		bb.AddObject(Person{Name: "ada"})
		assert.Nil(t, bb.GetValue("anything", "Employee", dt))
	})

	t.Run("default binding falls back to last of type", func(t *testing.T) {
		bb := New()
		bb.AddObject(Person{Name: "ada"})
		bb.AddObject(Person{Name: "grace"})

		got := bb.GetValue(DefaultBinding, "Person", dt)
		require.NotNil(t, got)
		assert.Equal(t, "grace", got.(Person).Name)

		assert.Nil(t, bb.GetValue("notIt", "Person", dt))
	})
}

func TestTypeNameOf(t *testing.T) {
	assert.Equal(t, "Person", TypeNameOf(Person{}))
	assert.Equal(t, "Person", TypeNameOf(&Person{}))
	assert.Equal(t, "string", TypeNameOf("x"))
	assert.Equal(t, "", TypeNameOf(nil))
}

// Spawn independence as a property: after a spawn, any mutations on
// either side leave the other's snapshot intact.
func TestSpawnIndependenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("spawn isolates parent and child", prop.ForAll(
		func(keys []string, mutations []string) bool {
			bb := New()
			for i, k := range keys {
				bb.Bind(k, fmt.Sprintf("v%d", i))
			}
			snapshotObjects := bb.Objects()
			snapshotModel := bb.ExpressionModel()

			child := bb.Spawn()
			for i, k := range mutations {
				child.Bind(k, fmt.Sprintf("child%d", i))
				child.AddObject(i)
			}

			// Parent unchanged by child writes.
			if len(bb.Objects()) != len(snapshotObjects) {
				return false
			}
			for k, v := range snapshotModel {
				if bb.Get(k) != v {
					return false
				}
			}
			// Child still sees everything present at spawn time.
			for k, v := range snapshotModel {
				if _, mutated := contains(mutations, k); mutated {
					continue
				}
				if child.Get(k) != v {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

func contains(xs []string, want string) (int, bool) {
	for i, x := range xs {
		if x == want {
			return i, true
		}
	}
	return 0, false
}
