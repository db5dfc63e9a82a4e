package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type family struct {
	ID      int
	OrderID int
	Name    string
}

func TestRegistry_GetOrCreateAssignsSequentialIDs(t *testing.T) {
	r := New[string, family]()

	names := []string{"muridae", "cricetidae", "soricidae"}
	for i, name := range names {
		f := r.GetOrCreate(name, func(id int) family { return family{ID: id, Name: name} })
		assert.Equal(t, i+1, f.ID)
	}
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_ExistingKeyReturnsSameEntity(t *testing.T) {
	r := New[string, family]()

	first := r.GetOrCreate("muridae", func(id int) family { return family{ID: id, Name: "muridae"} })

	calls := 0
	second := r.GetOrCreate("muridae", func(id int) family {
		calls++
		return family{ID: id, Name: "overwritten"}
	})

	assert.Equal(t, first, second)
	assert.Equal(t, 0, calls, "build must not run for an existing key")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ParentKeyScopesNames(t *testing.T) {
	r := New[ParentKey, family]()
	build := func(orderID int, name string) func(int) family {
		return func(id int) family { return family{ID: id, OrderID: orderID, Name: name} }
	}

	a := r.GetOrCreate(ParentKey{ParentID: 1, Name: "muridae"}, build(1, "muridae"))
	b := r.GetOrCreate(ParentKey{ParentID: 2, Name: "muridae"}, build(2, "muridae"))
	c := r.GetOrCreate(ParentKey{ParentID: 1, Name: "muridae"}, build(1, "muridae"))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.ID, c.ID)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_LookupAndByID(t *testing.T) {
	r := New[string, family]()
	r.GetOrCreate("muridae", func(id int) family { return family{ID: id, Name: "muridae"} })

	f, ok := r.Lookup("muridae")
	require.True(t, ok)
	assert.Equal(t, 1, f.ID)

	_, ok = r.Lookup("dipodidae")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len(), "Lookup must not create entities")

	byID, ok := r.ByID(1)
	require.True(t, ok)
	assert.Equal(t, f, byID)

	_, ok = r.ByID(0)
	assert.False(t, ok)
	_, ok = r.ByID(2)
	assert.False(t, ok)
}

func TestRegistry_EntitiesReturnsCopy(t *testing.T) {
	r := New[string, family]()
	r.GetOrCreate("muridae", func(id int) family { return family{ID: id, Name: "muridae"} })

	list := r.Entities()
	list[0].Name = "changed"

	f, _ := r.Lookup("muridae")
	assert.Equal(t, "muridae", f.Name)
}

func TestRegistry_NoGapsNoCollisions(t *testing.T) {
	r := New[string, family]()
	keys := []string{"a", "b", "a", "c", "b", "d", "a"}
	for _, k := range keys {
		k := k
		r.GetOrCreate(k, func(id int) family { return family{ID: id, Name: k} })
	}

	seen := make(map[int]string)
	for i, f := range r.Entities() {
		assert.Equal(t, i+1, f.ID)
		_, dup := seen[f.ID]
		assert.False(t, dup)
		seen[f.ID] = f.Name
	}
	assert.Equal(t, map[int]string{1: "a", 2: "b", 3: "c", 4: "d"}, seen)
}
