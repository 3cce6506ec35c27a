package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	id   int
	name string
}

func TestArena_AllocateMonotonic(t *testing.T) {
	a := New[*rec]()
	for i := 0; i < 10; i++ {
		id, _ := a.Allocate(func(id int) *rec { return &rec{id: id} })
		assert.Equal(t, i, id)
	}
	// Tombstoning must not affect subsequent ids.
	require.True(t, a.Tombstone(3))
	id, _ := a.Allocate(func(id int) *rec { return &rec{id: id} })
	assert.Equal(t, 10, id)
}

func TestArena_TombstoneLooksLikeMissing(t *testing.T) {
	a := New[*rec]()
	id, _ := a.Allocate(func(id int) *rec { return &rec{id: id, name: "x"} })

	got, ok := a.Get(id)
	require.True(t, ok)
	assert.Equal(t, "x", got.name)

	require.True(t, a.Tombstone(id))
	_, ok = a.Get(id)
	assert.False(t, ok, "tombstoned id must be indistinguishable from unallocated")
	_, ok = a.Get(id + 100)
	assert.False(t, ok)
	_, ok = a.Get(-1)
	assert.False(t, ok)

	// Second tombstone is a no-op.
	assert.False(t, a.Tombstone(id))
}

func TestArena_ForEachLiveSkipsTombstones(t *testing.T) {
	a := New[*rec]()
	for i := 0; i < 5; i++ {
		a.Allocate(func(id int) *rec { return &rec{id: id} })
	}
	a.Tombstone(1)
	a.Tombstone(3)

	var seen []int
	a.ForEachLive(func(id int, v *rec) bool {
		seen = append(seen, id)
		return true
	})
	assert.Equal(t, []int{0, 2, 4}, seen)
}

func TestArena_ConcurrentAllocate(t *testing.T) {
	a := New[*rec]()
	const n = 64
	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := a.Allocate(func(id int) *rec { return &rec{id: id} })
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, a.Len())
}
