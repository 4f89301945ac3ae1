package syncmap_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/lib/syncmap"
)

func TestLoadOrStore(t *testing.T) {
	t.Parallel()

	sm := syncmap.New[string, int]()
	_, ok := sm.Lookup("a")
	assert.False(t, ok)

	var wg sync.WaitGroup
	got := make([]int, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = sm.LoadOrStore("a", i)
		}(i)
	}
	wg.Wait()
	for _, v := range got {
		assert.Equal(t, got[0], v)
	}

	sm.Set("b", 2)
	v, ok := sm.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, sm.Len())
}
