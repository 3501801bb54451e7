package config

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitedAddOnce(t *testing.T) {
	v := NewVisited()

	assert.True(t, v.Add("/a.yaml"))
	assert.False(t, v.Add("/a.yaml"))
	assert.True(t, v.Add("/b.yaml"))
	assert.True(t, v.Has("/a.yaml"))
	assert.False(t, v.Has("/c.yaml"))
	assert.Equal(t, []string{"/a.yaml", "/b.yaml"}, v.Paths())
}

func TestVisitedConcurrentAdd(t *testing.T) {
	v := NewVisited()
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v.Add("/shared.yaml") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Len(t, v.Paths(), 1)
}
