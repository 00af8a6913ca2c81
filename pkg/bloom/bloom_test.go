package bloom

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagFilter_PutAndContain(t *testing.T) {
	f := NewTagFilter()
	f.Load([]int64{1, 2, 3})
	f.Put(100)

	for _, id := range []int64{1, 2, 3, 100} {
		assert.True(t, f.MightContain(id))
	}
}

func TestTagFilter_FalsePositiveRate(t *testing.T) {
	f := NewTagFilter()
	ids := make([]int64, 0, 100000)
	for i := int64(1); i <= 100000; i++ {
		ids = append(ids, i)
	}
	f.Load(ids)

	fp := 0
	const probes = 20000
	for i := int64(0); i < probes; i++ {
		if f.MightContain(1_000_000 + i) {
			fp++
		}
	}
	// 容量内误判率应接近 5%
	assert.Less(t, float64(fp)/probes, 0.08)
}

func TestTagFilter_Concurrent(t *testing.T) {
	f := NewTagFilter()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < 500; i++ {
				f.Put(base + i)
				_ = f.MightContain(base + i)
			}
		}(int64(g) * 1000)
	}
	wg.Wait()

	for g := int64(0); g < 8; g++ {
		assert.True(t, f.MightContain(g*1000+499))
	}
}
