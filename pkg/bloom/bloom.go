package bloom

import (
	"encoding/binary"
	"sync"

	bf "github.com/bits-and-blooms/bloom/v3"
)

const (
	expectedTags      = 100000
	falsePositiveRate = 0.05
)

// TagFilter 标签ID布隆过滤器，只增不删
type TagFilter struct {
	mu     sync.RWMutex
	filter *bf.BloomFilter
}

func NewTagFilter() *TagFilter {
	return &TagFilter{filter: bf.NewWithEstimates(expectedTags, falsePositiveRate)}
}

func key(id int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

// MightContain false 表示一定不存在
func (f *TagFilter) MightContain(id int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.Test(key(id))
}

func (f *TagFilter) Put(id int64) {
	f.mu.Lock()
	f.filter.Add(key(id))
	f.mu.Unlock()
}

func (f *TagFilter) Load(ids []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.filter.Add(key(id))
	}
}
