package client

import (
	"sync"
	"sync/atomic"
)

// framePool recycles request frames. Frames are sized in buckets so a stats
// poll and an acquire with a placement draw from different pools.
type framePool struct {
	buckets []int
	pools   map[int]*sync.Pool

	hits   atomic.Int64
	misses atomic.Int64
}

// FrameStats reports how often request frames were reused.
type FrameStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func newFramePool(buckets ...int) *framePool {
	if len(buckets) == 0 {
		buckets = []int{32, 64, 128, 256}
	}
	fp := &framePool{
		buckets: buckets,
		pools:   make(map[int]*sync.Pool, len(buckets)),
	}
	for _, size := range buckets {
		fp.pools[size] = &sync.Pool{}
	}

	return fp
}

func (fp *framePool) bucket(size int) int {
	for _, b := range fp.buckets {
		if b >= size {
			return b
		}
	}

	return 0
}

// get returns an empty frame with room for size bytes.
func (fp *framePool) get(size int) *[]byte {
	b := fp.bucket(size)
	if b == 0 {
		fp.misses.Add(1)
		buf := make([]byte, 0, size)
		return &buf
	}
	if buf, ok := fp.pools[b].Get().(*[]byte); ok {
		fp.hits.Add(1)
		*buf = (*buf)[:0]
		return buf
	}
	fp.misses.Add(1)
	buf := make([]byte, 0, b)

	return &buf
}

// put clears the frame and keeps it for reuse. Frames whose capacity is not a
// bucket size are dropped.
func (fp *framePool) put(buf *[]byte) {
	if buf == nil {
		return
	}
	b := fp.bucket(cap(*buf))
	if b == 0 || b != cap(*buf) {
		return
	}
	clear((*buf)[:cap(*buf)])
	*buf = (*buf)[:0]
	fp.pools[b].Put(buf)
}

func (fp *framePool) stats() FrameStats {
	return FrameStats{Hits: fp.hits.Load(), Misses: fp.misses.Load()}
}
