package texture

import "sync"

// Pool reuses intensity buffers, bucketed by dimensions. Stamp rendering
// allocates one scratch raster per stamp at brush-size resolution, so
// identical sizes recur heavily within a stroke.
//
// All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Source
	maxSize int // max buffers per bucket
}

type poolKey struct {
	width  int
	height int
}

// NewPool creates a pool retaining at most maxPerBucket buffers per size.
// Zero means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Source),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed raster of the given size, reusing a pooled one when
// available. Returns nil for non-positive dimensions.
func (p *Pool) Get(width, height int) *Source {
	if width <= 0 || height <= 0 {
		return nil
	}
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		s := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		clear(s.pix)
		return s
	}
	p.mu.Unlock()

	s, _ := NewSource(width, height)
	return s
}

// Put returns a raster to the pool. Nil rasters and overflow beyond the
// bucket cap are discarded.
func (p *Pool) Put(s *Source) {
	if s == nil {
		return
	}
	key := poolKey{width: s.width, height: s.height}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, s)
}

// defaultPool backs the package-level helpers.
var defaultPool = NewPool(8)

// GetScratch returns a zeroed raster from the default pool.
func GetScratch(width, height int) *Source {
	return defaultPool.Get(width, height)
}

// PutScratch returns a raster to the default pool.
func PutScratch(s *Source) {
	defaultPool.Put(s)
}
