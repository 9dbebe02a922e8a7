package cache

// Tiered checks a memory cache before the disk cache and promotes disk hits.
type Tiered struct {
	l1 *MemoryCache
	l2 *DiskCache
}

// NewTiered combines a memory cache of memCapacity bytes with dc.
func NewTiered(dc *DiskCache, memCapacity int64) *Tiered {
	return &Tiered{l1: NewMemoryCache(memCapacity), l2: dc}
}

// Get looks key up in memory first, then on disk.
func (t *Tiered) Get(key string) ([]byte, bool) {
	if data, ok := t.l1.Get(key); ok {
		return data, true
	}
	data, ok := t.l2.Get(key)
	if !ok {
		return nil, false
	}
	// Too large for memory is fine, the disk copy stays
	_ = t.l1.Put(key, data)
	return data, true
}

// Put writes value to both tiers. Only disk failures are reported.
func (t *Tiered) Put(key string, value []byte) error {
	_ = t.l1.Put(key, value)
	return t.l2.Put(key, value)
}

// Stats returns the counters of the memory and disk tiers.
func (t *Tiered) Stats() (memory, disk Stats) {
	return t.l1.Stats(), t.l2.Stats()
}

// Close persists the disk index.
func (t *Tiered) Close() error {
	return t.l2.Close()
}
