package ptarena

// tcachePush stores a freed chunk's address in the tcache bucket for
// its size, if the bucket is not already at capacity. Returns true on
// success; the caller falls through to the next tier on false.
func (a *Arena) tcachePush(c *chunk) bool {
	bucket := a.tcache[c.size]
	if len(bucket) >= a.tcacheCapacity {
		return false
	}
	a.tcache[c.size] = append(bucket, c.addr)
	c.bin, c.binIdx = binTcache, 0
	c.fd, c.bk = noAddr, noAddr
	a.emit(Event{Type: EvTcachePut, Msg: "tcache put", Size: c.size})
	return true
}

// tcachePop removes and returns the most recently freed address for
// the given size (LIFO), or noAddr if the bucket is empty.
func (a *Arena) tcachePop(size int64) Address {
	bucket := a.tcache[size]
	if len(bucket) == 0 {
		return noAddr
	}
	last := len(bucket) - 1
	addr := bucket[last]
	a.tcache[size] = bucket[:last]
	a.emit(Event{Type: EvTcacheGet, Msg: "tcache get", Size: size})
	return addr
}
