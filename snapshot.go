package ptarena

// Snapshot is a deep, structurally independent view of the arena:
// every slice and map here is freshly allocated and shares no mutable
// storage with the arena, so later arena mutations are never
// observable through a Snapshot taken earlier (spec.md §4.6).
type Snapshot struct {
	Top     Address
	TopSize int64

	Fastbins  [NFastbins][]Address
	Unsorted  []Address
	Smallbins [NSmallbins][]Address
	Largebins [NLargebins][]Address
	Tcache    map[int64][]Address

	Chunks map[Address]ChunkInfo
}

// Snapshot returns a deep read-only copy of the arena's current
// state: the complete chunk table, every bin head's membership, and
// the top chunk's address and size.
func (a *Arena) Snapshot() Snapshot {
	snap := Snapshot{
		Top:      a.topAddr,
		TopSize:  a.topSize,
		Unsorted: a.walkCircularHead(a.unsortedHead),
		Tcache:   make(map[int64][]Address, len(a.tcache)),
		Chunks:   make(map[Address]ChunkInfo, len(a.chunks)),
	}
	for i := 0; i < NFastbins; i++ {
		snap.Fastbins[i] = a.walkFastbin(i)
	}
	for i := 0; i < NSmallbins; i++ {
		snap.Smallbins[i] = a.walkCircularHead(a.smallbinHeads[i])
	}
	for i := 0; i < NLargebins; i++ {
		snap.Largebins[i] = a.walkSizeRing(a.largebinHeads[i])
	}
	for size, addrs := range a.tcache {
		cp := make([]Address, len(addrs))
		copy(cp, addrs)
		snap.Tcache[size] = cp
	}
	for addr, c := range a.chunks {
		snap.Chunks[addr] = chunkInfoOf(c)
	}
	return snap
}

func (a *Arena) walkFastbin(idx int) []Address {
	var out []Address
	for addr := a.fastbinHeads[idx]; addr != noAddr; {
		out = append(out, addr)
		addr = a.chunks[addr].fd
	}
	return out
}

// walkCircularHead walks an fd-linked circular ring (unsorted bin or
// one smallbin slot) starting at head, returning its members in
// forward order.
func (a *Arena) walkCircularHead(head Address) []Address {
	var out []Address
	if head == noAddr {
		return out
	}
	cur := head
	for {
		out = append(out, cur)
		nxt := a.chunks[cur].fd
		if nxt == head {
			break
		}
		cur = nxt
	}
	return out
}

// walkSizeRing walks a largebin slot's fdNextsize ring ascending,
// starting at its smallest member.
func (a *Arena) walkSizeRing(head Address) []Address {
	var out []Address
	if head == noAddr {
		return out
	}
	cur := head
	for {
		out = append(out, cur)
		nxt := a.chunks[cur].fdNextsize
		if nxt == head {
			break
		}
		cur = nxt
	}
	return out
}
