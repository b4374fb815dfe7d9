package ptarena

import "fmt"

// CheckInvariants walks the live arena and reports every violation of
// the universal invariants spec.md §8 names. An empty result means
// the arena is consistent. This is exported (rather than gated behind
// the debug build tag like the teacher's byte-poisoning helpers) so
// that tests — the primary consumer — can call it unconditionally
// regardless of build tags; see debug.go for the build-tag
// repurposing used elsewhere in this package.
func (a *Arena) CheckInvariants() []string {
	var problems []string
	note := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	seenTop := false
	for addr, c := range a.chunks {
		if addr != c.addr {
			note("chunk stored at %#x has addr field %#x", addr, c.addr)
		}
		if c.size < MinChunkSize || c.size%Alignment != 0 {
			note("chunk %#x has illegal size %d", addr, c.size)
		}

		isTop := addr == a.topAddr
		if isTop {
			seenTop = true
			if c.inuse {
				note("top chunk %#x is marked in use", addr)
			}
			if c.bin != binNone {
				note("top chunk %#x is parked in a bin (%s)", addr, c.bin)
			}
		} else if c.inuse {
			if c.bin != binNone {
				note("in-use chunk %#x is still parked in a bin (%s)", addr, c.bin)
			}
		} else if c.bin == binNone {
			note("free non-top chunk %#x is in no container", addr)
		}

		next := a.nextChunk(c)
		if next == nil && !isTop {
			note("chunk %#x has no successor but is not top", addr)
		}
		if next != nil {
			wantPrevInuse := c.inuse || c.bin == binFastbin || c.bin == binTcache
			if next.prevInuse != wantPrevInuse {
				note("chunk %#x: successor prevInuse=%v, want %v", addr, next.prevInuse, wantPrevInuse)
			}
			if !next.prevInuse && next.prevSize != c.size {
				note("chunk %#x: successor prevSize=%d, want %d", addr, next.prevSize, c.size)
			}
		}
	}
	if !seenTop {
		note("no top chunk found at recorded top address %#x", a.topAddr)
	}

	for idx := 0; idx < NLargebins; idx++ {
		head := a.largebinHeads[idx]
		if head == noAddr {
			continue
		}
		cur := a.chunks[head]
		for {
			nxt := a.chunks[cur.fdNextsize]
			if nxt.addr == head {
				break
			}
			if nxt.size < cur.size {
				note("largebin[%d]: size ring not ascending at %#x (%d) -> %#x (%d)",
					idx, cur.addr, cur.size, nxt.addr, nxt.size)
			}
			cur = nxt
		}
	}

	for size, addrs := range a.tcache {
		if len(addrs) > a.tcacheCapacity {
			note("tcache[%d] holds %d chunks, capacity is %d", size, len(addrs), a.tcacheCapacity)
		}
		if !a.tcacheEligible(size) {
			note("tcache[%d] holds an ineligible size", size)
		}
		for _, addr := range addrs {
			if c := a.chunks[addr]; c == nil || c.size != size {
				note("tcache[%d] entry %#x has mismatched chunk size", size, addr)
			}
		}
	}

	return problems
}
