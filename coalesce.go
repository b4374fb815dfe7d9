package ptarena

// isFreeAndBinned reports whether x is a chunk coalescing is allowed
// to merge with: free and parked in unsorted/smallbin/largebin.
// Fastbin and tcache members are deliberately excluded even though
// their inuse flag is also false (spec.md §4.5: "Fastbin chunks are
// not considered by coalescing in this design... mirrors the real
// allocator's fastbin laziness"); invariant 4 guarantees a chunk sits
// in at most one container, so the bin tag alone answers the
// question without consulting inuse at all.
func isFreeAndBinned(x *chunk) bool {
	return x.bin == binUnsorted || x.bin == binSmallbin || x.bin == binLargebin
}

// unlinkIfBinned removes x from whichever of unsorted/smallbin/
// largebin currently holds it. Coalescing must never reach a
// fastbin- or tcache-resident chunk here; isFreeAndBinned's caller
// contract guarantees that.
func (a *Arena) unlinkIfBinned(x *chunk) {
	switch x.bin {
	case binUnsorted:
		a.unsortedUnlink(x)
	case binSmallbin:
		a.smallbinUnlink(x)
	case binLargebin:
		idx, size, addr := x.binIdx, x.size, x.addr
		a.largebinUnlink(x)
		a.emit(Event{Type: EvBinUnlink, Msg: "largebin unlink (coalesce)", Bin: binLabel("largebin", idx), Addr: addr, Size: size})
		debugf("ptarena: largebin[%d] unlink (coalesce) %#x (%d)", idx, addr, size)
	}
}

// coalesce merges c with its immediate physical free neighbours.
// Forward merging never crosses into the top chunk; absorbing the
// old top into a coalesced chunk is the release engine's job
// (spec.md §4.4 step 7), not coalesce's. Returns the surviving
// chunk, which may be c itself, its former predecessor, or both
// merged into one.
func (a *Arena) coalesce(c *chunk) *chunk {
	c.inuse = false
	parts := []Address{c.addr}

	if next := a.nextChunk(c); next != nil && next.addr != a.topAddr && isFreeAndBinned(next) {
		a.unlinkIfBinned(next)
		c.size += next.size
		a.destroyChunk(next.addr)
		parts = append(parts, next.addr)
	}

	if prev := a.prevChunk(c); prev != nil && isFreeAndBinned(prev) {
		a.unlinkIfBinned(prev)
		prev.size += c.size
		a.destroyChunk(c.addr)
		parts = append(parts, prev.addr)
		c = prev
	}

	a.setPrevInuse(c, false)

	if len(parts) > 1 {
		a.emit(Event{Type: EvCoalesce, Msg: "coalesce", Result: c.addr, Size: c.size, Parts: parts})
		debugf("ptarena: coalesce %v -> %#x (%d)", parts, c.addr, c.size)
	}
	return c
}

// absorbIntoTop folds merged (whose end address abuts the current
// top) and the old top chunk into a single new top chunk.
func (a *Arena) absorbIntoTop(merged *chunk) {
	oldTopAddr, oldTopSize := a.topAddr, a.topSize
	a.destroyChunk(oldTopAddr)
	merged.size += oldTopSize
	merged.inuse = false
	merged.bin = binNone
	merged.fd, merged.bk, merged.fdNextsize, merged.bkNextsize = noAddr, noAddr, noAddr, noAddr
	a.topAddr, a.topSize = merged.addr, merged.size
}

// mallocConsolidate drains every fastbin, coalescing each member with
// its neighbours and routing the result into the unsorted bin or
// absorbing it into top. It emits a single consolidate event if any
// movement occurred, satisfying the "at most one non-empty
// consolidate event" idempotence law (spec.md §8) since a second,
// back-to-back call finds every fastbin already empty.
func (a *Arena) mallocConsolidate() {
	moved := false
	for idx := 0; idx < NFastbins; idx++ {
		for a.fastbinHeads[idx] != noAddr {
			c := a.fastbinPop(idx)
			moved = true
			merged := a.coalesce(c)
			if merged.addr+Address(merged.size) == a.topAddr {
				a.absorbIntoTop(merged)
			} else {
				a.unsortedInsert(merged)
			}
		}
	}
	if moved {
		a.emit(Event{Type: EvConsolidate, Msg: "consolidate"})
		debugf("ptarena: consolidate drained fastbins")
	}
}
