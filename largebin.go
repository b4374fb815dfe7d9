package ptarena

// largebins bucket by a coarse floor(log2(size)) range and carry two
// rings per chunk: the address ring (fd/bk) and a size-sorted ring
// (fdNextsize/bkNextsize), ascending, walked for best-fit search
// (spec.md §3, §4.2). Equal-size members stay adjacent in the size
// ring in insertion order.

func (a *Arena) largebinInsert(c *chunk) {
	idx := largebinIndex(c.size)
	headAddr := a.largebinHeads[idx]

	if headAddr == noAddr {
		c.fd, c.bk = c.addr, c.addr
		c.fdNextsize, c.bkNextsize = c.addr, c.addr
		a.largebinHeads[idx] = c.addr
		c.bin, c.binIdx = binLargebin, idx
		a.emit(Event{Type: EvBinInsert, Msg: "largebin insert", Bin: binLabel("largebin", idx), Addr: c.addr, Size: c.size})
		debugf("ptarena: largebin[%d] insert %#x (%d)", idx, c.addr, c.size)
		return
	}

	head := a.chunks[headAddr]

	var target *chunk
	newHead := false
	if head.size > c.size {
		target, newHead = head, true
	} else {
		cur := head
		for {
			nxt := a.chunks[cur.fdNextsize]
			if nxt.addr == headAddr {
				target = head // every member <= c.size: insert at the tail of the order
				break
			}
			if nxt.size > c.size {
				target = nxt
				break
			}
			cur = nxt
		}
	}

	// splice c immediately before target in the size ring.
	prevInSize := a.chunks[target.bkNextsize]
	c.fdNextsize, c.bkNextsize = target.addr, prevInSize.addr
	prevInSize.fdNextsize, target.bkNextsize = c.addr, c.addr

	// splice c immediately before the same target in the address
	// ring; the address ring has no ordering requirement of its own.
	prevInAddr := a.chunks[target.bk]
	c.fd, c.bk = target.addr, prevInAddr.addr
	prevInAddr.fd, target.bk = c.addr, c.addr

	if newHead {
		a.largebinHeads[idx] = c.addr
	}
	c.bin, c.binIdx = binLargebin, idx
	a.emit(Event{Type: EvBinInsert, Msg: "largebin insert", Bin: binLabel("largebin", idx), Addr: c.addr, Size: c.size})
	debugf("ptarena: largebin[%d] insert %#x (%d)", idx, c.addr, c.size)
}

func (a *Arena) largebinUnlink(c *chunk) {
	idx := c.binIdx

	if c.fdNextsize == c.addr { // singleton
		a.largebinHeads[idx] = noAddr
	} else {
		fd, bk := a.chunks[c.fdNextsize], a.chunks[c.bkNextsize]
		fd.bkNextsize, bk.fdNextsize = bk.addr, fd.addr
		if a.largebinHeads[idx] == c.addr {
			a.largebinHeads[idx] = c.fdNextsize
		}
	}

	if c.fd != c.addr {
		fd, bk := a.chunks[c.fd], a.chunks[c.bk]
		fd.bk, bk.fd = bk.addr, fd.addr
	}

	c.fd, c.bk, c.fdNextsize, c.bkNextsize = noAddr, noAddr, noAddr, noAddr
	c.bin = binNone
}

// largebinSearch finds the minimum chunk with size >= need across
// the visited largebins, starting at largebinIndex(need) and walking
// upward; within a bin it walks the size-sorted ring ascending, so
// the first match encountered is the best fit for that bin. On
// success the chunk is unlinked from both rings.
func (a *Arena) largebinSearch(need int64) *chunk {
	start := largebinIndex(need)
	for idx := start; idx < NLargebins; idx++ {
		headAddr := a.largebinHeads[idx]
		if headAddr == noAddr {
			continue
		}
		cur := a.chunks[headAddr]
		for {
			if cur.size >= need {
				a.largebinUnlink(cur)
				a.emit(Event{Type: EvBinUnlink, Msg: "largebin take", Bin: binLabel("largebin", idx), Addr: cur.addr, Size: cur.size})
				debugf("ptarena: largebin[%d] take %#x (%d)", idx, cur.addr, cur.size)
				return cur
			}
			nxt := a.chunks[cur.fdNextsize]
			if nxt.addr == headAddr {
				break
			}
			cur = nxt
		}
	}
	return nil
}
