package ptarena

import "fmt"

func binLabel(tag string, idx int) string {
	return fmt.Sprintf("%s[%d]", tag, idx)
}

//---- fastbins: singly-linked LIFO per exact size, never coalesced on
//---- insertion (spec.md §4.2, §4.4, §4.5).

func (a *Arena) fastbinPush(c *chunk) {
	idx := fastbinIndex(c.size)
	if idx < 0 {
		panicerr("ptarena: fastbinPush called with non-fastbin size %d (chunk %#x)", c.size, c.addr)
	}
	c.fd = a.fastbinHeads[idx]
	c.bk, c.fdNextsize, c.bkNextsize = noAddr, noAddr, noAddr
	a.fastbinHeads[idx] = c.addr
	c.bin, c.binIdx = binFastbin, idx
	a.emit(Event{Type: EvBinInsert, Msg: "fastbin push", Bin: binLabel("fastbin", idx), Addr: c.addr, Size: c.size})
	debugf("ptarena: fastbin[%d] push %#x (%d)", idx, c.addr, c.size)
}

func (a *Arena) fastbinPop(idx int) *chunk {
	head := a.fastbinHeads[idx]
	if head == noAddr {
		return nil
	}
	c := a.chunks[head]
	a.fastbinHeads[idx] = c.fd
	c.fd = noAddr
	c.bin = binNone
	a.emit(Event{Type: EvBinUnlink, Msg: "fastbin pop", Bin: binLabel("fastbin", idx), Addr: c.addr, Size: c.size})
	debugf("ptarena: fastbin[%d] pop %#x (%d)", idx, c.addr, c.size)
	return c
}

//---- generic circular doubly-linked list over fd/bk, shared by the
//---- unsorted bin and each smallbin slot (spec.md §9: addresses, not
//---- live references, so the cycle never pins memory and Snapshot
//---- can deep-copy it trivially).

func (a *Arena) circInsertTail(head *Address, c *chunk) {
	if *head == noAddr {
		c.fd, c.bk = c.addr, c.addr
		*head = c.addr
		return
	}
	h := a.chunks[*head]
	tail := a.chunks[h.bk]
	c.fd, c.bk = h.addr, tail.addr
	tail.fd, h.bk = c.addr, c.addr
}

func (a *Arena) circUnlink(head *Address, c *chunk) {
	if c.fd == c.addr { // singleton
		*head = noAddr
	} else {
		fd, bk := a.chunks[c.fd], a.chunks[c.bk]
		fd.bk, bk.fd = bk.addr, fd.addr
		if *head == c.addr {
			*head = c.fd
		}
	}
	c.fd, c.bk = noAddr, noAddr
}

//---- unsorted bin: a single circular list staging freshly freed and
//---- consolidated chunks (split remainders go straight to a smallbin
//---- or largebin instead).

func (a *Arena) unsortedInsert(c *chunk) {
	a.circInsertTail(&a.unsortedHead, c)
	c.bin, c.binIdx = binUnsorted, 0
	a.emit(Event{Type: EvBinInsert, Msg: "unsorted insert", Bin: "unsorted", Addr: c.addr, Size: c.size})
	debugf("ptarena: unsorted insert %#x (%d)", c.addr, c.size)
}

// unsortedTakeMatch walks forward from the head one full revolution
// and returns the first chunk satisfying pred, unlinked. It returns
// nil if no chunk matches. The defensive break-on-revisit-of-start
// guard is a deliberate choice (spec.md §9's first open question):
// with a correctly maintained circular list fd is never nil, but a
// scan that only terminates on a nil fd can spin forever if an
// engine bug ever corrupts the ring, which is a worse failure mode
// for a simulator a viewer steps through live than a bounded scan.
func (a *Arena) unsortedTakeMatch(pred func(*chunk) bool) *chunk {
	start := a.unsortedHead
	if start == noAddr {
		return nil
	}
	cur := start
	for {
		c := a.chunks[cur]
		next := c.fd
		if pred(c) {
			a.circUnlink(&a.unsortedHead, c)
			c.bin = binNone
			a.emit(Event{Type: EvBinUnlink, Msg: "unsorted take", Bin: "unsorted", Addr: c.addr, Size: c.size})
			debugf("ptarena: unsorted take %#x (%d)", c.addr, c.size)
			return c
		}
		if next == start {
			return nil
		}
		cur = next
	}
}

//---- smallbins: one exact size per slot, FIFO (insert-at-tail,
//---- take-from-head).

func (a *Arena) smallbinPush(c *chunk) {
	idx := smallbinIndex(c.size)
	a.circInsertTail(&a.smallbinHeads[idx], c)
	c.bin, c.binIdx = binSmallbin, idx
	a.emit(Event{Type: EvBinInsert, Msg: "smallbin push", Bin: binLabel("smallbin", idx), Addr: c.addr, Size: c.size})
	debugf("ptarena: smallbin[%d] push %#x (%d)", idx, c.addr, c.size)
}

func (a *Arena) smallbinPop(idx int) *chunk {
	head := a.smallbinHeads[idx]
	if head == noAddr {
		return nil
	}
	c := a.chunks[head]
	a.circUnlink(&a.smallbinHeads[idx], c)
	c.bin = binNone
	a.emit(Event{Type: EvBinUnlink, Msg: "smallbin pop", Bin: binLabel("smallbin", idx), Addr: c.addr, Size: c.size})
	debugf("ptarena: smallbin[%d] pop %#x (%d)", idx, c.addr, c.size)
	return c
}

// unsortedUnlink and smallbinUnlink remove an arbitrary (not
// necessarily head) member, used by coalescing when a physical
// neighbour turns out to be parked in one of these bins.

func (a *Arena) unsortedUnlink(c *chunk) {
	a.circUnlink(&a.unsortedHead, c)
	c.bin = binNone
	a.emit(Event{Type: EvBinUnlink, Msg: "unsorted unlink (coalesce)", Bin: "unsorted", Addr: c.addr, Size: c.size})
	debugf("ptarena: unsorted unlink (coalesce) %#x (%d)", c.addr, c.size)
}

func (a *Arena) smallbinUnlink(c *chunk) {
	idx := c.binIdx
	a.circUnlink(&a.smallbinHeads[idx], c)
	c.bin = binNone
	a.emit(Event{Type: EvBinUnlink, Msg: "smallbin unlink (coalesce)", Bin: binLabel("smallbin", idx), Addr: c.addr, Size: c.size})
	debugf("ptarena: smallbin[%d] unlink (coalesce) %#x (%d)", idx, c.addr, c.size)
}
