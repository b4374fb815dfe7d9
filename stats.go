package ptarena

import "fmt"

import "github.com/dustin/go-humanize"

// Stats is a cheap aggregate summary, computed from the live bin
// heads and chunk table without walking the full snapshot structure
// Snapshot builds. It mirrors the teacher's Arena.Memory()/
// Utilization() pair (malloc/arena.go), generalized from pool
// utilization to bin-tier occupancy.
type Stats struct {
	TopSize      int64
	BytesInUse   int64
	BytesInBins  int64
	ChunkCount   int
	EventCount   int
	TcacheChunks int
	FastbinChunks int
}

// Stats computes the aggregate summary described above by one pass
// over the chunk table plus a walk of the tcache buckets and the
// fastbin lists.
func (a *Arena) Stats() Stats {
	st := Stats{TopSize: a.topSize, EventCount: len(a.events)}
	for _, c := range a.chunks {
		st.ChunkCount++
		switch {
		case c.addr == a.topAddr:
			// top chunk contributes neither in-use nor binned bytes
		case c.inuse:
			st.BytesInUse += c.size
		default:
			st.BytesInBins += c.size
		}
	}
	for _, bucket := range a.tcache {
		st.TcacheChunks += len(bucket)
	}
	for _, head := range a.fastbinHeads {
		for addr := head; addr != noAddr; addr = a.chunks[addr].fd {
			st.FastbinChunks++
		}
	}
	return st
}

func (st Stats) String() string {
	return fmt.Sprintf(
		"top=%s inuse=%s binned=%s chunks=%d events=%d tcache=%d fastbin=%d",
		humanize.IBytes(uint64(st.TopSize)), humanize.IBytes(uint64(st.BytesInUse)),
		humanize.IBytes(uint64(st.BytesInBins)), st.ChunkCount, st.EventCount,
		st.TcacheChunks, st.FastbinChunks,
	)
}

// String renders a one-line human-readable summary of the arena,
// sized with go-humanize so log lines and %v formatting read as
// "arena[1] top=0x9000 size=7.9 KiB chunks=12" rather than raw byte
// counts.
func (a *Arena) String() string {
	return fmt.Sprintf("arena[%d] top=%#x size=%s chunks=%d",
		a.id, a.topAddr, humanize.IBytes(uint64(a.topSize)), len(a.chunks))
}
