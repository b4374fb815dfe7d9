package ptarena

import s "github.com/bnclabs/gosettings"

// Alignment every chunk size is a multiple of this many bytes.
// ptmalloc2's SIZE_SZ is 8 on 64-bit hosts, giving a 16-byte minimum
// chunk; this simulator fixes the same 16-byte alignment rather than
// exposing it as a setting, since the size-classifier formulas in
// sizeclass.go are derived directly from it.
const Alignment = int64(16)

// HeaderSize is 2*SIZE_SZ, the bytes of header preceding a chunk's
// user payload.
const HeaderSize = int64(16)

// MinChunkSize is the smallest chunk the allocator will ever produce.
const MinChunkSize = int64(16)

// Defaults for the settings NewArenaWithSettings understands.
const (
	DefaultInitialHeapBytes  = int64(1 << 15) // 32KiB, matches spec.md scenario base
	DefaultBaseAddress       = Address(0x1000)
	DefaultTcacheMaxRequest  = int64(64)
	DefaultTcacheCapacity    = int64(7)
	DefaultConsolidateThresh = int64(8192)
)

// Defaultsettings returns the literal defaults spec.md names, as a
// gosettings.Settings map ready for Mixin-style overrides.
//
//	"initial.heap"  (int64) initial top-chunk size, before alignment.
//	"base.addr"     (int64) base address the first chunk starts at.
//	"tcache.max"    (int64) largest request (bytes) eligible for tcache.
//	"tcache.count"  (int64) capacity per tcache size bucket.
//	"fastbin.consolidate.threshold" (int64) top-size that triggers
//	                opportunistic consolidation before a search.
//	"log.level"     (string) kept in the arena's settings; this
//	                package does not read it or pass it to golog.
func Defaultsettings() s.Settings {
	return s.Settings{
		"initial.heap":                   DefaultInitialHeapBytes,
		"base.addr":                      int64(DefaultBaseAddress),
		"tcache.max":                     DefaultTcacheMaxRequest,
		"tcache.count":                   DefaultTcacheCapacity,
		"fastbin.consolidate.threshold":  DefaultConsolidateThresh,
		"log.level":                      "info",
	}
}

func validatesettings(setts s.Settings) {
	if v := setts.Int64("initial.heap"); v <= 0 {
		panicerr("ptarena: initial.heap must be positive, got %v", v)
	}
	if v := setts.Int64("tcache.max"); v <= 0 {
		panicerr("ptarena: tcache.max must be positive, got %v", v)
	}
	if v := setts.Int64("tcache.count"); v <= 0 {
		panicerr("ptarena: tcache.count must be positive, got %v", v)
	}
	if v := setts.Int64("fastbin.consolidate.threshold"); v < 0 {
		panicerr("ptarena: fastbin.consolidate.threshold must be >= 0, got %v", v)
	}
}
