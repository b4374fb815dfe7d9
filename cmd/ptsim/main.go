// Command ptsim is a scripted test driver for the ptarena allocator
// simulator: it runs a fixed allocate/release/consolidate sequence
// and prints a utilization table, following the teacher's
// tools/pools/main.go flag-driven reporting idiom.
package main

import "flag"
import "fmt"

import "github.com/dustin/go-humanize"
import sigar "github.com/cloudfoundry/gosigar"

import "github.com/bnclabs/ptarena"

var options struct {
	initialHeap int64
	verbose     bool
}

func argParse() {
	flag.Int64Var(&options.initialHeap, "heap", ptarena.DefaultInitialHeapBytes,
		"initial simulated heap size in bytes")
	flag.BoolVar(&options.verbose, "v", false, "enable component logging")
	flag.Parse()
}

func main() {
	argParse()
	if options.verbose {
		ptarena.LogComponents("all")
	}
	runScenario()
}

// runScenario exercises a short allocate/release/consolidate sequence
// and reports arena utilization alongside host memory, so a user can
// compare the simulated heap against the real process heap.
func runScenario() {
	a := ptarena.NewArena(options.initialHeap)

	ptrs := make([]ptarena.Address, 0, 8)
	for i := 0; i < 8; i++ {
		ptrs = append(ptrs, a.Allocate(24))
	}
	for _, p := range ptrs {
		a.Release(p)
	}
	a.Consolidate()
	_ = a.Allocate(400)

	fmt.Println(a.String())
	fmt.Println(a.Stats())

	if problems := a.CheckInvariants(); len(problems) > 0 {
		fmt.Println("invariant violations:")
		for _, p := range problems {
			fmt.Println("  -", p)
		}
	} else {
		fmt.Println("invariants ok")
	}

	reportHostMemory()
}

func reportHostMemory() {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		fmt.Printf("host memory: unavailable (%v)\n", err)
		return
	}
	fmt.Printf("host memory: total=%s used=%s free=%s\n",
		humanize.IBytes(mem.Total), humanize.IBytes(mem.Used), humanize.IBytes(mem.Free))
}
