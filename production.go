//go:build !debug

package ptarena

const debugBuild = false

func traceConsolidateSkip(a *Arena, nb int64) {}
