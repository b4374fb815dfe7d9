package ptarena

import "fmt"

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// panicerr mirrors the teacher's malloc/util.go helper of the same
// name: an engine-bug condition (something the size classifier or a
// caller should have made impossible) surfaces as an unrecoverable
// panic rather than a silently swallowed error.
func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
