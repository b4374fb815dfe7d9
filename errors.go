package ptarena

import "errors"

// ErrUnknownPointer is returned by ChunkByUserPointer when the given
// address was never handed out by this arena. Settings validation and
// other engine-bug conditions do not get a sentinel here; they panic
// through panicerr instead (see config.go, bins.go).
var ErrUnknownPointer = errors.New("ptarena: pointer not owned by this arena")
