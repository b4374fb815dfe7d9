package ptarena

import "sync/atomic"

import "github.com/bnclabs/golog"

// logok gates every debugf/infof/.../errorf call below. Logging is
// opt-in and silent by default so that driving the arena from a
// viewer, in a tight allocate/release loop, does not spam output.
var logok = int64(0)

// LogComponents enables logging for the named components. Recognised
// names are "arena", "bins", "events" and "all"; any of them turns on
// logging for the whole package, since the allocator is a single
// tightly coupled state machine and there is little value in gating
// finer than that.
func LogComponents(components ...string) {
	for _, comp := range components {
		switch comp {
		case "arena", "bins", "events", "all":
			atomic.StoreInt64(&logok, 1)
		}
	}
}

func debugf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Debugf(format, v...)
	}
}

func infof(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Infof(format, v...)
	}
}

func warnf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Warnf(format, v...)
	}
}

func errorf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Errorf(format, v...)
	}
}
