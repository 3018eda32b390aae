package dht

import (
	"runtime/debug"
	"sync"
)

// The GC percent is process wide, so overlapping samples on different pins
// share one pause. The first in saves the setting and the last out restores it.
var gcPause struct {
	mu      sync.Mutex
	holders int
	saved   int
}

// pauseGC disables the collector until the returned func is called.
func pauseGC() (resume func()) {
	gcPause.mu.Lock()
	if gcPause.holders == 0 {
		gcPause.saved = debug.SetGCPercent(-1)
	}
	gcPause.holders++
	gcPause.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			gcPause.mu.Lock()
			defer gcPause.mu.Unlock()
			gcPause.holders--
			if gcPause.holders == 0 {
				debug.SetGCPercent(gcPause.saved)
			}
		})
	}
}
