package geolib

import "sync"

type runStats struct {
	mutex    sync.Mutex
	counters RunCounters
}

// Processed marks a row as processed and returns a number of processed
// rows so far.
func (r *runStats) Processed() uint64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.counters.Processed++

	return r.counters.Processed
}

func (r *runStats) Looked(err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err == nil {
		r.counters.Success++
	} else {
		r.counters.Failed++
	}
}

func (r *runStats) Snapshot() RunCounters {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.counters
}
