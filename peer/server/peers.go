package server

import (
	"time"

	"github.com/ValentinKolb/tprobe/lib/probe"
)

// PeerStats are the cumulative statistics of all sessions of one remote host
type PeerStats struct {
	Sessions   uint64
	Failures   uint64
	Bytes      uint64
	LastSeen   time.Time
	LastResult string
}

// add folds a finished session into the statistics
func (p PeerStats) add(r probe.Result, failed bool) PeerStats {
	p.Sessions++
	if failed {
		p.Failures++
	}
	p.Bytes += r.Bytes
	p.LastSeen = r.Start.Add(r.Duration)
	p.LastResult = r.String()
	return p
}
