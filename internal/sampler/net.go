package sampler

import (
	"maps"
	"time"

	"github.com/Dicklesworthstone/rktop/internal/model"
	"github.com/Dicklesworthstone/rktop/internal/source"
)

// NetRateCalculator converts per-interface byte counters into Mbps.
type NetRateCalculator struct {
	prev  *Store[string, source.NetCounters]
	rates map[string]model.NetRate
	last  time.Time
	seen  bool
}

func NewNetRateCalculator() *NetRateCalculator {
	return &NetRateCalculator{
		prev:  NewStore[string, source.NetCounters](),
		rates: map[string]model.NetRate{},
	}
}

// Observe returns the rate of every interface in cur since the previous call.
//
// The first call reports 0 for every interface and sets the baseline. A call
// with no time elapsed returns the previous rates and keeps the baseline.
// Interfaces absent from the previous call report 0, and a direction whose
// counter went backwards keeps its previous rate. The returned map is never
// reused.
func (c *NetRateCalculator) Observe(now time.Time, cur map[string]source.NetCounters) map[string]model.NetRate {
	if c.seen && now.Sub(c.last) <= 0 {
		return maps.Clone(c.rates)
	}

	dt := now.Sub(c.last).Seconds()
	rates := make(map[string]model.NetRate, len(cur))
	for name, counters := range cur {
		var r model.NetRate
		// only entries stamped by the previous call are a baseline
		if prev, at, ok := c.prev.Get(name); ok && c.seen && at.Equal(c.last) {
			last := c.rates[name]
			r.DownMbps = mbps(counters.RxBytes, prev.RxBytes, dt, last.DownMbps)
			r.UpMbps = mbps(counters.TxBytes, prev.TxBytes, dt, last.UpMbps)
		}
		rates[name] = r
		c.prev.Put(name, counters, now)
	}

	c.rates = rates
	c.last = now
	c.seen = true
	return maps.Clone(rates)
}

func mbps(cur, prev uint64, seconds, last float64) float64 {
	if cur < prev {
		return last
	}
	return float64(cur-prev) * 8 / (1e6 * seconds)
}
