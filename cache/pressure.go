package cache

import (
	"log/slog"
	"runtime"
	"time"
)

// pressureLevel classifies heap usage relative to Options.HeapLimit.
type pressureLevel int

const (
	pressureNormal pressureLevel = iota
	pressureModerate
	pressureHigh
	pressureCritical
)

// Fixed ratio thresholds; a sample at or above the ratio is classified
// at that level.
const (
	moderateRatio = 0.65
	highRatio     = 0.80
	criticalRatio = 0.90
)

func (l pressureLevel) String() string {
	switch l {
	case pressureModerate:
		return "moderate"
	case pressureHigh:
		return "high"
	case pressureCritical:
		return "critical"
	default:
		return "normal"
	}
}

// pressureLoop samples heap usage on its own timer, independent of the
// sweeper. It reacts only to level *transitions*, not to every sample,
// so a steady high-water mark triggers exactly one response.
func (c *cache[V]) pressureLoop() {
	defer c.bg.Done()

	ticker := time.NewTicker(c.opt.PressureInterval)
	defer ticker.Stop()

	last := pressureNormal
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			level := c.classifyPressure()
			if level == last {
				continue
			}
			c.logger.Debug("memory pressure level changed",
				slog.String("from", last.String()),
				slog.String("to", level.String()))
			last = level
			c.respondToPressure(level)
		}
	}
}

func (c *cache[V]) classifyPressure() pressureLevel {
	ratio := float64(c.heapUsed()) / float64(c.opt.HeapLimit)
	switch {
	case ratio >= criticalRatio:
		return pressureCritical
	case ratio >= highRatio:
		return pressureHigh
	case ratio >= moderateRatio:
		return pressureModerate
	default:
		return pressureNormal
	}
}

// respondToPressure applies the proportional response for the new level:
// moderate sweeps, high sweeps and shrinks to 70% of the resident set,
// critical sweeps and shrinks to 50%. Dropping back to normal needs no
// action. Shrinking goes through the regular eviction path, so it honors
// the configured strategy and fires eviction callbacks.
func (c *cache[V]) respondToPressure(level pressureLevel) {
	switch level {
	case pressureModerate:
		c.Cleanup()
	case pressureHigh:
		c.Cleanup()
		c.shrink(0.70)
	case pressureCritical:
		c.Cleanup()
		c.shrink(0.50)
	case pressureNormal:
	}
}

// shrink evicts down to the given fraction of each shard's resident set,
// visiting shards one lock at a time.
func (c *cache[V]) shrink(frac float64) {
	removed := 0
	for _, s := range c.shards {
		target := int(float64(s.Len()) * frac)
		removed += s.ShrinkTo(target)
	}
	if removed > 0 {
		c.logger.Debug("cache shrunk under memory pressure",
			slog.Int("evicted", removed),
			slog.Float64("target_fraction", frac))
	}
}

// heapInUse reads the live heap footprint. ReadMemStats stops the world
// briefly, which is acceptable at the monitor's sampling cadence.
func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse
}
