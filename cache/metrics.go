package cache

// Reason explains why an entry was removed without an explicit Delete.
type Reason int

const (
	// ReasonCapacity — evicted to satisfy the entry-count limit.
	ReasonCapacity Reason = iota
	// ReasonMemory — evicted to satisfy the memory budget.
	ReasonMemory
	// ReasonExpired — TTL elapsed (lazy on read or by the sweeper).
	ReasonExpired
	// ReasonPressure — evicted by a memory-pressure shrink.
	ReasonPressure
)

// String returns a stable label for the reason (used by metrics adapters).
func (r Reason) String() string {
	switch r {
	case ReasonMemory:
		return "memory"
	case ReasonExpired:
		return "expired"
	case ReasonPressure:
		return "pressure"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason Reason)
	Expire()
	Size(entries int, bytes int64)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()            {}
func (NoopMetrics) Miss()           {}
func (NoopMetrics) Evict(Reason)    {}
func (NoopMetrics) Expire()         {}
func (NoopMetrics) Size(int, int64) {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
