package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests     uint64
	errorRequests     uint64
	rateLimited       uint64
	totalDurationMs   uint64
	paymentsComputed  uint64
	statementsPrinted uint64
	streamsOpen       int64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) PaymentComputed(n int) {
	if c == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&c.paymentsComputed, uint64(n))
}

func (c *Collector) StatementPrinted() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.statementsPrinted, 1)
}

// StreamOpened tracks a live task stream; call the returned func when it ends.
func (c *Collector) StreamOpened() func() {
	if c == nil {
		return func() {}
	}
	atomic.AddInt64(&c.streamsOpen, 1)
	return func() { atomic.AddInt64(&c.streamsOpen, -1) }
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            errs,
		"rateLimitedTotal":       limited,
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"paymentsComputedTotal":  atomic.LoadUint64(&c.paymentsComputed),
		"statementsPrintedTotal": atomic.LoadUint64(&c.statementsPrinted),
		"taskStreamsOpen":        atomic.LoadInt64(&c.streamsOpen),
	}
}
