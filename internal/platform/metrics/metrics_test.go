package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.PaymentComputed(3)
	c.StatementPrinted()
	done := c.StreamOpened()

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 || snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("unexpected error counters: %+v", snap)
	}
	if snap["avgDurationMs"].(float64) != float64(40)/3 {
		t.Fatalf("unexpected average: %v", snap["avgDurationMs"])
	}
	if snap["paymentsComputedTotal"].(uint64) != 3 || snap["statementsPrintedTotal"].(uint64) != 1 {
		t.Fatalf("unexpected payment counters: %+v", snap)
	}
	if snap["taskStreamsOpen"].(int64) != 1 {
		t.Fatalf("expected one open stream, got %v", snap["taskStreamsOpen"])
	}

	done()
	if c.Snapshot()["taskStreamsOpen"].(int64) != 0 {
		t.Fatal("expected stream gauge to drop back to zero")
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.PaymentComputed(1)
	c.StatementPrinted()
	c.StreamOpened()()
}
