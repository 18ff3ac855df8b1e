package dispatcher

import (
	"time"

	"github.com/marmos91/thriftrt/internal/metrics"
	"github.com/marmos91/thriftrt/pkg/codec"
	"github.com/marmos91/thriftrt/pkg/future"
)

// Reply is what a client Call's Future eventually resolves to: the
// decoded message header and the raw frame bytes it came from, so a
// caller can build its own codec.Reader over Raw to decode the result
// struct with whatever generated types it has.
type Reply struct {
	Header codec.MessageHeader
	Raw    []byte
}

// pendingCalls tracks in-flight client calls keyed by sequence id.
// original_source/src/dispatcher.rs keys its queue by method name, which
// spec.md §9 calls out as "unambiguously lossy" the moment two calls to
// the same method are in flight concurrently; keying by sequence id fixes
// that while keeping the method name around for diagnostics only. Only
// ever touched from the Dispatcher's own run goroutine, so it needs no
// locking.
type pendingCalls struct {
	byID    map[int16]pendingCall
	metrics *metrics.Metrics
}

type pendingCall struct {
	method    string
	startedAt time.Time
	producer  *future.Producer[Reply]
}

func newPendingCalls(m *metrics.Metrics) *pendingCalls {
	return &pendingCalls{byID: make(map[int16]pendingCall), metrics: m}
}

func (p *pendingCalls) add(seq int16, method string, producer *future.Producer[Reply]) {
	p.byID[seq] = pendingCall{method: method, startedAt: time.Now(), producer: producer}
	p.metrics.SetCallsInFlight(len(p.byID))
}

func (p *pendingCalls) take(seq int16) (pendingCall, bool) {
	c, ok := p.byID[seq]
	if ok {
		delete(p.byID, seq)
		p.metrics.SetCallsInFlight(len(p.byID))
	}
	return c, ok
}

func (p *pendingCalls) failAll(err error) {
	for seq, c := range p.byID {
		c.producer.Fail(err)
		p.metrics.RecordCall(c.method, "error", time.Since(c.startedAt).Seconds())
		delete(p.byID, seq)
	}
	p.metrics.SetCallsInFlight(len(p.byID))
}
