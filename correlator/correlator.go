// Package correlator tracks outstanding invocations by call identifier and
// matches asynchronous webhook outcomes back to the call that spawned them.
package correlator

import (
	"fmt"
	"sync"
	"time"

	"github.com/viant/jsonrpc"
)

// Pending is the bookkeeping record of one accepted invocation.
type Pending struct {
	CallId      string
	RequestId   jsonrpc.RequestId
	SubmittedAt time.Time
	cancelled   bool
}

// Cancelled reports whether the owning session was torn down while the call
// was still outstanding.
func (p *Pending) Cancelled() bool {
	return p.cancelled
}

// Correlator is safe for concurrent use. Register, Resolve and CancelAll are
// atomic with respect to each other; a single mutex guards the table so a
// cancel sweep can never interleave with an insert.
type Correlator struct {
	mux     sync.Mutex
	pending map[string]*Pending
}

// Register accepts a new invocation. It fails fast when the call identifier
// already has a live pending record.
func (c *Correlator) Register(callId string, requestId jsonrpc.RequestId) (*Pending, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if prev, ok := c.pending[callId]; ok && !prev.cancelled {
		return nil, fmt.Errorf("call %q is still pending", callId)
	}
	ret := &Pending{CallId: callId, RequestId: requestId, SubmittedAt: time.Now()}
	c.pending[callId] = ret
	return ret, nil
}

// Resolve removes the pending record, provided it is still the record that
// Register produced for this outcome. A record superseded by a later
// registration reusing the same identifier is left untouched, so a stale
// outcome can never answer the newer call. The return reports whether a
// response must be written: false for cancelled, superseded or
// already-resolved records.
func (c *Correlator) Resolve(pending *Pending) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	current, ok := c.pending[pending.CallId]
	if !ok || current != pending {
		return false
	}
	delete(c.pending, pending.CallId)
	return !pending.cancelled
}

// Cancel marks the live pending record for the identifier cancelled and
// returns it; its outcome will be discarded by Resolve. Returns nil when
// there is nothing live to cancel.
func (c *Correlator) Cancel(callId string) *Pending {
	c.mux.Lock()
	defer c.mux.Unlock()
	pending, ok := c.pending[callId]
	if !ok || pending.cancelled {
		return nil
	}
	pending.cancelled = true
	return pending
}

// CancelAll marks every live pending record cancelled and returns how many
// were affected. Their outcomes, should they still arrive, are discarded by
// Resolve.
func (c *Correlator) CancelAll() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	count := 0
	for _, pending := range c.pending {
		if !pending.cancelled {
			pending.cancelled = true
			count++
		}
	}
	return count
}

// Size returns the number of tracked records, cancelled ones included.
func (c *Correlator) Size() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return len(c.pending)
}

// New creates an empty correlator.
func New() *Correlator {
	return &Correlator{pending: make(map[string]*Pending)}
}
