package runner

import (
	"context"
	"fmt"
	"sync"
)

// procedure pairs a method's handler with routing metadata, mirroring
// dittofs's internal/adapter/nfs dispatch table (name + Handler per
// procedure number) generalized from NFS procedure numbers to Thrift
// method names.
type procedure struct {
	name    string
	handler Func
}

// Table is a Runner that routes by method name, for services that prefer
// registering one handler per RPC method over writing a single Run
// implementation with an internal switch.
type Table struct {
	mu    sync.RWMutex
	procs map[string]procedure
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{procs: make(map[string]procedure)}
}

// Register adds or replaces the handler for method.
func (t *Table) Register(method string, handler Func) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.procs[method] = procedure{name: method, handler: handler}
}

// Run implements Runner, looking up call.Method and invoking its
// registered handler. An unregistered method is a resource-not-found
// error (spec.md §7) — never fatal to the caller.
func (t *Table) Run(ctx context.Context, call Call) ([]byte, error) {
	t.mu.RLock()
	proc, ok := t.procs[call.Method]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("runner: no handler registered for method %q", call.Method)
	}
	return proc.handler(ctx, call)
}
