// Package runner defines the contract a server-side Dispatcher calls into
// for every incoming RPC, per spec.md §4.6.
package runner

import "context"

// Call describes one incoming RPC message after its header has been
// decoded: the method name and sequence id from the wire, the message
// type (Call expects a reply, OneWay does not), and the remaining bytes
// of the frame — the struct-encoded arguments, still unparsed.
type Call struct {
	Method string
	SeqID  int16
	OneWay bool
	Args   []byte
}

// Runner executes one RPC call and returns the bytes of the reply
// message — version word, method name, sequence id, and encoded result
// struct, ready to hand back to the dispatcher as-is. A OneWay call's
// return value is ignored by the caller, but Runner must still accept
// the call and may return a non-nil error for logging.
//
// Implementations are expected to use pkg/codec to decode Args and encode
// their reply; Runner itself stays protocol-agnostic about anything past
// framing.
type Runner interface {
	Run(ctx context.Context, call Call) ([]byte, error)
}

// Func adapts a plain function to the Runner interface.
type Func func(ctx context.Context, call Call) ([]byte, error)

// Run implements Runner.
func (f Func) Run(ctx context.Context, call Call) ([]byte, error) {
	return f(ctx, call)
}
