package reactor

import "net"

// Message is sent into a Reactor's inbox to drive it. Bind, Connect, Rpc,
// and Shutdown are the user-facing variants from spec.md §4.4; the
// remaining unexported variants are how the reactor's own accept and read
// goroutines report back to its owning goroutine, since Go's blocking
// net.Conn has no non-blocking readable/writable event to multiplex on the
// way mio does.
type Message interface {
	isMessage()
}

// Bind registers an already-listening net.Listener with the reactor. Every
// connection this listener ever accepts reports its data on ReplyTo.
type Bind struct {
	Listener net.Listener
	ReplyTo  chan<- Dispatch
}

// Connect asks the reactor to establish an outbound TCP connection to
// Addr, retrying with a capped exponential backoff until it succeeds or
// the reactor shuts down. ReplyTo receives the new connection's Id once
// established, then its Data as replies arrive.
type Connect struct {
	Addr    string
	ReplyTo chan<- Dispatch
}

// Rpc sends Data out on the connection identified by Token. Used both to
// initiate a call (client role) and to send a reply (server role); the
// reactor treats both identically; it only moves bytes.
type Rpc struct {
	Token Token
	Data  []byte
}

// Shutdown tears down every listener and connection and stops the
// reactor's goroutine.
type Shutdown struct{}

// Close asks the reactor to close and forget the connection identified by
// Token, per spec.md §7: a decoding error is fatal for the connection it
// arrived on, not just the frame that carried it. A Token with no
// matching connection (already closed, or a listener token) is a silent
// no-op.
type Close struct {
	Token Token
}

func (Bind) isMessage()     {}
func (Connect) isMessage()  {}
func (Rpc) isMessage()      {}
func (Shutdown) isMessage() {}
func (Close) isMessage()    {}

// connectionAccepted reports a socket accepted on a listener's accept
// loop, asking the reactor to allocate it a Token and start reading it.
type connectionAccepted struct {
	listenerToken Token
	conn          net.Conn
}

func (connectionAccepted) isMessage() {}

// connectResult reports the outcome of an outbound dial started by a
// Connect message, successful or not, back into the reactor's own
// goroutine so token allocation and table mutation stay single-threaded.
type connectResult struct {
	replyTo chan<- Dispatch
	conn    net.Conn
	err     error
}

func (connectResult) isMessage() {}

// connectionClosed reports that a connection's read loop observed EOF or
// an error and the reactor should forget about it.
type connectionClosed struct {
	token Token
	err   error
}

func (connectionClosed) isMessage() {}

// Dispatch is how the Reactor reports back to the outside world: Id once
// per Bind/Connect to hand back the allocated Token, Data for every frame
// a connection receives, and Error when an outbound connect ultimately
// fails (spec.md's original has no recovery path for a failed connect;
// this is a supplemented resilience behavior — see DESIGN.md).
type Dispatch interface {
	isDispatch()
}

// Id reports the Token allocated for a Bind or Connect request.
type Id struct {
	Token Token
}

// Data reports one fully-assembled frame payload received on Token.
type Data struct {
	Token Token
	Data  []byte
}

// Error reports that an outbound Connect produced no connection. The dial
// is retried with backoff until it succeeds, so Error is only sent when
// the reactor shuts down mid-dial, and Token is left at its zero value.
// Read and decode errors on an established connection are not reported
// as Error; the reactor drops that connection from its table.
type Error struct {
	Token Token
	Err   error
}

func (Id) isDispatch()    {}
func (Data) isDispatch()  {}
func (Error) isDispatch() {}
