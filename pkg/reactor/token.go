package reactor

import "fmt"

// Token identifies a listener or a connection inside a Reactor. Tokens are
// allocated by the reactor's owning goroutine in strictly increasing order,
// shared across listeners and connections from a single counter — binding
// a listener and then connecting a client against it yields tokens 0 and
// 1, and the first connection accepted on that listener gets token 2,
// matching original_source/src/reactor.rs's integration test.
type Token uint64

func (t Token) String() string {
	return fmt.Sprintf("token(%d)", uint64(t))
}

// tokenAllocator hands out strictly increasing Tokens. It is only ever
// touched from the reactor's own goroutine; it carries no locking because
// the reactor never allocates concurrently with itself.
type tokenAllocator struct {
	next uint64
}

func (a *tokenAllocator) alloc() Token {
	t := Token(a.next)
	a.next++
	return t
}
