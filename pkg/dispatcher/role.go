package dispatcher

import "github.com/marmos91/thriftrt/pkg/runner"

// Role determines how a Dispatcher interprets incoming Data frames from
// its reactor connection. A Client issues calls and waits for replies; a
// Server hands every incoming frame to a Runner and writes back whatever
// it returns.
type Role interface {
	isRole()
}

// ClientRole dials Addr and dispatches replies to whichever Call is
// waiting on the matching sequence id.
type ClientRole struct {
	Addr string
}

// ServerRole binds Addr and hands every accepted connection's frames to
// Runner, writing its result back as a reply frame.
type ServerRole struct {
	Addr   string
	Runner runner.Runner
}

func (ClientRole) isRole() {}
func (ServerRole) isRole() {}
