package reactor

import (
	"errors"
	"net"

	"github.com/marmos91/thriftrt/internal/logger"
)

// acceptLoop accepts connections on ln until it returns an error (normally
// because the reactor closed it during Shutdown), reporting each accepted
// socket to the reactor's inbox so token allocation stays single-threaded.
// It is the listener-side analog of connection.readLoop.
func acceptLoop(inbox chan<- Message, token Token, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Debug("listener accept error", logger.Token(uint64(token)), logger.Err(err))
			return
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetNoDelay(true)
		}

		inbox <- connectionAccepted{listenerToken: token, conn: conn}
	}
}
