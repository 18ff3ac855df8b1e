package reactor

import (
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/marmos91/thriftrt/internal/logger"
	"github.com/marmos91/thriftrt/internal/metrics"
	"github.com/marmos91/thriftrt/pkg/transport"
)

// State mirrors original_source/src/reactor.rs's Connection state machine.
// Reading and Writing describe which half of the socket the connection is
// currently servicing; Closed means the socket is gone and the connection
// is only waiting to be dropped from the reactor's table.
type State int

const (
	StateReading State = iota
	StateWriting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateWriting:
		return "writing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// writeBuffer accumulates queued frames and tracks how much of the front
// of the buffer has already been written with a cursor, rather than
// slicing the written prefix off and copying the remainder down on every
// partial write. The buffer is reclaimed in one shot once fully drained.
type writeBuffer struct {
	buf []byte
	off int
}

func (b *writeBuffer) enqueue(data []byte) {
	b.buf = append(b.buf, data...)
}

func (b *writeBuffer) pending() bool {
	return b.off < len(b.buf)
}

// drain keeps writing the buffered data to w until all of it is written or
// a Write fails, advancing the cursor by however much each call accepted.
// It returns true once the buffer is fully drained, at which point it
// resets to empty; on error the unwritten remainder stays queued.
func (b *writeBuffer) drain(w io.Writer) (bool, error) {
	for b.off < len(b.buf) {
		n, err := w.Write(b.buf[b.off:])
		b.off += n
		if err != nil {
			return false, err
		}
	}
	b.buf = b.buf[:0]
	b.off = 0
	return true, nil
}

// connection is one socket owned by a Reactor: a connection goroutine
// blocks on conn.Read and feeds the resulting bytes through a framing
// Decoder, forwarding every completed frame to replyTo and reporting its
// own demise to the reactor's inbox when the socket dies. Writes are
// serialized through mu so a Rpc message can never interleave with
// another frame already mid-flight on the same socket.
type connection struct {
	conn    net.Conn
	token   Token
	connID  string
	replyTo chan<- Dispatch

	mu    sync.Mutex
	state State
	wbuf  writeBuffer

	closeOnce sync.Once
}

func newConnection(conn net.Conn, token Token, replyTo chan<- Dispatch) *connection {
	return &connection{
		conn:    conn,
		token:   token,
		connID:  uuid.NewString(),
		replyTo: replyTo,
		state:   StateReading,
	}
}

// readLoop decodes frames off the socket until it errors or the
// connection is closed, delivering each frame as a Data dispatch and
// reporting the terminal error to the reactor's inbox so it can drop the
// connection from its tables. It is the only goroutine that ever calls
// conn.Read for this socket.
func (c *connection) readLoop(inbox chan<- Message, maxFrameSize uint32, mtr *metrics.Metrics) {
	decoder := transport.NewDecoder(maxFrameSize)
	buf := make([]byte, 64*1024)

	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			frames, ferr := decoder.Feed(buf[:n])
			for _, frame := range frames {
				mtr.RecordFrameRead()
				c.replyTo <- Data{Token: c.token, Data: frame}
			}
			if ferr != nil {
				logger.Debug("connection framing error", logger.Token(uint64(c.token)), logger.Err(ferr))
				inbox <- connectionClosed{token: c.token, err: ferr}
				return
			}
		}
		if err != nil {
			decoder.Reset()
			inbox <- connectionClosed{token: c.token, err: err}
			return
		}
	}
}

// write frames data with its length prefix and queues the whole frame for
// this connection, serialized against any other
// concurrent write, and flushes it immediately. A blocking net.Conn.Write
// rarely returns a short write, but the cursor-based writeBuffer handles
// it correctly when it does (e.g. a TLS record boundary or a pipe).
func (c *connection) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateWriting
	c.wbuf.enqueue(transport.Encode(data))
	done, err := c.wbuf.drain(c.conn)
	if done {
		c.state = StateReading
	}
	return err
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		_ = c.conn.Close()
	})
}
