// Package dispatcher sits between a Reactor's raw byte stream and an RPC
// caller or a Runner, matching messages to the calls they answer and
// driving a server's Runner for every incoming request, per spec.md §4.5.
package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/marmos91/thriftrt/internal/logger"
	"github.com/marmos91/thriftrt/internal/metrics"
	"github.com/marmos91/thriftrt/internal/tracing"
	"github.com/marmos91/thriftrt/pkg/codec"
	"github.com/marmos91/thriftrt/pkg/future"
	"github.com/marmos91/thriftrt/pkg/reactor"
	"github.com/marmos91/thriftrt/pkg/runner"
)

// ErrClosed is returned by Call and OneWay once the Dispatcher has shut
// down.
var ErrClosed = errors.New("dispatcher: closed")

// incoming is the Dispatcher's own internal message type, matching
// original_source/src/dispatcher.rs's Incoming enum (Call/Reply/Shutdown)
// consumed by the same run loop that reads the reactor's Dispatch
// messages, so the pending-call table is only ever touched by one
// goroutine.
type incoming interface {
	isIncoming()
}

type callIncoming struct {
	seq      int16
	method   string
	data     []byte
	producer *future.Producer[Reply] // nil for a OneWay call
}

type replyIncoming struct {
	token reactor.Token
	data  []byte
}

type shutdownIncoming struct{}

func (callIncoming) isIncoming()     {}
func (replyIncoming) isIncoming()    {}
func (shutdownIncoming) isIncoming() {}

// Dispatcher is a Client or a Server attached to one reactor connection
// (Client) or one reactor listener (Server, fanning out over every
// connection it accepts).
type Dispatcher struct {
	role         Role
	token        reactor.Token
	addr         net.Addr
	reactorInbox chan<- reactor.Message
	fromReactor  chan reactor.Dispatch
	incoming     chan incoming
	done         chan struct{}
	metrics      *metrics.Metrics

	seq atomic.Int32
}

// Spawn starts a Dispatcher for role against rt. It blocks until the
// reactor has allocated a token (bound a listener or established an
// outbound connection) or ctx is cancelled.
func Spawn(ctx context.Context, rt *reactor.Reactor, role Role) (*Dispatcher, error) {
	fromReactor := make(chan reactor.Dispatch, 64)

	var addr net.Addr
	switch r := role.(type) {
	case ClientRole:
		rt.Inbox() <- reactor.Connect{Addr: r.Addr, ReplyTo: fromReactor}
	case ServerRole:
		ln, err := net.Listen("tcp", r.Addr)
		if err != nil {
			return nil, fmt.Errorf("dispatcher: listen %s: %w", r.Addr, err)
		}
		addr = ln.Addr()
		rt.Inbox() <- reactor.Bind{Listener: ln, ReplyTo: fromReactor}
	default:
		return nil, fmt.Errorf("dispatcher: unknown role %T", role)
	}

	var token reactor.Token
	select {
	case d := <-fromReactor:
		switch m := d.(type) {
		case reactor.Id:
			token = m.Token
		case reactor.Error:
			return nil, m.Err
		default:
			return nil, fmt.Errorf("dispatcher: unexpected dispatch %T while starting", d)
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	d := &Dispatcher{
		role:         role,
		token:        token,
		addr:         addr,
		reactorInbox: rt.Inbox(),
		fromReactor:  fromReactor,
		incoming:     make(chan incoming, 64),
		done:         make(chan struct{}),
		metrics:      rt.Metrics(),
	}
	go d.run()
	return d, nil
}

// Token returns the reactor Token this dispatcher is attached to: the
// single connection for a Client, or the listener for a Server.
func (d *Dispatcher) Token() reactor.Token { return d.token }

// Addr returns the bound listener's address for a ServerRole dispatcher,
// or nil for a ClientRole dispatcher.
func (d *Dispatcher) Addr() net.Addr { return d.addr }

// Call sends a Call-type message for method, built by encode, and returns
// a Future that resolves once the matching reply arrives. Valid only for
// a ClientRole dispatcher.
func (d *Dispatcher) Call(ctx context.Context, method string, encode func(w *codec.Writer) error) (*future.Future[Reply], error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanDispatcherCall)
	defer span.End()
	tracing.SetAttributes(ctx, tracing.Method(method))

	seq := int16(d.seq.Add(1))
	tracing.SetAttributes(ctx, tracing.SeqID(seq))

	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	if err := w.WriteMessageBegin(method, codec.MessageCall, seq); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if encode != nil {
		if err := encode(w); err != nil {
			tracing.RecordError(ctx, err)
			return nil, err
		}
	}

	fut, producer := future.New[Reply]()
	msg := callIncoming{seq: seq, method: method, data: buf.Bytes(), producer: producer}
	select {
	case d.incoming <- msg:
		return fut, nil
	case <-d.done:
		tracing.RecordError(ctx, ErrClosed)
		return nil, ErrClosed
	case <-ctx.Done():
		tracing.RecordError(ctx, ctx.Err())
		return nil, ctx.Err()
	}
}

// OneWay sends a OneWay-type message for method and does not wait for a
// reply; there is none to wait for.
func (d *Dispatcher) OneWay(ctx context.Context, method string, encode func(w *codec.Writer) error) error {
	seq := int16(d.seq.Add(1))

	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	if err := w.WriteMessageBegin(method, codec.MessageOneWay, seq); err != nil {
		return err
	}
	if encode != nil {
		if err := encode(w); err != nil {
			return err
		}
	}

	msg := callIncoming{seq: seq, method: method, data: buf.Bytes(), producer: nil}
	select {
	case d.incoming <- msg:
		return nil
	case <-d.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the dispatcher's run loop, failing any pending Client
// calls with ErrClosed. It does not shut down the underlying Reactor.
func (d *Dispatcher) Shutdown() {
	select {
	case d.incoming <- shutdownIncoming{}:
	case <-d.done:
	}
}

// Done is closed once the dispatcher's run loop has exited.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

func (d *Dispatcher) run() {
	pending := newPendingCalls(d.metrics)
	defer close(d.done)

	for {
		select {
		case in := <-d.incoming:
			switch m := in.(type) {
			case shutdownIncoming:
				pending.failAll(ErrClosed)
				return

			case callIncoming:
				if m.producer != nil {
					pending.add(m.seq, m.method, m.producer)
				}
				d.reactorInbox <- reactor.Rpc{Token: d.token, Data: m.data}

			case replyIncoming:
				d.reactorInbox <- reactor.Rpc{Token: m.token, Data: m.data}
			}

		case disp := <-d.fromReactor:
			switch x := disp.(type) {
			case reactor.Data:
				d.handleData(x.Token, x.Data, pending)
			case reactor.Error:
				pending.failAll(x.Err)
			}
		}
	}
}

func (d *Dispatcher) handleData(token reactor.Token, data []byte, pending *pendingCalls) {
	switch d.role.(type) {
	case ServerRole:
		d.handleServerFrame(token, data)
	case ClientRole:
		d.handleClientReply(data, pending)
	}
}

func (d *Dispatcher) handleClientReply(data []byte, pending *pendingCalls) {
	hdr, err := codec.NewReader(bytes.NewReader(data)).ReadMessageBegin()
	if err != nil {
		logger.Warn("dispatcher: malformed reply header, closing connection", logger.Token(uint64(d.token)), logger.Err(err))
		d.metrics.RecordDecodeError("malformed_reply_header")
		d.reactorInbox <- reactor.Close{Token: d.token}
		pending.failAll(fmt.Errorf("dispatcher: connection closed after malformed reply: %w", err))
		return
	}

	call, ok := pending.take(hdr.SeqID)
	if !ok {
		logger.Warn("dispatcher: no pending call for reply",
			logger.Method(hdr.Name), logger.SeqID(hdr.SeqID))
		return
	}
	d.metrics.RecordCall(call.method, "ok", time.Since(call.startedAt).Seconds())
	call.producer.Complete(Reply{Header: hdr, Raw: data})
}

func (d *Dispatcher) handleServerFrame(token reactor.Token, data []byte) {
	sr, ok := d.role.(ServerRole)
	if !ok || sr.Runner == nil {
		return
	}

	r := codec.NewReader(bytes.NewReader(data))
	hdr, err := r.ReadMessageBegin()
	if err != nil {
		logger.Warn("dispatcher: malformed call header, closing connection", logger.Token(uint64(token)), logger.Err(err))
		d.metrics.RecordDecodeError("malformed_call_header")
		d.reactorInbox <- reactor.Close{Token: token}
		return
	}

	consumed := len(data) - r.UnreadLen()
	call := runner.Call{
		Method: hdr.Name,
		SeqID:  hdr.SeqID,
		OneWay: hdr.Type == codec.MessageOneWay,
		Args:   data[consumed:],
	}

	go func() {
		ctx, span := tracing.StartSpan(context.Background(), tracing.SpanDispatcherServe)
		defer span.End()
		tracing.SetAttributes(ctx, tracing.Method(call.Method), tracing.SeqID(call.SeqID), tracing.OneWay(call.OneWay))

		reply, err := sr.Runner.Run(ctx, call)
		if err != nil {
			tracing.RecordError(ctx, err)
		}
		if call.OneWay {
			if err != nil {
				logger.Debug("dispatcher: oneway runner error", logger.Method(call.Method), logger.Err(err))
			}
			return
		}
		if err != nil {
			var buf bytes.Buffer
			excErr := codec.NewWriter(&buf).WriteException(call.Method, call.SeqID, codec.Exception{
				Message: err.Error(),
				Type:    codec.ExceptionInternalError,
			})
			if excErr != nil {
				logger.Warn("dispatcher: failed to encode exception reply", logger.Err(excErr))
				return
			}
			reply = buf.Bytes()
		}
		select {
		case d.incoming <- replyIncoming{token: token, data: reply}:
		case <-d.done:
		}
	}()
}
