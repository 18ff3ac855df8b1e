package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the reactor, dispatcher,
// and codec. Use these keys consistently so log aggregation and querying
// stay stable across releases.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// RPC identity
	KeyMethod     = "method"       // Thrift method name
	KeyMessageTyp = "message_type" // Call/Reply/Exception/OneWay
	KeySeqID      = "seq_id"       // Thrift sequence id
	KeyToken      = "token"        // reactor.Token of listener/connection
	KeyRemoteAddr = "remote_addr"  // peer or listen address, host:port
	KeyConnID     = "conn_id"      // correlation id assigned at accept/connect time

	// Framing & I/O
	KeyFrameLen     = "frame_len"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"
)

// TraceID returns a slog.Attr for an OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for an OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Method returns a slog.Attr for the Thrift method name.
func Method(name string) slog.Attr { return slog.String(KeyMethod, name) }

// SeqID returns a slog.Attr for the Thrift message sequence id.
func SeqID(seq int16) slog.Attr { return slog.Int(KeySeqID, int(seq)) }

// Token returns a slog.Attr for a reactor token.
func Token(t uint64) slog.Attr { return slog.Uint64(KeyToken, t) }

// RemoteAddr returns a slog.Attr for the peer address.
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }

// ConnID returns a slog.Attr for a connection's correlation id.
func ConnID(id string) slog.Attr { return slog.String(KeyConnID, id) }

// FrameLen returns a slog.Attr for a frame's payload length.
func FrameLen(n int) slog.Attr { return slog.Int(KeyFrameLen, n) }

// BytesRead returns a slog.Attr for bytes read off a connection.
func BytesRead(n int) slog.Attr { return slog.Int(KeyBytesRead, n) }

// BytesWritten returns a slog.Attr for bytes written to a connection.
func BytesWritten(n int) slog.Attr { return slog.Int(KeyBytesWritten, n) }

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or a zero Attr for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// MaxRetries returns a slog.Attr for the maximum retry attempt count.
func MaxRetries(n int) slog.Attr { return slog.Int(KeyMaxRetries, n) }
