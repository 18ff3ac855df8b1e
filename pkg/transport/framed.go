// Package transport implements the length-prefixed framing that sits
// between the reactor's raw byte stream and the codec's message payloads.
// A frame on the wire is a 32-bit big-endian unsigned length N followed by
// N bytes of opaque payload; the N bytes are never inspected here.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/thriftrt/internal/bufpool"
)

// MaxFrameSize caps the length prefix this transport will accept. spec.md
// §4.2 leaves an upper bound as an implementation choice ("an
// implementation MAY cap N and refuse oversize frames as a protocol
// error"); 16MiB comfortably covers any RPC payload this runtime expects
// to carry while still catching a corrupt or hostile length prefix early.
const MaxFrameSize = 16 << 20

// ErrFrameTooLarge is a Framing error per §7: the decoded length prefix
// exceeds MaxFrameSize. Fatal for the connection that produced it.
var ErrFrameTooLarge = errors.New("transport: frame exceeds maximum size")

type readState int

const (
	stateReadLen readState = iota
	stateReadBody
)

// Decoder implements the read-side state machine of §4.2: ReadLen
// accumulates the 4-byte length prefix, ReadBody(N, k) accumulates N bytes
// before emitting a complete Frame. It is push-based so a caller can feed
// it byte chunks of any size — a single socket Read, a single byte, or an
// entire backlog — and get back exactly the frames that chunk completes.
// A Decoder is not safe for concurrent use; callers serialize Feed calls
// per connection, matching the single-reader-goroutine-per-connection
// design of pkg/reactor.
type Decoder struct {
	maxSize uint32
	state   readState

	lenBuf [4]byte
	lenPos int

	body    []byte
	bodyLen uint32
	bodyPos uint32
}

// NewDecoder returns a Decoder that rejects frames longer than maxSize. A
// maxSize of 0 selects MaxFrameSize.
func NewDecoder(maxSize uint32) *Decoder {
	if maxSize == 0 {
		maxSize = MaxFrameSize
	}
	return &Decoder{maxSize: maxSize}
}

// Feed consumes chunk and returns every frame it completes, in order. A
// chunk may complete zero frames (a partial prefix or body), exactly one,
// or several back-to-back frames. The returned byte slices are owned by
// the caller; Feed never retains them after returning.
func (d *Decoder) Feed(chunk []byte) ([][]byte, error) {
	var frames [][]byte

	for len(chunk) > 0 {
		switch d.state {
		case stateReadLen:
			n := copy(d.lenBuf[d.lenPos:], chunk)
			d.lenPos += n
			chunk = chunk[n:]
			if d.lenPos < 4 {
				continue
			}
			length := binary.BigEndian.Uint32(d.lenBuf[:])
			if length > d.maxSize {
				return frames, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
			}
			d.lenPos = 0
			d.bodyLen = length
			d.bodyPos = 0
			if length == 0 {
				frames = append(frames, []byte{})
				d.state = stateReadLen
				continue
			}
			d.body = bufpool.Get(int(length))
			d.state = stateReadBody

		case stateReadBody:
			n := copy(d.body[d.bodyPos:d.bodyLen], chunk)
			d.bodyPos += uint32(n)
			chunk = chunk[n:]
			if d.bodyPos < d.bodyLen {
				continue
			}
			frame := make([]byte, d.bodyLen)
			copy(frame, d.body[:d.bodyLen])
			bufpool.Put(d.body)
			d.body = nil
			frames = append(frames, frame)
			d.state = stateReadLen
		}
	}

	return frames, nil
}

// Reset discards any in-flight partial frame, returning the Decoder to
// ReadLen. Used when a connection is closed mid-frame (§4.2's "partial
// data is discarded" edge rule and scenario S5).
func (d *Decoder) Reset() {
	if d.body != nil {
		bufpool.Put(d.body)
		d.body = nil
	}
	d.lenPos = 0
	d.bodyPos = 0
	d.bodyLen = 0
	d.state = stateReadLen
}

// WriteFrame prepends payload with its 4-byte big-endian length and writes
// both in a single contiguous region, so no other frame can interleave
// with it and a peer never observes a half-written length (invariant 5).
func WriteFrame(w io.Writer, payload []byte) error {
	buf := bufpool.Get(4 + len(payload))
	defer bufpool.Put(buf)
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}

// Encode returns payload prefixed with its 4-byte big-endian length as a
// freshly allocated slice, for callers (such as Connection's write queue)
// that need to hold the framed bytes rather than write them immediately.
func Encode(payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}
