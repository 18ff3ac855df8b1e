package codec

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer serializes primitive values and message/struct/field headers onto
// a byte sink using the Thrift binary protocol. The struct-begin/end
// operations are no-ops on this protocol (struct boundaries are recoverable
// from the field stream's stop byte alone) but are kept so a caller coded
// against this interface survives a swap to a richer protocol later.
type Writer struct {
	w   io.Writer
	buf [8]byte
}

// NewWriter returns a Writer that emits onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

// WriteBool writes a single byte: 0x00 for false, 0x01 for true.
func (w *Writer) WriteBool(v bool) error {
	if v {
		w.buf[0] = 1
	} else {
		w.buf[0] = 0
	}
	return w.write(w.buf[:1])
}

// WriteByte writes a single two's-complement byte.
func (w *Writer) WriteByte(v int8) error {
	w.buf[0] = byte(v)
	return w.write(w.buf[:1])
}

// WriteI16 writes a two-byte big-endian two's-complement integer.
func (w *Writer) WriteI16(v int16) error {
	binary.BigEndian.PutUint16(w.buf[:2], uint16(v))
	return w.write(w.buf[:2])
}

// WriteI32 writes a four-byte big-endian two's-complement integer.
func (w *Writer) WriteI32(v int32) error {
	binary.BigEndian.PutUint32(w.buf[:4], uint32(v))
	return w.write(w.buf[:4])
}

// WriteI64 writes an eight-byte big-endian two's-complement integer.
func (w *Writer) WriteI64(v int64) error {
	binary.BigEndian.PutUint64(w.buf[:8], uint64(v))
	return w.write(w.buf[:8])
}

// WriteDouble writes the IEEE-754 bit pattern of v as an eight-byte
// big-endian integer.
func (w *Writer) WriteDouble(v float64) error {
	return w.WriteI64(int64(math.Float64bits(v)))
}

// WriteString writes an i32 length prefix followed by the UTF-8 bytes of s.
func (w *Writer) WriteString(s string) error {
	if err := w.WriteI32(int32(len(s))); err != nil {
		return err
	}
	return w.write([]byte(s))
}

// WriteBinary writes an i32 length prefix followed by b.
func (w *Writer) WriteBinary(b []byte) error {
	if err := w.WriteI32(int32(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return w.write(b)
}

// WriteMessageBegin emits the version word 0x80010000|type, the method
// name, and the sequence id.
func (w *Writer) WriteMessageBegin(name string, typ MessageType, seq int16) error {
	word := version1 | uint32(typ)
	if err := w.WriteI32(int32(word)); err != nil {
		return err
	}
	if err := w.WriteString(name); err != nil {
		return err
	}
	return w.WriteI16(seq)
}

// WriteMessageEnd is a no-op; present for symmetry with the reader and to
// mirror the upstream protocol's struct-like begin/end contract.
func (w *Writer) WriteMessageEnd() error { return nil }

// WriteStructBegin is a no-op on the binary protocol.
func (w *Writer) WriteStructBegin(name string) error { return nil }

// WriteStructEnd is a no-op on the binary protocol.
func (w *Writer) WriteStructEnd() error { return nil }

// WriteFieldBegin writes a field's type code and id.
func (w *Writer) WriteFieldBegin(typ Type, id int16) error {
	w.buf[0] = byte(typ)
	if _, err := w.w.Write(w.buf[:1]); err != nil {
		return err
	}
	return w.WriteI16(id)
}

// WriteFieldEnd is a no-op on the binary protocol.
func (w *Writer) WriteFieldEnd() error { return nil }

// WriteFieldStop writes the stop byte (type code 0) that terminates a
// struct's field stream. It carries no id.
func (w *Writer) WriteFieldStop() error {
	w.buf[0] = byte(TypeStop)
	return w.write(w.buf[:1])
}

// WriteListBegin writes a list's element type and i32 element count.
func (w *Writer) WriteListBegin(elem Type, size int32) error {
	w.buf[0] = byte(elem)
	if _, err := w.w.Write(w.buf[:1]); err != nil {
		return err
	}
	return w.WriteI32(size)
}

// WriteListEnd is a no-op on the binary protocol.
func (w *Writer) WriteListEnd() error { return nil }

// WriteSetBegin writes a set's element type and i32 element count.
func (w *Writer) WriteSetBegin(elem Type, size int32) error {
	return w.WriteListBegin(elem, size)
}

// WriteSetEnd is a no-op on the binary protocol.
func (w *Writer) WriteSetEnd() error { return nil }

// WriteMapBegin writes a map's key type, value type, and i32 pair count.
func (w *Writer) WriteMapBegin(key, value Type, size int32) error {
	w.buf[0] = byte(key)
	w.buf[1] = byte(value)
	if _, err := w.w.Write(w.buf[:2]); err != nil {
		return err
	}
	return w.WriteI32(size)
}

// WriteMapEnd is a no-op on the binary protocol.
func (w *Writer) WriteMapEnd() error { return nil }
