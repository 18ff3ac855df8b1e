package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// Reader deserializes primitive values and message/struct/field headers
// from a byte source using the Thrift binary protocol.
type Reader struct {
	r   io.Reader
	buf [8]byte
}

// NewReader returns a Reader that consumes from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) readFull(n int) ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		return nil, err
	}
	return r.buf[:n], nil
}

// ReadBool reads a single byte; any non-zero value reads as true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.readFull(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// ReadByte reads a single two's-complement byte.
func (r *Reader) ReadByte() (int8, error) {
	b, err := r.readFull(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadI16 reads a two-byte big-endian two's-complement integer.
func (r *Reader) ReadI16() (int16, error) {
	b, err := r.readFull(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// ReadI32 reads a four-byte big-endian two's-complement integer.
func (r *Reader) ReadI32() (int32, error) {
	b, err := r.readFull(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// ReadI64 reads an eight-byte big-endian two's-complement integer.
func (r *Reader) ReadI64() (int64, error) {
	b, err := r.readFull(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// ReadDouble reads an eight-byte big-endian integer and reinterprets its
// bits as an IEEE-754 double.
func (r *Reader) ReadDouble() (float64, error) {
	v, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

func (r *Reader) readLength() (int32, error) {
	n, err := r.ReadI32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegativeLength
	}
	if n > MaxStringLength {
		return 0, ErrStringTooLong
	}
	return n, nil
}

// ReadString reads an i32 length prefix followed by that many UTF-8 bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.readLength()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", ErrInvalidUTF8
	}
	return string(buf), nil
}

// ReadBinary reads an i32 length prefix followed by that many opaque bytes.
func (r *Reader) ReadBinary() ([]byte, error) {
	n, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadMessageBegin reads the version word, method name, and sequence id.
// A version word with its top bit clear fails with
// ErrProtocolVersionMissing; a version word whose top bit is set but whose
// version number does not match fails with ErrBadVersion.
func (r *Reader) ReadMessageBegin() (MessageHeader, error) {
	word, err := r.ReadI32()
	if err != nil {
		return MessageHeader{}, err
	}
	uword := uint32(word)

	if uword&versionMask == 0 {
		return MessageHeader{}, ErrProtocolVersionMissing
	}
	if uword&0xffff0000 != version1 {
		return MessageHeader{}, ErrBadVersion
	}
	typ := MessageType(uword & 0xff)

	name, err := r.ReadString()
	if err != nil {
		return MessageHeader{}, err
	}
	seq, err := r.ReadI16()
	if err != nil {
		return MessageHeader{}, err
	}
	return MessageHeader{Name: name, Type: typ, SeqID: seq}, nil
}

// ReadMessageEnd is a no-op; present for symmetry with the writer.
func (r *Reader) ReadMessageEnd() error { return nil }

// ReadStructBegin is a no-op on the binary protocol.
func (r *Reader) ReadStructBegin() error { return nil }

// ReadStructEnd is a no-op on the binary protocol.
func (r *Reader) ReadStructEnd() error { return nil }

// ReadFieldBegin reads a field's type code and, unless the type is
// TypeStop, its id. A stop field is returned with ID 0.
func (r *Reader) ReadFieldBegin() (FieldHeader, error) {
	b, err := r.readFull(1)
	if err != nil {
		return FieldHeader{}, err
	}
	typ := Type(b[0])
	if typ == TypeStop {
		return FieldHeader{Type: TypeStop}, nil
	}
	if !validType(typ) {
		return FieldHeader{}, fmt.Errorf("%w: field type %d", ErrUnknownType, typ)
	}
	id, err := r.ReadI16()
	if err != nil {
		return FieldHeader{}, err
	}
	return FieldHeader{Type: typ, ID: id}, nil
}

// ReadFieldEnd is a no-op on the binary protocol.
func (r *Reader) ReadFieldEnd() error { return nil }

// ReadListBegin reads a list's element type and i32 element count.
func (r *Reader) ReadListBegin() (Type, int32, error) {
	b, err := r.readFull(1)
	if err != nil {
		return 0, 0, err
	}
	elem := Type(b[0])
	if !validType(elem) {
		return 0, 0, fmt.Errorf("%w: list element type %d", ErrUnknownType, elem)
	}
	n, err := r.readLength()
	if err != nil {
		return 0, 0, err
	}
	return elem, n, nil
}

// ReadListEnd is a no-op on the binary protocol.
func (r *Reader) ReadListEnd() error { return nil }

// ReadSetBegin reads a set's element type and i32 element count.
func (r *Reader) ReadSetBegin() (Type, int32, error) { return r.ReadListBegin() }

// ReadSetEnd is a no-op on the binary protocol.
func (r *Reader) ReadSetEnd() error { return nil }

// ReadMapBegin reads a map's key type, value type, and i32 pair count.
func (r *Reader) ReadMapBegin() (key, value Type, size int32, err error) {
	b, err := r.readFull(2)
	if err != nil {
		return 0, 0, 0, err
	}
	key, value = Type(b[0]), Type(b[1])
	if !validType(key) {
		return 0, 0, 0, fmt.Errorf("%w: map key type %d", ErrUnknownType, key)
	}
	if !validType(value) {
		return 0, 0, 0, fmt.Errorf("%w: map value type %d", ErrUnknownType, value)
	}
	size, err = r.readLength()
	if err != nil {
		return 0, 0, 0, err
	}
	return key, value, size, nil
}

// ReadMapEnd is a no-op on the binary protocol.
func (r *Reader) ReadMapEnd() error { return nil }

// Skip consumes and discards the value of the given type, recursing into
// structs, lists, sets, and maps. It is used by a Runner or dispatcher that
// does not care about a value but must still advance past it on the wire.
func (r *Reader) Skip(typ Type) error {
	switch typ {
	case TypeBool:
		_, err := r.ReadBool()
		return err
	case TypeByte:
		_, err := r.ReadByte()
		return err
	case TypeI16:
		_, err := r.ReadI16()
		return err
	case TypeI32:
		_, err := r.ReadI32()
		return err
	case TypeI64, TypeU64:
		_, err := r.ReadI64()
		return err
	case TypeDouble:
		_, err := r.ReadDouble()
		return err
	case TypeString:
		_, err := r.ReadBinary()
		return err
	case TypeStruct:
		for {
			fh, err := r.ReadFieldBegin()
			if err != nil {
				return err
			}
			if fh.Type == TypeStop {
				return nil
			}
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	case TypeList, TypeSet:
		elem, n, err := r.ReadListBegin()
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if err := r.Skip(elem); err != nil {
				return err
			}
		}
		return nil
	case TypeMap:
		kt, vt, n, err := r.ReadMapBegin()
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if err := r.Skip(kt); err != nil {
				return err
			}
			if err := r.Skip(vt); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, typ)
	}
}

// UnreadLen reports how many bytes remain unconsumed, for callers that
// built this Reader over a *bytes.Reader and need to slice off whatever
// is left after decoding a header. Returns 0 for any other source.
func (r *Reader) UnreadLen() int {
	if br, ok := r.r.(*bytes.Reader); ok {
		return br.Len()
	}
	return 0
}

func validType(t Type) bool {
	switch t {
	case TypeBool, TypeByte, TypeDouble, TypeI16, TypeI32, TypeU64, TypeI64,
		TypeString, TypeStruct, TypeMap, TypeSet, TypeList:
		return true
	default:
		return false
	}
}
