package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	t.Run("Bool", func(t *testing.T) {
		for _, v := range []bool{true, false} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteBool(v))
			got, err := NewReader(&buf).ReadBool()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("Byte", func(t *testing.T) {
		for _, v := range []int8{0, 1, -1, 127, -128} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteByte(v))
			got, err := NewReader(&buf).ReadByte()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("I16", func(t *testing.T) {
		for _, v := range []int16{0, 1, -1, 32767, -32768} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteI16(v))
			got, err := NewReader(&buf).ReadI16()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("I32", func(t *testing.T) {
		for _, v := range []int32{0, 1, -1, 2147483647, -2147483648} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteI32(v))
			got, err := NewReader(&buf).ReadI32()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("I64", func(t *testing.T) {
		for _, v := range []int64{0, 1, -1, 9223372036854775807, -9223372036854775808} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteI64(v))
			got, err := NewReader(&buf).ReadI64()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("Double", func(t *testing.T) {
		for _, v := range []float64{0, 1.5, -1.5, 3.14159265, -0.0} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteDouble(v))
			got, err := NewReader(&buf).ReadDouble()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("String", func(t *testing.T) {
		for _, v := range []string{"", "ping", "héllo wörld", "foobar123"} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteString(v))
			got, err := NewReader(&buf).ReadString()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("Binary", func(t *testing.T) {
		for _, v := range [][]byte{{}, {0x01, 0x02, 0x03}} {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteBinary(v))
			got, err := NewReader(&buf).ReadBinary()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})
}

func TestStructFieldStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteStructBegin("Args"))
	require.NoError(t, w.WriteFieldBegin(TypeString, 1))
	require.NoError(t, w.WriteString("hello"))
	require.NoError(t, w.WriteFieldEnd())
	require.NoError(t, w.WriteFieldBegin(TypeI32, 2))
	require.NoError(t, w.WriteI32(42))
	require.NoError(t, w.WriteFieldEnd())
	require.NoError(t, w.WriteFieldStop())
	require.NoError(t, w.WriteStructEnd())

	r := NewReader(&buf)
	require.NoError(t, r.ReadStructBegin())

	fh, err := r.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, TypeString, fh.Type)
	assert.Equal(t, int16(1), fh.ID)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	fh, err = r.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, TypeI32, fh.Type)
	assert.Equal(t, int16(2), fh.ID)
	n, err := r.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(42), n)

	fh, err = r.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, TypeStop, fh.Type)
}

func TestListSetMapRoundTrip(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		require.NoError(t, w.WriteListBegin(TypeI32, 3))
		for _, v := range []int32{1, 2, 3} {
			require.NoError(t, w.WriteI32(v))
		}
		require.NoError(t, w.WriteListEnd())

		r := NewReader(&buf)
		elem, n, err := r.ReadListBegin()
		require.NoError(t, err)
		assert.Equal(t, TypeI32, elem)
		assert.Equal(t, int32(3), n)
	})

	t.Run("Map", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		require.NoError(t, w.WriteMapBegin(TypeString, TypeI32, 1))
		require.NoError(t, w.WriteString("k"))
		require.NoError(t, w.WriteI32(1))
		require.NoError(t, w.WriteMapEnd())

		r := NewReader(&buf)
		kt, vt, n, err := r.ReadMapBegin()
		require.NoError(t, err)
		assert.Equal(t, TypeString, kt)
		assert.Equal(t, TypeI32, vt)
		assert.Equal(t, int32(1), n)
	})
}

// TestPingMessageHeaderWireFormat is scenario S1: round-trip an empty Call
// header for method "ping" and check its exact byte layout.
func TestPingMessageHeaderWireFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteMessageBegin("ping", MessageCall, 0))

	want := []byte{
		0x80, 0x01, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x04, 'p', 'i', 'n', 'g',
		0x00, 0x00,
	}
	assert.Equal(t, want, buf.Bytes())

	hdr, err := NewReader(&buf).ReadMessageBegin()
	require.NoError(t, err)
	assert.Equal(t, MessageHeader{Name: "ping", Type: MessageCall, SeqID: 0}, hdr)
}

// TestBadVersionWord is scenario S4's decoding half: a frame payload whose
// first four bytes have the version bit clear fails with
// ErrProtocolVersionMissing.
func TestBadVersionWord(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x01})
	_, err := NewReader(buf).ReadMessageBegin()
	assert.ErrorIs(t, err, ErrProtocolVersionMissing)
}

func TestVersionMismatch(t *testing.T) {
	var b bytes.Buffer
	// Top bit set, but wrong version number (0x8002 instead of 0x8001).
	require.NoError(t, NewWriter(&b).WriteI32(int32(0x80020000|uint32(MessageCall))))
	_, err := NewReader(&b).ReadMessageBegin()
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestUnknownFieldType(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x63) // not a valid Type
	_, err := NewReader(&buf).ReadFieldBegin()
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteI32(2))
	buf.Write([]byte{0xff, 0xfe})
	_, err := NewReader(&buf).ReadString()
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestSkipStruct(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteFieldBegin(TypeList, 1))
	require.NoError(t, w.WriteListBegin(TypeString, 2))
	require.NoError(t, w.WriteString("a"))
	require.NoError(t, w.WriteString("b"))
	require.NoError(t, w.WriteFieldStop())

	r := NewReader(&buf)
	fh, err := r.ReadFieldBegin()
	require.NoError(t, err)
	require.NoError(t, r.Skip(fh.Type))
	fh, err = r.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, TypeStop, fh.Type)
}
