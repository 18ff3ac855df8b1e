package codec

import "fmt"

// Exception is the minimal TApplicationException shape: a human-readable
// message and a numeric type code. Thrift IDL compilers generate richer,
// service-specific exception structs; this covers the one exception type
// the runtime itself needs to report — "the Runner for this method
// failed" — without requiring an IDL.
type Exception struct {
	Message string
	Type    int32
}

// Exception type codes, matching upstream Thrift's TApplicationException.
const (
	ExceptionUnknown            int32 = 0
	ExceptionUnknownMethod      int32 = 1
	ExceptionInvalidMessageType int32 = 2
	ExceptionWrongMethodName    int32 = 3
	ExceptionBadSequenceID      int32 = 4
	ExceptionMissingResult      int32 = 5
	ExceptionInternalError      int32 = 6
	ExceptionProtocolError      int32 = 7
)

func (e Exception) Error() string {
	return fmt.Sprintf("codec: exception: %s (type %d)", e.Message, e.Type)
}

// WriteException emits a complete Exception-typed message: version word,
// method name, sequence id, then a two-field struct (1: message string,
// 2: type i32) terminated with a stop byte.
func (w *Writer) WriteException(method string, seq int16, exc Exception) error {
	if err := w.WriteMessageBegin(method, MessageException, seq); err != nil {
		return err
	}
	if err := w.WriteFieldBegin(TypeString, 1); err != nil {
		return err
	}
	if err := w.WriteString(exc.Message); err != nil {
		return err
	}
	if err := w.WriteFieldBegin(TypeI32, 2); err != nil {
		return err
	}
	if err := w.WriteI32(exc.Type); err != nil {
		return err
	}
	return w.WriteFieldStop()
}

// ReadException decodes the struct body of an Exception-typed message
// that ReadMessageBegin has already consumed the header of.
func (r *Reader) ReadException() (Exception, error) {
	var exc Exception
	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return exc, err
		}
		if fh.Type == TypeStop {
			return exc, nil
		}
		switch fh.ID {
		case 1:
			exc.Message, err = r.ReadString()
		case 2:
			exc.Type, err = r.ReadI32()
		default:
			err = r.Skip(fh.Type)
		}
		if err != nil {
			return exc, err
		}
	}
}
