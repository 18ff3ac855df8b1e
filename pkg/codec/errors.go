package codec

import "errors"

// Decoding errors from the §7 error taxonomy. These are fatal for the
// current frame: the caller closes the connection that produced them.
var (
	// ErrBadVersion is returned when a message's version word has the top
	// bit set but does not match the version this codec implements.
	ErrBadVersion = errors.New("codec: bad version word")

	// ErrProtocolVersionMissing is returned when a message's version word
	// has its top bit clear, signaling the legacy unversioned format.
	ErrProtocolVersionMissing = errors.New("codec: protocol version missing")

	// ErrInvalidUTF8 is returned when a decoded string is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("codec: invalid utf-8 in string")

	// ErrUnknownType is returned when a field, element, key, or value type
	// code does not match any Type constant.
	ErrUnknownType = errors.New("codec: unknown type code")

	// ErrStringTooLong is returned when a decoded string/binary length
	// exceeds MaxStringLength.
	ErrStringTooLong = errors.New("codec: string exceeds maximum length")

	// ErrNegativeLength is returned when a length-prefixed value (string,
	// list, set, map) carries a negative count.
	ErrNegativeLength = errors.New("codec: negative length")
)
