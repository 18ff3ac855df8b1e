// Package codec implements the Thrift binary protocol: encoding and decoding
// of primitive values, struct field streams, and the message header that
// precedes every RPC call, reply, exception, and one-way frame.
package codec

// Type is a wire type code, written as a single byte ahead of every field
// value and as the element type of lists, sets, and maps.
type Type byte

// Wire type codes. Values are fixed by the Thrift binary protocol and must
// never be renumbered.
const (
	TypeStop   Type = 0
	TypeVoid   Type = 1
	TypeBool   Type = 2
	TypeByte   Type = 3
	TypeDouble Type = 4
	TypeI16    Type = 6
	TypeI32    Type = 8
	TypeU64    Type = 9
	TypeI64    Type = 10
	TypeString Type = 11
	TypeStruct Type = 12
	TypeMap    Type = 13
	TypeSet    Type = 14
	TypeList   Type = 15
)

func (t Type) String() string {
	switch t {
	case TypeStop:
		return "Stop"
	case TypeVoid:
		return "Void"
	case TypeBool:
		return "Bool"
	case TypeByte:
		return "Byte"
	case TypeDouble:
		return "Double"
	case TypeI16:
		return "I16"
	case TypeI32:
		return "I32"
	case TypeU64:
		return "U64"
	case TypeI64:
		return "I64"
	case TypeString:
		return "String"
	case TypeStruct:
		return "Struct"
	case TypeMap:
		return "Map"
	case TypeSet:
		return "Set"
	case TypeList:
		return "List"
	default:
		return "Unknown"
	}
}

// MessageType identifies the kind of RPC message carried by a frame.
type MessageType byte

const (
	MessageCall      MessageType = 1
	MessageReply     MessageType = 2
	MessageException MessageType = 3
	MessageOneWay    MessageType = 4
)

func (t MessageType) String() string {
	switch t {
	case MessageCall:
		return "Call"
	case MessageReply:
		return "Reply"
	case MessageException:
		return "Exception"
	case MessageOneWay:
		return "OneWay"
	default:
		return "Unknown"
	}
}

// versionMask is the high bit that marks a version word as present,
// distinguishing the current framing from the legacy unversioned format.
const versionMask uint32 = 0x80000000

// version1 is the only message protocol version this codec understands.
const version1 uint32 = 0x80010000

// MaxStringLength guards string/binary decode against implausible lengths
// carried by a corrupt or hostile peer. It is generous relative to any
// realistic method name or argument string.
const MaxStringLength = 64 << 20
