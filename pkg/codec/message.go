package codec

// MessageHeader identifies an RPC message: its method name, its kind
// (Call/Reply/Exception/OneWay), and the sequence id that a client
// dispatcher uses to match a reply to its originating call.
type MessageHeader struct {
	Name  string
	Type  MessageType
	SeqID int16
}

// FieldHeader is the logical header of a struct field: its wire type and
// its field id. The binary protocol never transmits a field name.
type FieldHeader struct {
	Type Type
	ID   int16
}
