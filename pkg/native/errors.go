// Package native defines the engine-side contract of the HTML5 tree-construction engine:
// status codes, option codes with their parameter blocks, borrowed value representations,
// the callback vtable the engine drives, and the engine interface itself.
//
// Nothing in this package owns memory handed across the boundary. Values of type String,
// and everything built from them, are only valid for the duration of the call that
// received them.
package native

import "strconv"

// Error is a status code returned by every engine operation and every tree callback.
type Error int32

// Status codes. Value 4 is unassigned.
const (
	OK             Error = 0
	Reprocess      Error = 1
	EncodingChange Error = 2
	Paused         Error = 3
	NoMem          Error = 5
	BadParm        Error = 6
	Invalid        Error = 7
	FileNotFound   Error = 8
	NeedData       Error = 9
	BadEncoding    Error = 10
	Unknown        Error = 11
)

// String returns the engine's message for the code.
func (e Error) String() string {
	switch e {
	case OK:
		return "No error"
	case Reprocess:
		return "Reprocess token"
	case EncodingChange:
		return "Encoding of document has changed"
	case Paused:
		return "Parser is paused"
	case NoMem:
		return "Insufficient memory"
	case BadParm:
		return "Bad parameter"
	case Invalid:
		return "Invalid input"
	case FileNotFound:
		return "File not found"
	case NeedData:
		return "Insufficient data"
	case BadEncoding:
		return "Unsupported charset"
	case Unknown:
		return "Unknown error"
	default:
		return "Unknown error code " + strconv.Itoa(int(e))
	}
}

// Failed reports whether the code is neither OK nor one of the control signals
// (NeedData, Paused, EncodingChange, Reprocess).
func (e Error) Failed() bool {
	switch e {
	case OK, NeedData, Paused, EncodingChange, Reprocess:
		return false
	default:
		return true
	}
}
