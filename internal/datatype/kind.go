package datatype

import (
	"fmt"
	"strings"
	"time"
)

// ValueKind is the native runtime kind a value of some data type takes.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindBool
	KindSByte
	KindByte
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat
	KindDouble
	KindString
	KindDateTime
	KindDuration
	KindGuid
	KindBytes
	KindObject
)

var kindNames = map[ValueKind]string{
	KindUnknown:  "unknown",
	KindBool:     "bool",
	KindSByte:    "sbyte",
	KindByte:     "byte",
	KindInt16:    "int16",
	KindUInt16:   "uint16",
	KindInt32:    "int32",
	KindUInt32:   "uint32",
	KindInt64:    "int64",
	KindUInt64:   "uint64",
	KindFloat:    "float",
	KindDouble:   "double",
	KindString:   "string",
	KindDateTime: "datetime",
	KindDuration: "duration",
	KindGuid:     "guid",
	KindBytes:    "bytes",
	KindObject:   "object",
}

func (k ValueKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// ParseValueKind is the inverse of ValueKind.String.
func ParseValueKind(s string) (ValueKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s && k != KindUnknown {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown value kind %q", s)
}

// nameTable is the secondary lookup used when a name is not in the catalog.
// Keys are upper case; it covers IEC 61131-3 spellings and common aliases.
var nameTable = map[string]ValueKind{
	"BOOL":          KindBool,
	"BIT":           KindBool,
	"SINT":          KindSByte,
	"INT8":          KindSByte,
	"USINT":         KindByte,
	"UINT8":         KindByte,
	"CHAR":          KindByte,
	"INT":           KindInt16,
	"SHORT":         KindInt16,
	"UINT":          KindUInt16,
	"WORD":          KindUInt16,
	"USHORT":        KindUInt16,
	"DINT":          KindInt32,
	"LONG":          KindInt32,
	"UDINT":         KindUInt32,
	"DWORD":         KindUInt32,
	"ULONG":         KindUInt32,
	"LINT":          KindInt64,
	"ULINT":         KindUInt64,
	"LWORD":         KindUInt64,
	"REAL":          KindFloat,
	"SINGLE":        KindFloat,
	"FLOAT32":       KindFloat,
	"LREAL":         KindDouble,
	"FLOAT64":       KindDouble,
	"STRING":        KindString,
	"WSTRING":       KindString,
	"TEXT":          KindString,
	"DATE_AND_TIME": KindDateTime,
	"DT":            KindDateTime,
	"TIMESTAMP":     KindDateTime,
	"TIME":          KindDuration,
	"TIMER":         KindDuration,
	"UUID":          KindGuid,
	"BYTES":         KindBytes,
	"VARIANT":       KindObject,
	"ANY":           KindObject,
}

// kindIDs maps a value kind to its catalog id. Kinds not listed resolve to
// BaseDataType.
var kindIDs = map[ValueKind]ID{
	KindSByte:    SByte,
	KindInt16:    Int16,
	KindInt32:    Int32,
	KindInt64:    Int64,
	KindByte:     Byte,
	KindUInt16:   UInt16,
	KindUInt32:   UInt32,
	KindUInt64:   UInt64,
	KindBool:     Boolean,
	KindDouble:   Double,
	KindFloat:    Float,
	KindString:   String,
	KindDateTime: DateTime,
}

// idKinds maps catalog ids to the kind of their runtime values.
var idKinds = map[ID]ValueKind{
	Boolean:    KindBool,
	SByte:      KindSByte,
	Byte:       KindByte,
	Int16:      KindInt16,
	UInt16:     KindUInt16,
	Int32:      KindInt32,
	UInt32:     KindUInt32,
	Int64:      KindInt64,
	UInt64:     KindUInt64,
	Float:      KindFloat,
	Double:     KindDouble,
	Duration:   KindDouble,
	String:     KindString,
	LocaleId:   KindString,
	DateTime:   KindDateTime,
	UtcTime:    KindDateTime,
	Guid:       KindGuid,
	ByteString: KindBytes,
	Image:      KindBytes,
}

// KindOf returns the runtime value kind of data type id.
func KindOf(id ID) ValueKind {
	if k, ok := idKinds[id]; ok {
		return k
	}
	return KindObject
}

// Zero returns the default runtime value for kind.
func Zero(kind ValueKind) any {
	switch kind {
	case KindBool:
		return false
	case KindSByte:
		return int8(0)
	case KindByte:
		return uint8(0)
	case KindInt16:
		return int16(0)
	case KindUInt16:
		return uint16(0)
	case KindInt32:
		return int32(0)
	case KindUInt32:
		return uint32(0)
	case KindInt64:
		return int64(0)
	case KindUInt64:
		return uint64(0)
	case KindFloat:
		return float32(0)
	case KindDouble:
		return float64(0)
	case KindString:
		return ""
	case KindDateTime:
		return time.Time{}
	case KindDuration:
		return time.Duration(0)
	case KindBytes:
		return []byte(nil)
	default:
		return nil
	}
}
