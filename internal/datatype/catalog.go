package datatype

import (
	"regexp"
	"strconv"
)

// ID is a canonical data type identifier (namespace 0 numeric node id).
type ID uint32

// Canonical ids of the built-in data types.
const (
	Boolean        ID = 1
	SByte          ID = 2
	Byte           ID = 3
	Int16          ID = 4
	UInt16         ID = 5
	Int32          ID = 6
	UInt32         ID = 7
	Int64          ID = 8
	UInt64         ID = 9
	Float          ID = 10
	Double         ID = 11
	String         ID = 12
	DateTime       ID = 13
	Guid           ID = 14
	ByteString     ID = 15
	XmlElement     ID = 16
	NodeId         ID = 17
	ExpandedNodeId ID = 18
	StatusCode     ID = 19
	QualifiedName  ID = 20
	LocalizedText  ID = 21
	Structure      ID = 22
	DataValue      ID = 23
	BaseDataType   ID = 24
	DiagnosticInfo ID = 25
	Number         ID = 26
	Integer        ID = 27
	UInteger       ID = 28
	Enumeration    ID = 29
	Image          ID = 30
	Decimal        ID = 50
	Duration       ID = 290
	UtcTime        ID = 294
	LocaleId       ID = 295
)

func (id ID) String() string {
	return "i=" + strconv.FormatUint(uint64(id), 10)
}

type entry struct {
	name string
	id   ID
}

// builtin lists the catalog in declaration order. Name matching walks it
// front to back and the first hit wins, so order is significant.
var builtin = []entry{
	{"BaseDataType", BaseDataType},
	{"Boolean", Boolean},
	{"SByte", SByte},
	{"Byte", Byte},
	{"Int16", Int16},
	{"UInt16", UInt16},
	{"Int32", Int32},
	{"UInt32", UInt32},
	{"Int64", Int64},
	{"UInt64", UInt64},
	{"Float", Float},
	{"Double", Double},
	{"String", String},
	{"DateTime", DateTime},
	{"Guid", Guid},
	{"ByteString", ByteString},
	{"XmlElement", XmlElement},
	{"NodeId", NodeId},
	{"ExpandedNodeId", ExpandedNodeId},
	{"StatusCode", StatusCode},
	{"QualifiedName", QualifiedName},
	{"LocalizedText", LocalizedText},
	{"Structure", Structure},
	{"DataValue", DataValue},
	{"DiagnosticInfo", DiagnosticInfo},
	{"Number", Number},
	{"Integer", Integer},
	{"UInteger", UInteger},
	{"Enumeration", Enumeration},
	{"Image", Image},
	{"Decimal", Decimal},
	{"Duration", Duration},
	{"UtcTime", UtcTime},
	{"LocaleId", LocaleId},
}

// Catalog is the registry of canonical data types.
type Catalog struct {
	entries []entry
	names   map[ID]string
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		entries: builtin,
		names:   make(map[ID]string, len(builtin)),
	}
	for _, e := range builtin {
		c.names[e.id] = e.name
	}
	return c
}

// Name returns the declared name of id.
func (c *Catalog) Name(id ID) (string, bool) {
	name, ok := c.names[id]
	return name, ok
}

// Match performs a case-insensitive whole-word match of typeName against the
// registered names and returns the first entry that matches.
func (c *Catalog) Match(typeName string) (ID, bool) {
	if typeName == "" {
		return 0, false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(typeName) + `\b`)
	if err != nil {
		return 0, false
	}
	for _, e := range c.entries {
		if re.MatchString(e.name) {
			return e.id, true
		}
	}
	return 0, false
}
