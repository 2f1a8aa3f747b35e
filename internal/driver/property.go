package driver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/tagsync/internal/graph"
)

var (
	ErrValueParse   = errors.New("cannot parse value")
	ErrPropertyType = errors.New("property value has wrong type")
	ErrReadOnly     = errors.New("property is read-only")
)

// ValueParseError reports a cell that cannot be parsed into the property's
// declared type.
type ValueParseError struct {
	Property string
	Value    string
	Err      error
}

func (e *ValueParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("property %s: cannot parse %q: %v", e.Property, e.Value, e.Err)
	}
	return fmt.Sprintf("property %s: cannot parse %q", e.Property, e.Value)
}

func (e *ValueParseError) Unwrap() error { return e.Err }

func (e *ValueParseError) Is(target error) bool {
	return target == ErrValueParse
}

// PropertyType is the primitive type of a declared property.
type PropertyType int

const (
	TypeInt16 PropertyType = iota
	TypeInt32
	TypeUInt16
	TypeUInt32
	TypeDouble
	TypeByte
	TypeBool
	TypeString
	TypeEnum
)

func (t PropertyType) String() string {
	switch t {
	case TypeInt16:
		return "Int16"
	case TypeInt32:
		return "Int32"
	case TypeUInt16:
		return "UInt16"
	case TypeUInt32:
		return "UInt32"
	case TypeDouble:
		return "Double"
	case TypeByte:
		return "Byte"
	case TypeBool:
		return "Boolean"
	case TypeString:
		return "String"
	case TypeEnum:
		return "Enum"
	default:
		return fmt.Sprintf("PropertyType(%d)", int(t))
	}
}

// EnumMember is one named value of an enumeration.
type EnumMember struct {
	Name  string
	Value int32
}

// EnumType is a closed enumeration. Values are stored as int32.
type EnumType struct {
	Name    string
	Members []EnumMember
}

// Parse accepts a member name (case-sensitive) or the member's numeric value.
func (e *EnumType) Parse(s string) (int32, error) {
	s = strings.TrimSpace(s)
	for _, m := range e.Members {
		if m.Name == s {
			return m.Value, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		if _, ok := e.member(int32(n)); ok {
			return int32(n), nil
		}
	}
	return 0, fmt.Errorf("%q is not a member of %s", s, e.Name)
}

// Format returns the member name for v, or its number if v is not a member.
func (e *EnumType) Format(v int32) string {
	if m, ok := e.member(v); ok {
		return m.Name
	}
	return strconv.FormatInt(int64(v), 10)
}

func (e *EnumType) member(v int32) (EnumMember, bool) {
	for _, m := range e.Members {
		if m.Value == v {
			return m, true
		}
	}
	return EnumMember{}, false
}

// Property describes one named, typed property of a tag kind. Stored
// properties live in the node's property map; computed ones supply their own
// accessors.
type Property struct {
	Name string
	Type PropertyType
	Enum *EnumType

	get func(*graph.Node) (any, bool)
	set func(*graph.Node, any) error
}

func stored(name string, typ PropertyType) Property {
	return Property{Name: name, Type: typ}
}

func storedEnum(name string, enum *EnumType) Property {
	return Property{Name: name, Type: TypeEnum, Enum: enum}
}

// Settable reports whether the property accepts writes. Computed properties
// without a setter are read-only.
func (p Property) Settable() bool {
	return p.get == nil || p.set != nil
}

// Get returns the property's current value on n. ok is false when the
// property has never been assigned.
func (p Property) Get(n *graph.Node) (any, bool) {
	if p.get != nil {
		return p.get(n)
	}
	return n.Property(p.Name)
}

// Set assigns v to the property on n. v must already carry the property's Go
// type (see Parse).
func (p Property) Set(n *graph.Node, v any) error {
	if !p.Settable() {
		return fmt.Errorf("%w: %s", ErrReadOnly, p.Name)
	}
	if err := p.check(v); err != nil {
		return err
	}
	if p.set != nil {
		return p.set(n, v)
	}
	n.SetProperty(p.Name, v)
	return nil
}

func (p Property) check(v any) error {
	ok := false
	switch p.Type {
	case TypeInt16:
		_, ok = v.(int16)
	case TypeInt32, TypeEnum:
		_, ok = v.(int32)
	case TypeUInt16:
		_, ok = v.(uint16)
	case TypeUInt32:
		_, ok = v.(uint32)
	case TypeDouble:
		_, ok = v.(float64)
	case TypeByte:
		_, ok = v.(uint8)
	case TypeBool:
		_, ok = v.(bool)
	case TypeString:
		_, ok = v.(string)
	}
	if !ok {
		return fmt.Errorf("%w: %s wants %s, got %T", ErrPropertyType, p.Name, p.Type, v)
	}
	return nil
}

// Parse converts a cell into the property's Go type.
func (p Property) Parse(s string) (any, error) {
	v, err := p.parse(s)
	if err != nil {
		return nil, &ValueParseError{Property: p.Name, Value: s, Err: err}
	}
	return v, nil
}

func (p Property) parse(s string) (any, error) {
	switch p.Type {
	case TypeString:
		return s, nil
	case TypeEnum:
		return p.Enum.Parse(s)
	}

	s = strings.TrimSpace(s)
	switch p.Type {
	case TypeInt16:
		n, err := strconv.ParseInt(s, 10, 16)
		return int16(n), unwrapNum(err)
	case TypeInt32:
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), unwrapNum(err)
	case TypeUInt16:
		n, err := strconv.ParseUint(s, 10, 16)
		return uint16(n), unwrapNum(err)
	case TypeUInt32:
		n, err := strconv.ParseUint(s, 10, 32)
		return uint32(n), unwrapNum(err)
	case TypeByte:
		n, err := strconv.ParseUint(s, 10, 8)
		return uint8(n), unwrapNum(err)
	case TypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		return f, unwrapNum(err)
	case TypeBool:
		switch {
		case strings.EqualFold(s, "true"):
			return true, nil
		case strings.EqualFold(s, "false"):
			return false, nil
		}
		return nil, errors.New("want True or False")
	}
	return nil, fmt.Errorf("unhandled property type %s", p.Type)
}

// unwrapNum drops strconv's function/input prefix; ValueParseError already
// carries both.
func unwrapNum(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

// Format renders v the way it is written to a CSV cell.
func (p Property) Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		if p.Type == TypeEnum && p.Enum != nil {
			return p.Enum.Format(x)
		}
		return strconv.FormatInt(int64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
