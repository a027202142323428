package facet

import (
	"fmt"
	"strings"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

// Kind is the value domain of a facetable field.
type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindDate
)

var kindNames = map[Kind]string{
	KindInt:    "int",
	KindLong:   "long",
	KindFloat:  "float",
	KindDouble: "double",
	KindDate:   "date",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a schema type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return KindInt, nil
	case "long":
		return KindLong, nil
	case "float":
		return KindFloat, nil
	case "double":
		return KindDouble, nil
	case "date":
		return KindDate, nil
	}
	return KindUnknown, fmt.Errorf("%w: unknown field kind %q", internalerr.ErrInvalidConfig, s)
}

// FieldSpec describes a facetable field. Interval fields store a start
// and an end and are counted in every range they overlap.
type FieldSpec struct {
	Kind     Kind
	Interval bool
}

// Schema maps field names to their specs.
type Schema map[string]FieldSpec
