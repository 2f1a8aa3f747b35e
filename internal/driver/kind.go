// Package driver describes the native communication-driver node kinds: their
// fully-qualified type names and the typed property set each tag kind declares.
package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/tagsync/internal/graph"
)

var ErrUnsupportedKind = errors.New("unsupported tag kind")

// UnsupportedKindError reports a Type cell naming no known kind.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported tag kind %q", e.Kind)
}

func (e *UnsupportedKindError) Is(target error) bool {
	return target == ErrUnsupportedKind
}

const (
	StructureTypeName = "FTOptix.CommunicationDriver.TagStructure"
	FolderTypeName    = "FTOptix.Core.Folder"
)

var fullNames = map[graph.Kind]string{
	graph.KindFolder:           FolderTypeName,
	graph.KindStructure:        StructureTypeName,
	graph.KindS7TCPTag:         "FTOptix.S7TCP.Tag",
	graph.KindS7TiaProfinetTag: "FTOptix.S7TiaProfinet.Tag",
	graph.KindCODESYSTag:       "FTOptix.CODESYS.Tag",
	graph.KindModbusTag:        "FTOptix.Modbus.Tag",
	graph.KindRAEtherNetIPTag:  "FTOptix.RAEtherNetIP.Tag",
}

// FullName returns the fully-qualified type name written to the Type column.
func FullName(k graph.Kind) string {
	if s, ok := fullNames[k]; ok {
		return s
	}
	return k.String()
}

// KindByName is the inverse of FullName. Matching is exact after trimming
// surrounding whitespace.
func KindByName(name string) (graph.Kind, error) {
	name = strings.TrimSpace(name)
	for k, s := range fullNames {
		if s == name {
			return k, nil
		}
	}
	return 0, &UnsupportedKindError{Kind: name}
}
