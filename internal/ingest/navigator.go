package ingest

import (
	"fmt"
	"strings"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/graph"
)

// ContainerPolicy selects what ResolveOwner creates for missing ancestors.
type ContainerPolicy int

const (
	PolicyStructure ContainerPolicy = iota
	PolicyFolder
)

func (p ContainerPolicy) String() string {
	if p == PolicyFolder {
		return "folder"
	}
	return "structure"
}

// ResolveOwner walks relPath from root and returns the direct parent of the
// path's last segment. The first segment names root itself and the last
// names the row's own node; only the segments in between are traversed.
//
// With createMissing, absent segments are created under policy and
// structuresCreated counts the structures made. Without it, a missing segment
// yields a nil owner. A nil root yields a nil owner.
func ResolveOwner(root *graph.Node, relPath string, createMissing bool, policy ContainerPolicy) (owner *graph.Node, structuresCreated int, err error) {
	if root == nil {
		return nil, 0, nil
	}
	segments := splitPath(relPath)

	owner = root
	for i := 1; i < len(segments)-1; i++ {
		name := segments[i]
		child := owner.Child(name)
		if child == nil {
			if !createMissing {
				return nil, structuresCreated, nil
			}
			if policy == PolicyFolder {
				child = graph.NewFolder(name)
			} else {
				child = graph.NewStructure(name)
			}
			if err := owner.Add(child); err != nil {
				return nil, structuresCreated, fmt.Errorf("create %s: %w", name, err)
			}
			if policy == PolicyStructure {
				structuresCreated++
			}
		}
		owner = child
	}
	return owner, structuresCreated, nil
}

// splitPath splits a browse path, dropping empty segments.
func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, api.PathSeparator) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
