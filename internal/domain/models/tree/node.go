package tree

import (
	"encoding/json"

	"cartable/internal/domain/models/pedagogy"
)

// Kind is the discriminator of a tree node.
type Kind string

const (
	KindRoot        Kind = "root"
	KindProgression Kind = "progression"
	KindSequence    Kind = "sequence"
	KindSession     Kind = "session"
	KindResource    Kind = "resource"
	KindLoading     Kind = "loading"
	KindError       Kind = "error"
)

// RootID is the identifier of the single root node.
const RootID = "root"

// Expandable reports whether nodes of this kind own fetchable children.
func (k Kind) Expandable() bool {
	switch k {
	case KindProgression, KindSequence, KindSession:
		return true
	}
	return false
}

// ChildKind returns the kind of the records listed under k, or "" for leaves.
func (k Kind) ChildKind() Kind {
	switch k {
	case KindRoot:
		return KindProgression
	case KindProgression:
		return KindSequence
	case KindSequence:
		return KindSession
	case KindSession:
		return KindResource
	}
	return ""
}

// Node is one element of the synchronized tree.
//
// Nodes are immutable once published: every change produces new nodes along
// the path from the root, and untouched subtrees are shared by pointer.
type Node struct {
	ID       string
	Name     string
	Kind     Kind
	Children []*Node
	Attrs    Attrs
}

// Attrs is the kind-specific payload of a node. The set of variants is closed.
type Attrs interface {
	attrsKind() Kind
}

// ProgressionAttrs holds the fields only progressions carry.
type ProgressionAttrs struct {
	Description string
}

// SequenceAttrs holds the fields only sequences carry.
type SequenceAttrs struct {
	Description string
	Objectives  []pedagogy.Objective
}

// SessionAttrs is empty today; sessions only have shared fields.
type SessionAttrs struct{}

// ResourceAttrs holds the fields only resources carry.
type ResourceAttrs struct {
	ResourceType string
	URL          string
}

func (ProgressionAttrs) attrsKind() Kind { return KindProgression }
func (SequenceAttrs) attrsKind() Kind    { return KindSequence }
func (SessionAttrs) attrsKind() Kind     { return KindSession }
func (ResourceAttrs) attrsKind() Kind    { return KindResource }

// IsLoadingGate reports whether the node's children are the single
// "not yet fetched" sentinel.
func (n *Node) IsLoadingGate() bool {
	return len(n.Children) == 1 && n.Children[0].Kind == KindLoading
}

// IsErrorGate reports whether the node's last fetch failed.
func (n *Node) IsErrorGate() bool {
	return len(n.Children) == 1 && n.Children[0].Kind == KindError
}

// NeedsFetch reports whether expanding the node must hit the network.
// Error sentinels are retried on the next expand.
func (n *Node) NeedsFetch() bool {
	return n.Kind.Expandable() && (n.IsLoadingGate() || n.IsErrorGate())
}

// jsonNode is the flattened wire shape served to presentation layers.
type jsonNode struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Kind         Kind                 `json:"kind"`
	Children     []*Node              `json:"children"`
	Description  string               `json:"description,omitempty"`
	Objectives   []pedagogy.Objective `json:"objectives,omitempty"`
	ResourceType string               `json:"resource_type,omitempty"`
	URL          string               `json:"url,omitempty"`
}

// MarshalJSON flattens the kind-specific attributes into the node object.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := jsonNode{
		ID:       n.ID,
		Name:     n.Name,
		Kind:     n.Kind,
		Children: n.Children,
	}
	if out.Children == nil {
		out.Children = []*Node{}
	}

	switch a := n.Attrs.(type) {
	case ProgressionAttrs:
		out.Description = a.Description
	case SequenceAttrs:
		out.Description = a.Description
		out.Objectives = a.Objectives
	case ResourceAttrs:
		out.ResourceType = a.ResourceType
		out.URL = a.URL
	}

	return json.Marshal(out)
}
