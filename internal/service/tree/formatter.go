package tree

import (
	"fmt"

	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/models/tree"
)

// UnknownResourceType is used when a resource carries no type key.
const UnknownResourceType = "unknown"

// Labels supplies the user-visible strings the formatter synthesizes.
// *i18n.Catalog implements it.
type Labels interface {
	RootName() string
	RootLoadError() string
	Fallback(kind tree.Kind, id string) string
	Loading(kind tree.Kind) string
	LoadError(kind tree.Kind) string
}

// Formatter turns upstream records into tree nodes. It is pure.
type Formatter struct {
	labels Labels
}

// NewFormatter creates a formatter using labels for fallback and sentinel names.
func NewFormatter(labels Labels) *Formatter {
	return &Formatter{labels: labels}
}

// loadingPrefix and errorPrefix disambiguate sentinels per level so that
// siblings expanded at the same time never share an id.
func loadingPrefix(kind tree.Kind) string {
	switch kind {
	case tree.KindProgression:
		return "loading-ses"
	case tree.KindSequence:
		return "loading-res"
	case tree.KindSession:
		return "loading-rsc"
	}
	return "loading"
}

func errorPrefix(kind tree.Kind) string {
	switch kind {
	case tree.KindProgression:
		return "error-seq"
	case tree.KindSequence:
		return "error-ses"
	case tree.KindSession:
		return "error-res"
	}
	return "error"
}

// Root returns an empty root node.
func (f *Formatter) Root(children []*tree.Node) *tree.Node {
	return &tree.Node{
		ID:       tree.RootID,
		Name:     f.labels.RootName(),
		Kind:     tree.KindRoot,
		Children: children,
	}
}

// LoadingSentinel is the single child seeded under an unfetched container.
func (f *Formatter) LoadingSentinel(parentKind tree.Kind, parentID string) *tree.Node {
	return &tree.Node{
		ID:   fmt.Sprintf("%s-%s", loadingPrefix(parentKind), parentID),
		Name: f.labels.Loading(parentKind),
		Kind: tree.KindLoading,
	}
}

// ErrorSentinel is the single child placed under a container whose fetch failed.
func (f *Formatter) ErrorSentinel(parentKind tree.Kind, parentID string) *tree.Node {
	return &tree.Node{
		ID:   fmt.Sprintf("%s-%s", errorPrefix(parentKind), parentID),
		Name: f.labels.LoadError(parentKind),
		Kind: tree.KindError,
	}
}

// Format converts records listed at one level into nodes of kind.
// Containers get a loading sentinel; resources are leaves. A nil slice
// formats to an empty, non-nil list.
func (f *Formatter) Format(kind tree.Kind, records []pedagogy.Record) []*tree.Node {
	nodes := make([]*tree.Node, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, f.node(kind, rec))
	}
	return nodes
}

func (f *Formatter) node(kind tree.Kind, rec pedagogy.Record) *tree.Node {
	id := rec.ID.String()
	name := rec.Title
	if name == "" {
		name = f.labels.Fallback(kind, id)
	}

	n := &tree.Node{ID: id, Name: name, Kind: kind}
	if kind.Expandable() {
		n.Children = []*tree.Node{f.LoadingSentinel(kind, id)}
	} else {
		n.Children = []*tree.Node{}
	}

	description := ""
	if rec.Description != nil {
		description = *rec.Description
	}

	switch kind {
	case tree.KindProgression:
		n.Attrs = tree.ProgressionAttrs{Description: description}
	case tree.KindSequence:
		n.Attrs = tree.SequenceAttrs{Description: description, Objectives: rec.Objectives}
	case tree.KindSession:
		n.Attrs = tree.SessionAttrs{}
	case tree.KindResource:
		resourceType := UnknownResourceType
		if rec.Type != nil && rec.Type.Key != "" {
			resourceType = rec.Type.Key
		}
		// Resources keep their link in the description field upstream.
		n.Attrs = tree.ResourceAttrs{ResourceType: resourceType, URL: description}
	}
	return n
}
