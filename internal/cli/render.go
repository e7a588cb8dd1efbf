package cli

import (
	"fmt"
	"strings"

	"cartable/internal/domain/models/tree"
)

// TreeLine is one printed row of the tree.
type TreeLine struct {
	Name     string
	Kind     tree.Kind
	Depth    int
	IsLast   bool   // last child of its parent
	Metadata string // rendered after the name, e.g. "#12"
}

// kindMarkers prefix each row so levels stay readable without colors.
var kindMarkers = map[tree.Kind]string{
	tree.KindRoot:        "◆",
	tree.KindProgression: "▣",
	tree.KindSequence:    "▤",
	tree.KindSession:     "▥",
	tree.KindResource:    "•",
	tree.KindLoading:     "…",
	tree.KindError:       "✗",
}

// Flatten lists the rows of the subtree under root in display order.
// Children of n are shown only when open(n) is true; the root is always open.
// Loading gates are folded into a "[+]" marker on their parent.
func Flatten(root *tree.Node, open func(n *tree.Node) bool) []TreeLine {
	if root == nil {
		return nil
	}
	var lines []TreeLine
	var visit func(n *tree.Node, depth int, isLast bool)
	visit = func(n *tree.Node, depth int, isLast bool) {
		line := TreeLine{
			Name:     n.Name,
			Kind:     n.Kind,
			Depth:    depth,
			IsLast:   isLast,
			Metadata: metadata(n),
		}
		shown := n.Kind == tree.KindRoot || (open != nil && open(n))
		if n.IsLoadingGate() || (!shown && len(n.Children) > 0) {
			line.Metadata = strings.TrimSpace(line.Metadata + " [+]")
		}
		lines = append(lines, line)

		if !shown || n.IsLoadingGate() {
			return
		}
		for i, child := range n.Children {
			visit(child, depth+1, i == len(n.Children)-1)
		}
	}
	visit(root, 0, true)
	return lines
}

// metadata renders the per-kind suffix of a row.
func metadata(n *tree.Node) string {
	switch a := n.Attrs.(type) {
	case tree.ResourceAttrs:
		return fmt.Sprintf("#%s (%s)", n.ID, a.ResourceType)
	case tree.SequenceAttrs:
		if len(a.Objectives) > 0 {
			return fmt.Sprintf("#%s, %d objective(s)", n.ID, len(a.Objectives))
		}
	}
	if n.Kind.Expandable() {
		return "#" + n.ID
	}
	return ""
}

// Render converts rows into box-drawing text.
//
// Example output:
//
//	◆ Progressions
//	├── ▣ Maths 6e #1
//	│   └── ▤ Fractions #4 [+]
//	└── ▣ Français 5e #2 [+]
func Render(lines []TreeLine) string {
	if len(lines) == 0 {
		return ""
	}

	var result strings.Builder

	// continuations[d] is true while the last row at depth d still has
	// siblings below it
	continuations := make(map[int]bool)

	for i, line := range lines {
		result.WriteString(buildPrefix(line.Depth, line.IsLast, continuations))
		if marker, ok := kindMarkers[line.Kind]; ok {
			result.WriteString(marker + " ")
		}
		result.WriteString(line.Name)
		if line.Metadata != "" {
			result.WriteString(" " + line.Metadata)
		}
		if i < len(lines)-1 {
			result.WriteString("\n")
		}

		if line.IsLast {
			delete(continuations, line.Depth)
		} else {
			continuations[line.Depth] = true
		}
	}

	return result.String()
}

// buildPrefix draws the guides for a row at depth. Column d (0-based) belongs
// to the ancestor at depth d+1.
func buildPrefix(depth int, isLast bool, continuations map[int]bool) string {
	if depth == 0 {
		return ""
	}

	var prefix strings.Builder
	for d := 0; d < depth-1; d++ {
		if continuations[d+1] {
			prefix.WriteString("│   ")
		} else {
			prefix.WriteString("    ")
		}
	}

	if isLast {
		prefix.WriteString("└── ")
	} else {
		prefix.WriteString("├── ")
	}
	return prefix.String()
}
