package tree

// Snapshot is an immutable view of a tree at one version.
type Snapshot struct {
	Root     *Node    `json:"root"`
	Expanded []string `json:"expanded"`
	Pending  []string `json:"pending"` // node ids with a fetch in flight
	Loading  bool     `json:"loading"` // root progressions are being fetched
	Error    string   `json:"error,omitempty"`
	Version  uint64   `json:"version"`
}

// ExpandOutcome says how an expand event was resolved.
type ExpandOutcome string

const (
	// OutcomeNone: no single node was newly expanded (collapse, bulk change)
	OutcomeNone ExpandOutcome = "none"
	// OutcomeResolved: children already present or the node is a leaf
	OutcomeResolved ExpandOutcome = "resolved"
	// OutcomeFetched: children were fetched and patched in
	OutcomeFetched ExpandOutcome = "fetched"
	// OutcomeFailed: the fetch failed and an error sentinel was patched in
	OutcomeFailed ExpandOutcome = "failed"
	// OutcomeInFlight: a fetch for this node is already running
	OutcomeInFlight ExpandOutcome = "in_flight"
	// OutcomeNotFound: the node is not (or no longer) in the tree
	OutcomeNotFound ExpandOutcome = "not_found"
)

// ExpandResult reports what an expand or reload did.
type ExpandResult struct {
	NodeID  string        `json:"node_id,omitempty"`
	Outcome ExpandOutcome `json:"outcome"`
	Error   string        `json:"error,omitempty"`
	Err     error         `json:"-"`
}
