package pedagogy

// Progression is a top-level course plan.
type Progression struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// ProgressionInput is the create/update payload for a progression.
type ProgressionInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// Objective is a learning objective attached to sequences and sessions.
type Objective struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// Sequence is a thematic subdivision of a progression.
type Sequence struct {
	ID            ID          `json:"id"`
	Title         string      `json:"title"`
	Description   *string     `json:"description,omitempty"`
	ProgressionID ID          `json:"progression_id"`
	Objectives    []Objective `json:"objectives"`
}

// Session is a single class meeting within a sequence.
// Date and Duration are kept as the API's strings (naive datetimes, ISO durations).
type Session struct {
	ID         ID          `json:"id"`
	Title      string      `json:"title"`
	Date       string      `json:"date,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	Duration   *string     `json:"duration,omitempty"`
	SequenceID ID          `json:"sequence_id"`
	Objectives []Objective `json:"objectives"`
}

// ResourceType is a top-level resource classification (text, video, exercise...).
type ResourceType struct {
	ID    ID     `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ResourceSubType refines a ResourceType.
type ResourceSubType struct {
	ID     ID     `json:"id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
	TypeID ID     `json:"type_id,omitempty"`
}

// SessionRef is the minimal session reference embedded in a resource.
type SessionRef struct {
	ID ID `json:"id"`
}

// Source types accepted by the API for resources.
const (
	SourceFile = "file"
	SourceAI   = "ai"
)

// Resource is a document, exercise or video attached to sessions.
type Resource struct {
	ID          ID               `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	TypeID      ID               `json:"type_id"`
	SubTypeID   *ID              `json:"sub_type_id,omitempty"`
	UserID      ID               `json:"user_id"`
	SourceType  string           `json:"source_type"`
	FilePath    *string          `json:"file_path,omitempty"`
	FileName    *string          `json:"file_name,omitempty"`
	FileSize    *int64           `json:"file_size,omitempty"`
	FileType    *string          `json:"file_type,omitempty"`
	Type        *ResourceType    `json:"type,omitempty"`
	SubType     *ResourceSubType `json:"sub_type,omitempty"`
	Sessions    []SessionRef     `json:"sessions"`
}

// SessionIDs lists the sessions this resource is attached to.
func (r *Resource) SessionIDs() []string {
	ids := make([]string, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		ids = append(ids, s.ID.String())
	}
	return ids
}

// ResourceCreate is the create payload for a resource.
type ResourceCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	TypeID      int64   `json:"type_id"`
	SubTypeID   int64   `json:"sub_type_id"`
	SourceType  string  `json:"source_type"`
	SessionIDs  []int64 `json:"session_ids,omitempty"`
	UserID      int64   `json:"user_id"`
}

// ResourceUpdate is a partial update; nil fields are left untouched upstream.
type ResourceUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	TypeID      *int64  `json:"type_id,omitempty"`
	SubTypeID   *int64  `json:"sub_type_id,omitempty"`
	SessionIDs  []int64 `json:"session_ids,omitempty"`
}

// Record is the level-agnostic shape the tree formatter reads.
// Any of the list endpoints (progressions, sequences, sessions, resources)
// decodes into it; fields a level does not send stay zero.
type Record struct {
	ID          ID            `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Objectives  []Objective   `json:"objectives,omitempty"`
	Type        *ResourceType `json:"type,omitempty"`
}
