package v1

import "time"

// Confidence levels for committed snapshots.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Commit is one immutable entry in a category's history.
type Commit struct {
	Hash       string         `json:"hash"`
	Category   string         `json:"category"`
	Branch     string         `json:"branch"`
	ParentHash string         `json:"parent_hash,omitempty"`
	Snapshot   map[string]any `json:"snapshot"`
	Message    string         `json:"message"`
	Confidence string         `json:"confidence"`
	CreatedAt  time.Time      `json:"created_at"`
}

// LogEntry summarizes one commit in a history listing.
type LogEntry struct {
	Hash         string    `json:"hash"`
	ParentHash   string    `json:"parent_hash,omitempty"`
	Message      string    `json:"message"`
	Confidence   string    `json:"confidence"`
	CreatedAt    time.Time `json:"created_at"`
	DeltaAdded   int       `json:"delta_added"`
	DeltaRemoved int       `json:"delta_removed"`
}

// Branch describes a named head pointer within one category.
type Branch struct {
	Name        string    `json:"name"`
	Head        string    `json:"head,omitempty"`
	CommitCount int       `json:"commit_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conflict reports a scalar field the two sides of a merge disagreed on.
type Conflict struct {
	Field  string `json:"field"`
	Source any    `json:"source_value"`
	Target any    `json:"target_value"`
}

// MergeResult is the outcome of merging one branch into another.
type MergeResult struct {
	Success    bool       `json:"success"`
	CommitHash string     `json:"commit_hash,omitempty"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
}
