package internal

import (
	"time"
)

const DefaultBranch = "main"

// Confidence grades how trustworthy a committed snapshot is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Delta records list-field items added and removed relative to the parent
// commit. Scalar fields never appear here.
type Delta struct {
	Added   map[string][]string `json:"added"`
	Removed map[string][]string `json:"removed"`
}

func NewDelta() Delta {
	return Delta{
		Added:   make(map[string][]string),
		Removed: make(map[string][]string),
	}
}

func (d Delta) Clone() Delta {
	out := NewDelta()
	for field, items := range d.Added {
		out.Added[field] = append([]string(nil), items...)
	}
	for field, items := range d.Removed {
		out.Removed[field] = append([]string(nil), items...)
	}
	return out
}

// AddedCount returns the total number of added items across all fields.
func (d Delta) AddedCount() int {
	n := 0
	for _, items := range d.Added {
		n += len(items)
	}
	return n
}

func (d Delta) RemovedCount() int {
	n := 0
	for _, items := range d.Removed {
		n += len(items)
	}
	return n
}

// Commit is an immutable record of a snapshot, its delta from its parent,
// and provenance metadata. ParentHash is empty only for the first commit
// in a lineage.
type Commit struct {
	Hash       string     `json:"hash"`
	Category   string     `json:"category"`
	Branch     string     `json:"branch"`
	ParentHash string     `json:"parent_hash,omitempty"`
	Delta      Delta      `json:"delta"`
	Snapshot   Snapshot   `json:"snapshot"`
	Message    string     `json:"message"`
	Confidence Confidence `json:"confidence"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (c *Commit) Clone() *Commit {
	if c == nil {
		return nil
	}
	out := *c
	out.Delta = c.Delta.Clone()
	out.Snapshot = c.Snapshot.Clone()
	return &out
}

// Branch is a named mutable pointer to the latest commit in a lineage,
// scoped to one category. Head is empty while the branch has no commits.
type Branch struct {
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	Head      string    `json:"head,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BranchInfo is a Branch plus the number of commits created on it.
// Fork-inherited ancestor commits are not counted.
type BranchInfo struct {
	Branch
	CommitCount int `json:"commit_count"`
}

// LogEntry summarizes one commit for history listings.
type LogEntry struct {
	Hash         string     `json:"hash"`
	ParentHash   string     `json:"parent_hash,omitempty"`
	Message      string     `json:"message"`
	Confidence   Confidence `json:"confidence"`
	CreatedAt    time.Time  `json:"created_at"`
	DeltaAdded   int        `json:"delta_added"`
	DeltaRemoved int        `json:"delta_removed"`
}

// Conflict reports a scalar field whose two sides disagreed during a merge.
// The target side's value wins in the merged snapshot.
type Conflict struct {
	Field  string `json:"field"`
	Source Value  `json:"source_value"`
	Target Value  `json:"target_value"`
}

// MergeResult reports the outcome of reconciling two branch heads.
// Conflicts are data, not failures: Success is false only when the source
// branch had no commits to merge.
type MergeResult struct {
	Success    bool       `json:"success"`
	CommitHash string     `json:"commit_hash,omitempty"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
}
