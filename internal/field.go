package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrBranchExists      = errors.New("branch already exists")
	ErrProtectedBranch   = errors.New("branch is protected")
	ErrStaleHead         = errors.New("branch head moved concurrently")
	ErrInvalidCategory   = errors.New("invalid category name")
	ErrInvalidBranch     = errors.New("invalid branch name")
	ErrInvalidConfidence = errors.New("invalid confidence level")
	ErrInvalidValue      = errors.New("invalid field value")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

// NewCategory validates a category name. Categories partition independent
// commit and branch histories.
func NewCategory(s string) (string, error) {
	if s == "" || !namePattern.MatchString(s) {
		return "", ErrInvalidCategory
	}
	return s, nil
}

func NewBranchName(s string) (string, error) {
	if s == "" || !namePattern.MatchString(s) {
		return "", ErrInvalidBranch
	}
	return s, nil
}

// Value is a single snapshot field: either a list of strings or a scalar
// (string, float64, bool, or nil). Merge and delta logic dispatch on the
// concrete type.
type Value interface {
	isValue()
	Equal(other Value) bool
}

type ListValue []string

func (ListValue) isValue() {}

func (v ListValue) Equal(other Value) bool {
	o, ok := other.(ListValue)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

func (v ListValue) Clone() ListValue {
	if v == nil {
		return nil
	}
	out := make(ListValue, len(v))
	copy(out, v)
	return out
}

type ScalarValue struct {
	Raw any // string, float64, bool, or nil
}

func (ScalarValue) isValue() {}

func (v ScalarValue) Equal(other Value) bool {
	o, ok := other.(ScalarValue)
	return ok && v.Raw == o.Raw
}

func (v ScalarValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw)
}

// NewValue converts a decoded JSON value into a Value. Lists must contain
// only strings; scalars must be string, number, bool, or nil.
func NewValue(raw any) (Value, error) {
	switch r := raw.(type) {
	case nil, string, float64, bool:
		return ScalarValue{Raw: r}, nil
	case int:
		return ScalarValue{Raw: float64(r)}, nil
	case []string:
		return ListValue(r).Clone(), nil
	case []any:
		items := make(ListValue, 0, len(r))
		for _, item := range r {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: list item %v is not a string", ErrInvalidValue, item)
			}
			items = append(items, s)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, raw)
	}
}

// Snapshot is the full materialized state of a category at one commit.
type Snapshot map[string]Value

// SnapshotFromAny builds a Snapshot from a plain field→value map, such as
// decoded JSON or a legacy flat object.
func SnapshotFromAny(fields map[string]any) (Snapshot, error) {
	snap := make(Snapshot, len(fields))
	for name, raw := range fields {
		val, err := NewValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		snap[name] = val
	}
	return snap, nil
}

// Clone returns a deep copy sharing no storage with the receiver.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for name, val := range s {
		if list, ok := val.(ListValue); ok {
			out[name] = list.Clone()
			continue
		}
		out[name] = val
	}
	return out
}

func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for name, val := range s {
		o, ok := other[name]
		if !ok || !val.Equal(o) {
			return false
		}
	}
	return true
}

// ToAny converts the snapshot back to a plain field→value map.
func (s Snapshot) ToAny() map[string]any {
	out := make(map[string]any, len(s))
	for name, val := range s {
		switch v := val.(type) {
		case ListValue:
			items := make([]any, len(v))
			for i, item := range v {
				items[i] = item
			}
			out[name] = items
		case ScalarValue:
			out[name] = v.Raw
		}
	}
	return out
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToAny())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	snap, err := SnapshotFromAny(fields)
	if err != nil {
		return err
	}
	*s = snap
	return nil
}

// FormatScalar renders a scalar for display and diffing.
func FormatScalar(v ScalarValue) string {
	if v.Raw == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v.Raw)
}

// SortedFieldNames returns the union of field names in both snapshots,
// sorted for deterministic iteration.
func SortedFieldNames(snaps ...Snapshot) []string {
	seen := make(map[string]bool)
	var names []string
	for _, snap := range snaps {
		for name := range snap {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
