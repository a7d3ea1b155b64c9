package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Merge reconciles the source branch's head into the target branch.
//
// Per-field policy:
//   - list vs list: union, deduplicated case-insensitively with first-seen
//     casing kept, ordered target items first then new source items. Never
//     a conflict.
//   - deep-equal values: kept as-is.
//   - anything scalar that differs: recorded as a conflict; the target's
//     value wins in the merged snapshot.
//   - fields present on only one side are carried over unchanged.
//
// Conflicts are reported data, not failures. The only failure mode is a
// source branch with no commits, which returns Success=false and commits
// nothing. The merge commit lands on the target branch with message
// "Merge {source} into {target}" at MEDIUM confidence.
func (e *Engine) Merge(ctx context.Context, category, source, target string) (*MergeResult, error) {
	category, source, err := validateLineage(category, source)
	if err != nil {
		return nil, err
	}
	if target == "" {
		target = DefaultBranch
	}
	target, err = NewBranchName(target)
	if err != nil {
		return nil, err
	}

	sourceSnap, err := e.GetHeadSnapshot(ctx, category, source)
	if errors.Is(err, ErrNotFound) {
		return &MergeResult{Success: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read source head: %w", err)
	}

	lock := e.branchLock(category, target)
	lock.Lock()
	defer lock.Unlock()

	targetSnap := Snapshot{}
	if head, err := e.GetHeadCommit(ctx, category, target); err == nil {
		targetSnap = head.Snapshot
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("read target head: %w", err)
	}

	merged, conflicts := resolveFields(sourceSnap, targetSnap)

	message := fmt.Sprintf("Merge %s into %s", source, target)
	commit, err := e.commitLocked(ctx, category, target, merged, message, ConfidenceMedium)
	if err != nil {
		return nil, err
	}

	return &MergeResult{
		Success:    true,
		CommitHash: commit.Hash,
		Conflicts:  conflicts,
	}, nil
}

// resolveFields applies the per-field merge policy across the union of
// fields in both snapshots.
func resolveFields(source, target Snapshot) (Snapshot, []Conflict) {
	merged := Snapshot{}
	var conflicts []Conflict

	for _, field := range SortedFieldNames(target, source) {
		sourceVal, inSource := source[field]
		targetVal, inTarget := target[field]

		switch {
		case !inSource:
			merged[field] = cloneValue(targetVal)
		case !inTarget:
			merged[field] = cloneValue(sourceVal)
		default:
			merged[field] = mergeField(field, sourceVal, targetVal, &conflicts)
		}
	}

	return merged, conflicts
}

func mergeField(field string, sourceVal, targetVal Value, conflicts *[]Conflict) Value {
	sourceList, sourceIsList := sourceVal.(ListValue)
	targetList, targetIsList := targetVal.(ListValue)

	if sourceIsList && targetIsList {
		return unionLists(targetList, sourceList)
	}

	if sourceVal.Equal(targetVal) {
		return cloneValue(targetVal)
	}

	*conflicts = append(*conflicts, Conflict{
		Field:  field,
		Source: cloneValue(sourceVal),
		Target: cloneValue(targetVal),
	})
	return cloneValue(targetVal)
}

// unionLists merges two lists keeping target order first, appending source
// items not already present. Deduplication is case-insensitive and the
// first-seen original casing survives.
func unionLists(target, source ListValue) ListValue {
	seen := make(map[string]bool, len(target)+len(source))
	merged := make(ListValue, 0, len(target)+len(source))

	for _, item := range target {
		folded := strings.ToLower(item)
		if !seen[folded] {
			seen[folded] = true
			merged = append(merged, item)
		}
	}
	for _, item := range source {
		folded := strings.ToLower(item)
		if !seen[folded] {
			seen[folded] = true
			merged = append(merged, item)
		}
	}
	return merged
}

func cloneValue(v Value) Value {
	if list, ok := v.(ListValue); ok {
		return list.Clone()
	}
	return v
}
