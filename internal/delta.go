package internal

// ComputeDelta compares two snapshots field by field and records item-level
// additions and removals for list-valued fields. Scalar fields carry no
// delta; the full snapshot on each commit already captures them.
// Comparison is case-sensitive on the exact string.
func ComputeDelta(old, next Snapshot) Delta {
	delta := NewDelta()

	for _, field := range SortedFieldNames(old, next) {
		oldList, oldOK := old[field].(ListValue)
		newList, newOK := next[field].(ListValue)

		if !oldOK && !newOK {
			continue
		}

		if added := missingFrom(newList, oldList); len(added) > 0 {
			delta.Added[field] = added
		}
		if removed := missingFrom(oldList, newList); len(removed) > 0 {
			delta.Removed[field] = removed
		}
	}

	return delta
}

// missingFrom returns the items of list absent from other, in list order.
func missingFrom(list, other ListValue) []string {
	seen := make(map[string]bool, len(other))
	for _, item := range other {
		seen[item] = true
	}

	var missing []string
	for _, item := range list {
		if !seen[item] {
			missing = append(missing, item)
		}
	}
	return missing
}
