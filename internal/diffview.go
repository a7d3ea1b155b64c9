package internal

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderSnapshotDiff renders a human-readable field-by-field diff between
// two snapshots. List fields show +/- item lines; changed scalars are
// rendered through diff-match-patch.
func RenderSnapshotDiff(a, b Snapshot) string {
	var buf strings.Builder
	dmp := diffmatchpatch.New()

	for _, field := range SortedFieldNames(a, b) {
		aVal, inA := a[field]
		bVal, inB := b[field]

		switch {
		case inA && inB && aVal.Equal(bVal):
			continue
		case !inA:
			writeFieldHeader(&buf, field)
			writeValueLines(&buf, "+", bVal)
		case !inB:
			writeFieldHeader(&buf, field)
			writeValueLines(&buf, "-", aVal)
		default:
			writeFieldHeader(&buf, field)
			renderChangedField(&buf, dmp, aVal, bVal)
		}
	}

	return buf.String()
}

func writeFieldHeader(buf *strings.Builder, field string) {
	fmt.Fprintf(buf, "--- %s\n", field)
}

func writeValueLines(buf *strings.Builder, sign string, val Value) {
	switch v := val.(type) {
	case ListValue:
		for _, item := range v {
			fmt.Fprintf(buf, "%s %s\n", sign, item)
		}
	case ScalarValue:
		fmt.Fprintf(buf, "%s %s\n", sign, FormatScalar(v))
	}
}

func renderChangedField(buf *strings.Builder, dmp *diffmatchpatch.DiffMatchPatch, aVal, bVal Value) {
	aList, aIsList := aVal.(ListValue)
	bList, bIsList := bVal.(ListValue)

	if aIsList && bIsList {
		for _, item := range missingFrom(aList, bList) {
			fmt.Fprintf(buf, "- %s\n", item)
		}
		for _, item := range missingFrom(bList, aList) {
			fmt.Fprintf(buf, "+ %s\n", item)
		}
		return
	}

	aScalar, aOK := aVal.(ScalarValue)
	bScalar, bOK := bVal.(ScalarValue)
	if aOK && bOK {
		diffs := dmp.DiffMain(FormatScalar(aScalar), FormatScalar(bScalar), false)
		dmp.DiffCleanupSemantic(diffs)
		fmt.Fprintf(buf, "  %s\n", dmp.DiffPrettyText(diffs))
		return
	}

	// Type changed between list and scalar
	writeValueLines(buf, "-", aVal)
	writeValueLines(buf, "+", bVal)
}
