package ir

import (
	"sort"
	"strconv"

	"github.com/paconv/paconv/internal/model"
)

const zIndexProperty = "ZIndex"

// zIndexOf parses a control's ZIndex rule as a double; a missing or
// non-numeric value sorts as -1.
func zIndexOf(rules []RawRule) float64 {
	for _, r := range rules {
		if r.Name != zIndexProperty {
			continue
		}
		v, err := strconv.ParseFloat(NormalizeExpression(r.Expression), 64)
		if err != nil {
			return -1
		}
		return v
	}
	return -1
}

// childSplit pairs a split child's IR with its sort key.
type childSplit struct {
	ir     *model.IRBlock
	zIndex float64
}

// sortByZIndexAscending sorts children ascending by zIndex; ties
// preserve original input order (stable sort).
func sortByZIndexAscending(children []childSplit) {
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].zIndex < children[j].zIndex
	})
}

// sortByParentIndexAscending sorts children ascending by ParentIndex,
// children lacking a recorded state sorting first at -1 with ties
// preserving input order.
func sortByParentIndexAscending(items []combineChild) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].parentIndex < items[j].parentIndex
	})
}
