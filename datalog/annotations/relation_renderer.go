package annotations

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// RelationRenderer pretty-prints binding sets as relations: the variables
// they bind and how many bindings there are
type RelationRenderer struct {
	useColor bool
}

// NewRelationRenderer creates a new relation renderer
func NewRelationRenderer(useColor bool) *RelationRenderer {
	return &RelationRenderer{useColor: useColor}
}

// RenderRelationWithAttrs renders a binding set by its variables and size.
// A negative count omits the size.
func (r *RelationRenderer) RenderRelationWithAttrs(attrs []string, count int) string {
	attrList := strings.Join(attrs, " ")

	if r.useColor {
		result := fmt.Sprintf("%s%s%s",
			color.BlueString("Relation(["),
			color.CyanString(attrList),
			color.BlueString("]"))

		if count >= 0 {
			result += fmt.Sprintf("%s%s%s",
				color.BlueString(", "),
				r.colorizeCount("Bindings", count),
				color.BlueString(")"))
		} else {
			result += color.BlueString(")")
		}
		return result
	}

	if count >= 0 {
		return fmt.Sprintf("Relation([%s], %d Bindings)", attrList, count)
	}
	return fmt.Sprintf("Relation([%s])", attrList)
}

// colorizeCount formats a count with color based on size
func (r *RelationRenderer) colorizeCount(label string, count int) string {
	if !r.useColor {
		return fmt.Sprintf("%d %s", count, label)
	}

	countStr := fmt.Sprintf("%d", count)

	switch {
	case count == 0:
		countStr = color.RedString(countStr)
	case count < 100:
		countStr = color.GreenString(countStr)
	case count < 10000:
		countStr = color.YellowString(countStr)
	default:
		countStr = color.RedString(countStr)
	}

	return fmt.Sprintf("%s %s", countStr, label)
}

// RenderJoin renders a join of two binding sets
func (r *RelationRenderer) RenderJoin(leftAttrs []string, leftCount int, rightAttrs []string, rightCount int, resultAttrs []string, resultCount int) string {
	left := r.RenderRelationWithAttrs(leftAttrs, leftCount)
	right := r.RenderRelationWithAttrs(rightAttrs, rightCount)
	result := r.RenderRelationWithAttrs(resultAttrs, resultCount)

	joinOp := " × "
	if r.useColor {
		joinOp = color.YellowString(" × ")
	}

	return fmt.Sprintf("%s%s%s → %s", left, joinOp, right, result)
}
