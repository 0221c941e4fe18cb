package executor

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// TableFormatter renders query answers and fact sets as markdown tables
type TableFormatter struct {
	// MaxWidth is the maximum width for a cell; zero disables truncation
	MaxWidth int
	// TruncateString is the string to append when truncating
	TruncateString string
}

// NewTableFormatter creates a new table formatter with default settings
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// FormatBindings formats the answers to q, one row per binding. Columns are
// the query's variables in order of first occurrence.
func (tf *TableFormatter) FormatBindings(q datalog.Atom, bindings []query.Binding) string {
	columns := q.Variables()
	if len(columns) == 0 {
		// Ground query: the answer is yes or no
		if len(bindings) == 0 {
			return "_false_\n"
		}
		return "_true_\n"
	}

	rows := make([][]string, len(bindings))
	for i, b := range bindings {
		row := make([]string, len(columns))
		for j, col := range columns {
			if v, ok := b.Get(col); ok {
				row[j] = tf.formatCell(v.Name)
			}
		}
		rows[i] = row
	}
	return tf.formatTable(columns, rows)
}

// FormatFacts formats facts as a table with the relation in the first
// column and the arguments after it
func (tf *TableFormatter) FormatFacts(facts []datalog.Atom) string {
	if len(facts) == 0 {
		return "_No facts_\n"
	}

	width := 0
	for _, f := range facts {
		if len(f) > width {
			width = len(f)
		}
	}

	columns := make([]string, width)
	columns[0] = "relation"
	for i := 1; i < width; i++ {
		columns[i] = fmt.Sprintf("arg%d", i)
	}

	rows := make([][]string, len(facts))
	for i, f := range facts {
		row := make([]string, width)
		for j, t := range f {
			row[j] = tf.formatCell(t.Name)
		}
		rows[i] = row
	}
	return tf.formatTable(columns, rows)
}

// formatTable formats columns and rows as a markdown table
func (tf *TableFormatter) formatTable(columns []string, rows [][]string) string {
	if len(rows) == 0 {
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_\n", columns)
	}

	tableString := &strings.Builder{}

	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header(columns)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	if len(rows) == 1 {
		tableString.WriteString("\n_1 row_\n")
	} else {
		tableString.WriteString(fmt.Sprintf("\n_%d rows_\n", len(rows)))
	}

	return tableString.String()
}

func (tf *TableFormatter) formatCell(s string) string {
	if tf.MaxWidth > 0 && len(s) > tf.MaxWidth {
		return s[:tf.MaxWidth] + tf.TruncateString
	}
	return s
}

// BindingsString returns the markdown table for the answers to q
func BindingsString(q datalog.Atom, bindings []query.Binding) string {
	return NewTableFormatter().FormatBindings(q, bindings)
}

// PrintBindings prints the answers to q to stdout
func PrintBindings(q datalog.Atom, bindings []query.Binding) {
	fmt.Print(BindingsString(q, bindings))
}
