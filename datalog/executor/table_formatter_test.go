package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

func TestTableFormatter(t *testing.T) {
	formatter := NewTableFormatter()

	t.Run("FormatBindings", func(t *testing.T) {
		q := datalog.NewAtom("ancestor", "X", "Y")
		result := formatter.FormatBindings(q, []query.Binding{
			query.NewBinding("X", "alice", "Y", "bob"),
			query.NewBinding("X", "bob", "Y", "carol"),
		})

		assert.Contains(t, result, "X")
		assert.Contains(t, result, "alice")
		assert.Contains(t, result, "carol")
		assert.Contains(t, result, "_2 rows_")
		assert.Less(t, strings.Index(result, "alice"), strings.Index(result, "carol"))
	})

	t.Run("FormatNoBindings", func(t *testing.T) {
		result := formatter.FormatBindings(datalog.NewAtom("ancestor", "X", "Y"), nil)
		assert.Contains(t, result, "_No rows_")
		assert.Contains(t, result, "[X Y]")
	})

	t.Run("FormatGroundQuery", func(t *testing.T) {
		q := datalog.NewAtom("parent", "alice", "bob")
		assert.Equal(t, "_true_\n", formatter.FormatBindings(q, []query.Binding{{}}))
		assert.Equal(t, "_false_\n", formatter.FormatBindings(q, nil))
	})

	t.Run("FormatFacts", func(t *testing.T) {
		result := formatter.FormatFacts([]datalog.Atom{
			datalog.NewAtom("parent", "alice", "bob"),
			datalog.NewAtom("person", "alice"),
		})
		assert.Contains(t, result, "relation")
		assert.Contains(t, result, "arg2")
		assert.Contains(t, result, "person")
		assert.Contains(t, result, "_2 rows_")

		assert.Equal(t, "_No facts_\n", formatter.FormatFacts(nil))
	})

	t.Run("Truncate", func(t *testing.T) {
		tf := &TableFormatter{MaxWidth: 4, TruncateString: "~"}
		result := tf.FormatBindings(datalog.NewAtom("p", "X"), []query.Binding{
			query.NewBinding("X", "abcdefgh"),
		})
		assert.Contains(t, result, "abcd~")
		assert.NotContains(t, result, "abcdefgh")
		assert.Contains(t, result, "_1 row_")
	})
}
