package annotations

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatEvents(t *testing.T) {
	f := NewOutputFormatterWithColor(&bytes.Buffer{}, false)

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name: "build invoked",
			event: Event{Name: BuildInvoked, Data: map[string]interface{}{
				"fact.count": 5, "rule.count": 2,
			}},
			want: "[0µs] === Build starting with 5 facts and 2 rules",
		},
		{
			name: "build complete",
			event: Event{Name: BuildComplete, Latency: 1500 * time.Microsecond, Data: map[string]interface{}{
				"pass.count": 3, "fact.count": 15, "success": true,
			}},
			want: "[1.5ms] === Build done after 3 passes with 15 facts.",
		},
		{
			name: "build failed",
			event: Event{Name: BuildComplete, Data: map[string]interface{}{
				"success": false, "error": "boom",
			}},
			want: "[0µs] ✗ Build failed: boom",
		},
		{
			name: "pass derived",
			event: Event{Name: PassComplete, Data: map[string]interface{}{
				"pass": 1, "fact.before": 5, "fact.after": 13,
			}},
			want: "[0µs] Pass 1 derived 8 facts",
		},
		{
			name: "pass fixpoint",
			event: Event{Name: PassComplete, Data: map[string]interface{}{
				"pass": 3, "fact.before": 15, "fact.after": 15,
			}},
			want: "[0µs] Pass 3 reached fixpoint at 15 facts",
		},
		{
			name: "rule",
			event: Event{Name: RuleApplied, Data: map[string]interface{}{
				"rule": "[[ancestor X Y] [parent X Y]]", "fact.added": 5,
			}},
			want: "[0µs] Rule([[ancestor X Y] [parent X Y]]) → 5 new facts",
		},
		{
			name: "goal",
			event: Event{Name: GoalEvaluated, Data: map[string]interface{}{
				"goal": "[parent X Y]", "symbol.order": []string{"X", "Y"}, "binding.count": 5,
			}},
			want: "[0µs] Goal([parent X Y]) → Relation([X Y], 5 Bindings)",
		},
		{
			name: "join",
			event: Event{Name: JoinBindings, Data: map[string]interface{}{
				"left.size": 2, "right.size": 3, "result.size": 1,
				"left.attrs": []string{"X", "Z"}, "right.attrs": []string{"Y", "Z"}, "result.attrs": []string{"X", "Y", "Z"},
			}},
			want: "[0µs] Relation([X Z], 2 Bindings) × Relation([Y Z], 3 Bindings) → Relation([X Y Z], 1 Bindings)",
		},
		{
			name: "join without attrs",
			event: Event{Name: JoinBindings, Data: map[string]interface{}{
				"left.size": 2, "right.size": 0, "result.size": 0,
			}},
			want: "[0µs] 2 × 0 → 0 bindings",
		},
		{
			name: "query",
			event: Event{Name: QueryComplete, Data: map[string]interface{}{
				"binding.count": 2,
			}},
			want: "[0µs] === Query done with 2 bindings.",
		},
		{
			name: "pass limit",
			event: Event{Name: ErrorPassLimit, Data: map[string]interface{}{
				"pass.count": 4,
			}},
			want: "[0µs] ✗ No fixpoint after 4 passes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.event))
		})
	}
}

func TestTruncateQuery(t *testing.T) {
	assert.Equal(t, "[ancestor X Y]", truncateQuery("  [ancestor\n X   Y]"))

	long := "[" + strings.Repeat("x ", 60) + "]"
	got := truncateQuery(long)
	assert.Len(t, got, 80)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestWriterHandler(t *testing.T) {
	var buf bytes.Buffer
	h := WriterHandler(&buf)
	h(Event{Name: QueryInvoked, Data: map[string]interface{}{"query": "[parent alice Y]"}})

	assert.Equal(t, "[0µs] Query: [parent alice Y]\n", buf.String())
}

func TestCollector(t *testing.T) {
	var seen []string
	c := NewCollector(func(e Event) { seen = append(seen, e.Name) })

	c.Add(Event{Name: PassBegin})
	c.AddTiming(PassComplete, time.Now(), nil)
	c.Add(Event{Name: PassBegin})

	assert.Equal(t, 2, c.Count(PassBegin))
	assert.Len(t, c.Events(), 3)
	assert.Equal(t, []string{PassBegin, PassComplete, PassBegin}, seen)

	c.Reset()
	assert.Empty(t, c.Events())

	disabled := NewCollector(nil)
	disabled.Add(Event{Name: PassBegin})
	assert.Empty(t, disabled.Events())
}

func TestTee(t *testing.T) {
	assert.Nil(t, Tee())
	assert.Nil(t, Tee(nil, nil))

	var a, b int
	h := Tee(func(Event) { a++ }, nil, func(Event) { b++ })
	h(Event{})
	h(Event{})
	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
}
