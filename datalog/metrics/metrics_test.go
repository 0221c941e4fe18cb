package metrics

import (
	"bytes"
	"context"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/executor"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func familyFacts() []datalog.Atom {
	return []datalog.Atom{
		datalog.NewAtom("parent", "alice", "bob"),
		datalog.NewAtom("parent", "alice", "bill"),
		datalog.NewAtom("parent", "bob", "carol"),
		datalog.NewAtom("parent", "carol", "dennis"),
		datalog.NewAtom("parent", "carol", "david"),
	}
}

func ancestorRules() []query.Rule {
	return []query.Rule{
		query.NewRule(datalog.NewAtom("ancestor", "X", "Y"),
			datalog.NewAtom("parent", "X", "Y")),
		query.NewRule(datalog.NewAtom("ancestor", "X", "Y"),
			datalog.NewAtom("ancestor", "X", "Z"),
			datalog.NewAtom("ancestor", "Z", "Y")),
	}
}

func TestRecorderCountsBuild(t *testing.T) {
	r := NewRecorder()
	e := executor.NewEngine(executor.DefaultOptions()).WithHandler(r.Handler())

	bindings, err := e.Answer(context.Background(), familyFacts(), ancestorRules(), datalog.NewAtom("ancestor", "carol", "Y"))
	require.NoError(t, err)
	require.Len(t, bindings, 2)

	assert.Equal(t, 1.0, counterValue(t, r.builds.WithLabelValues("success")))
	assert.Equal(t, 0.0, counterValue(t, r.builds.WithLabelValues("error")))
	assert.Equal(t, 3.0, counterValue(t, r.passes))
	assert.Equal(t, 6.0, counterValue(t, r.ruleApplications.WithLabelValues("ancestor")))
	assert.Equal(t, 10.0, counterValue(t, r.factsDerived))
	assert.Equal(t, 1.0, counterValue(t, r.queries))
	assert.Equal(t, 2.0, counterValue(t, r.bindings))
}

func TestRecorderCountsFailures(t *testing.T) {
	r := NewRecorder()
	e := executor.NewEngine(executor.Options{MaxPasses: 1}).WithHandler(r.Handler())

	_, err := e.Build(context.Background(), familyFacts(), ancestorRules())
	require.Error(t, err)
	assert.Equal(t, 1.0, counterValue(t, r.builds.WithLabelValues("error")))
}

func TestWriteText(t *testing.T) {
	r := NewRecorder()
	e := executor.NewEngine(executor.DefaultOptions()).WithHandler(r.Handler())
	_, err := e.Build(context.Background(), familyFacts(), ancestorRules())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	text := buf.String()
	assert.Contains(t, text, "# HELP datalog_passes_total")
	assert.Contains(t, text, "datalog_passes_total 3")
	assert.Contains(t, text, `datalog_builds_total{result="success"} 1`)
	assert.Contains(t, text, "datalog_build_latency_ns_count 1")
}
